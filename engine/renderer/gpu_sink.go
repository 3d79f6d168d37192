package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/Carmen-Shannon/oxy-cull/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("renderer")

// ErrNoSurface is returned by Present when the sink was created without a surface.
var ErrNoSurface = errors.New("renderer: sink has no presentation surface")

// transformSize is the byte size of one instance transform on the GPU.
const transformSize = 64

// GPUSink uploads every consumed buffer into a GPU storage buffer sized for instanced drawing and,
// when created with a surface, presents a frame cleared to a shade chosen by the caller.
type GPUSink interface {
	Sink

	// ConfigureSurface (re)configures the presentation surface for the given size.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// Present clears the surface to a grey level and presents it.
	//
	// Parameters:
	//   - shade: grey level in [0, 1]
	//
	// Returns:
	//   - error: ErrNoSurface for headless sinks, or the surface acquisition error
	Present(shade float64) error

	// Uploaded returns the number of transforms in the most recent upload.
	Uploaded() int

	// Capacity returns the number of transforms the instance buffer can hold without reallocating.
	Capacity() int

	// Release frees every GPU object held by the sink.
	Release()
}

// gpuSinkImpl is the WebGPU implementation of GPUSink.
type gpuSinkImpl struct {
	mu *sync.Mutex

	instance      *wgpu.Instance
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	configured    bool

	forceFallbackAdapter bool
	instanceBuffer       *wgpu.Buffer
	capacity             int
	uploaded             int
}

var _ GPUSink = &gpuSinkImpl{}

// GPUSinkBuilderOption is a functional option applied to a GPU sink during construction.
type GPUSinkBuilderOption func(*gpuSinkImpl)

// WithPresentMode sets how presented frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - GPUSinkBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) GPUSinkBuilderOption {
	return func(s *gpuSinkImpl) {
		s.presentMode = mode.wgpu()
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - GPUSinkBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) GPUSinkBuilderOption {
	return func(s *gpuSinkImpl) {
		s.forceFallbackAdapter = force
	}
}

// WithInitialCapacity pre-allocates the instance buffer for n transforms.
//
// Parameters:
//   - n: the number of transforms
//
// Returns:
//   - GPUSinkBuilderOption: option function to apply
func WithInitialCapacity(n int) GPUSinkBuilderOption {
	return func(s *gpuSinkImpl) {
		s.capacity = max(n, 0)
	}
}

// NewGPUSink creates a WebGPU device and an instance storage buffer. With a nil surface descriptor
// the sink runs headless and only uploads.
//
// Parameters:
//   - surfaceDescriptor: the window surface to present to, or nil
//   - options: functional options
//
// Returns:
//   - GPUSink: the sink
//   - error: adapter, device or buffer creation failure
func NewGPUSink(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...GPUSinkBuilderOption) (GPUSink, error) {
	runtime.LockOSThread()
	s := &gpuSinkImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		capacity:    1024,
	}

	for _, option := range options {
		option(s)
	}

	if surfaceDescriptor != nil {
		s.surface = s.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: s.forceFallbackAdapter,
		CompatibleSurface:    s.surface,
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	s.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Cull Sink Device",
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	s.device = d
	s.queue = d.GetQueue()

	if err := s.allocate(s.capacity); err != nil {
		s.Release()
		return nil, err
	}

	logger.Infof("GPU sink ready (surface: %t, capacity: %d transforms)", s.surface != nil, s.capacity)
	return s, nil
}

// allocate replaces the instance buffer with one holding n transforms. Called with mu held or
// during construction.
func (s *gpuSinkImpl) allocate(n int) error {
	n = max(n, 1)
	buf, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Visible Instance Buffer",
		Size:             uint64(n * transformSize),
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("renderer: create instance buffer for %d transforms: %w", n, err)
	}
	if s.instanceBuffer != nil {
		s.instanceBuffer.Release()
	}
	s.instanceBuffer = buf
	s.capacity = n
	return nil
}

func (s *gpuSinkImpl) Consume(transforms []mgl32.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(transforms) > s.capacity {
		// Grow geometrically so a slowly rising visible count does not reallocate every frame.
		if err := s.allocate(max(len(transforms), s.capacity*2)); err != nil {
			logger.Errorf("%v", err)
			s.uploaded = 0
			return
		}
		logger.Debugf("instance buffer grown to %d transforms", s.capacity)
	}

	if len(transforms) > 0 {
		s.queue.WriteBuffer(s.instanceBuffer, 0, common.TransformsToBytes(transforms))
	}
	s.uploaded = len(transforms)
}

func (s *gpuSinkImpl) ConfigureSurface(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := s.surface.GetCapabilities(s.adapter)
	s.surfaceFormat = &capabilities.Formats[0]

	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *s.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: s.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	s.configured = true
}

func (s *gpuSinkImpl) Present(shade float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.surface == nil {
		return ErrNoSurface
	}
	if !s.configured {
		return fmt.Errorf("renderer: surface not configured")
	}

	surfaceTexture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	shade = min(max(shade, 0), 1)
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1 + 0.4*shade, G: 0.1 + 0.6*shade, B: 0.1 + 0.3*shade, A: 1.0,
				},
			},
		},
	})
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	s.queue.Submit(commandBuffer)
	s.surface.Present()
	return nil
}

func (s *gpuSinkImpl) Uploaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded
}

func (s *gpuSinkImpl) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

func (s *gpuSinkImpl) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.instanceBuffer != nil {
		s.instanceBuffer.Release()
		s.instanceBuffer = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}
