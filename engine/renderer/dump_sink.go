package renderer

import (
	"bytes"
	"io"
	"sync"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DumpSink keeps a byte copy of the most recent buffer so it can be written out after the frame
// loop ends. The dump is the raw column-major float32 data of every transform, 64 bytes each, in
// host byte order.
type DumpSink struct {
	mu   *sync.Mutex
	last bytes.Buffer
	n    int
}

// NewDumpSink creates an empty DumpSink.
func NewDumpSink() *DumpSink {
	return &DumpSink{mu: &sync.Mutex{}}
}

func (d *DumpSink) Consume(transforms []mgl32.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last.Reset()
	d.last.Write(common.TransformsToBytes(transforms))
	d.n = len(transforms)
}

// Len returns the number of transforms held.
func (d *DumpSink) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}

// WriteTo writes the held transforms to w.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - int64: bytes written
//   - error: the first write error, if any
func (d *DumpSink) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := w.Write(d.last.Bytes())
	return int64(n), err
}
