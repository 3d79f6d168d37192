package cull

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SphereRadius is the uniform bounding sphere radius used when none is configured.
const SphereRadius float32 = 0.5

// DefaultExtents are the half extents of a box when none are configured.
var DefaultExtents = mgl32.Vec3{0.5, 0.5, 0.5}

// Layout selects how a VolumeStore arranges per-object bounding data in memory.
type Layout int

const (
	// LayoutNone is the zero value and is never valid for a store.
	LayoutNone Layout = iota
	// LayoutSphereAoS interleaves center and radius per object.
	LayoutSphereAoS
	// LayoutSphereSoA keeps one contiguous array per center coordinate.
	LayoutSphereSoA
	// LayoutAABBUnified keeps center and extents as one record per object.
	LayoutAABBUnified
	// LayoutAABBSoA keeps one contiguous array per center and extent coordinate.
	LayoutAABBSoA
)

func (l Layout) String() string {
	switch l {
	case LayoutSphereAoS:
		return "sphere-aos"
	case LayoutSphereSoA:
		return "sphere-soa"
	case LayoutAABBUnified:
		return "aabb-unified"
	case LayoutAABBSoA:
		return "aabb-soa"
	default:
		return "none"
	}
}

// IsAABB reports whether the layout stores boxes rather than spheres.
func (l Layout) IsAABB() bool {
	return l == LayoutAABBUnified || l == LayoutAABBSoA
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// AABB is an axis-aligned bounding box given by its center and half extents.
type AABB struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// VolumeStore holds the bounding volumes of one spawned population in a single layout. Only the
// fields belonging to its layout are populated. The store is read-only once built and is shared
// by every worker of a pass.
type VolumeStore struct {
	layout Layout
	count  int

	// Radius is the uniform sphere radius of the SoA sphere layout.
	Radius float32

	Spheres []Sphere
	Boxes   []AABB

	Xs, Ys, Zs    []float32
	Exs, Eys, Ezs []float32
}

// VolumeStoreBuilderOption configures a VolumeStore during construction.
type VolumeStoreBuilderOption func(*volumeStoreConfig)

type volumeStoreConfig struct {
	radius     float32
	extents    mgl32.Vec3
	boxExtents []mgl32.Vec3
}

// WithRadius sets the uniform sphere radius.
func WithRadius(radius float32) VolumeStoreBuilderOption {
	return func(c *volumeStoreConfig) {
		c.radius = radius
	}
}

// WithExtents sets uniform half extents for every box.
func WithExtents(extents mgl32.Vec3) VolumeStoreBuilderOption {
	return func(c *volumeStoreConfig) {
		c.extents = extents
	}
}

// WithBoxExtents sets per-object half extents. The slice must match the number of centers.
func WithBoxExtents(extents []mgl32.Vec3) VolumeStoreBuilderOption {
	return func(c *volumeStoreConfig) {
		c.boxExtents = extents
	}
}

// NewVolumeStore builds a store in the given layout from a list of centers. The store is always
// rebuilt in full; there is no incremental update.
//
// Parameters:
//   - layout: the memory layout to build (must not be LayoutNone)
//   - centers: the world-space centers, one per object
//   - options: radius / extents overrides
//
// Returns:
//   - *VolumeStore: the populated store
func NewVolumeStore(layout Layout, centers []mgl32.Vec3, options ...VolumeStoreBuilderOption) *VolumeStore {
	cfg := volumeStoreConfig{radius: SphereRadius, extents: DefaultExtents}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.boxExtents != nil && len(cfg.boxExtents) != len(centers) {
		panic(fmt.Sprintf("cull: %d box extents supplied for %d centers", len(cfg.boxExtents), len(centers)))
	}
	extentsAt := func(i int) mgl32.Vec3 {
		if cfg.boxExtents != nil {
			return cfg.boxExtents[i]
		}
		return cfg.extents
	}

	n := len(centers)
	s := &VolumeStore{layout: layout, count: n, Radius: cfg.radius}

	switch layout {
	case LayoutSphereAoS:
		s.Spheres = make([]Sphere, n)
		for i, c := range centers {
			s.Spheres[i] = Sphere{Center: c, Radius: cfg.radius}
		}
	case LayoutSphereSoA:
		s.Xs, s.Ys, s.Zs = splitCoordinates(centers)
	case LayoutAABBUnified:
		s.Boxes = make([]AABB, n)
		for i, c := range centers {
			s.Boxes[i] = AABB{Center: c, Extents: extentsAt(i)}
		}
	case LayoutAABBSoA:
		s.Xs, s.Ys, s.Zs = splitCoordinates(centers)
		s.Exs, s.Eys, s.Ezs = make([]float32, n), make([]float32, n), make([]float32, n)
		for i := range centers {
			e := extentsAt(i)
			s.Exs[i], s.Eys[i], s.Ezs[i] = e[0], e[1], e[2]
		}
	default:
		panic(fmt.Sprintf("cull: cannot build a volume store with layout %s", layout))
	}

	return s
}

func splitCoordinates(centers []mgl32.Vec3) (xs, ys, zs []float32) {
	xs, ys, zs = make([]float32, len(centers)), make([]float32, len(centers)), make([]float32, len(centers))
	for i, c := range centers {
		xs[i], ys[i], zs[i] = c[0], c[1], c[2]
	}
	return xs, ys, zs
}

// Layout returns the memory layout of the store.
func (s *VolumeStore) Layout() Layout {
	return s.layout
}

// Len returns the number of objects in the store.
func (s *VolumeStore) Len() int {
	return s.count
}

// Center returns the center of object i regardless of layout.
func (s *VolumeStore) Center(i int) mgl32.Vec3 {
	switch s.layout {
	case LayoutSphereAoS:
		return s.Spheres[i].Center
	case LayoutAABBUnified:
		return s.Boxes[i].Center
	default:
		return mgl32.Vec3{s.Xs[i], s.Ys[i], s.Zs[i]}
	}
}

// Extents returns the half extents of box i. Sphere layouts report the radius on every axis.
func (s *VolumeStore) Extents(i int) mgl32.Vec3 {
	switch s.layout {
	case LayoutAABBUnified:
		return s.Boxes[i].Extents
	case LayoutAABBSoA:
		return mgl32.Vec3{s.Exs[i], s.Eys[i], s.Ezs[i]}
	case LayoutSphereAoS:
		r := s.Spheres[i].Radius
		return mgl32.Vec3{r, r, r}
	default:
		return mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	}
}

// Transform returns the output record of object i.
func (s *VolumeStore) Transform(i int) mgl32.Mat4 {
	return common.InstanceTransform(s.Center(i))
}

// Visible evaluates the scalar reference test for object i against planes.
func (s *VolumeStore) Visible(planes *[common.PlaneCount]common.Plane, i int) bool {
	switch s.layout {
	case LayoutSphereAoS:
		sp := &s.Spheres[i]
		return SphereVisible(planes, sp.Center, sp.Radius)
	case LayoutSphereSoA:
		return SphereVisible(planes, s.Center(i), s.Radius)
	default:
		return AABBVisible(planes, s.Center(i), s.Extents(i))
	}
}
