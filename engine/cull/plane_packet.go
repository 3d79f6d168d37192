package cull

import (
	"github.com/Carmen-Shannon/oxy-cull/common"
	"github.com/go-gl/mathgl/mgl32"
)

// PacketCount is the number of plane packets covering a frustum.
const PacketCount = 2

// SentinelDistance is the distance of the padding plane. With a unit +X normal it keeps every
// volume closer than 1e9 units to the origin on the inside.
const SentinelDistance float32 = 1e9

// SentinelPlane fills the unused lanes of the last packet. It never rejects a volume.
var SentinelPlane = common.Plane{Normal: mgl32.Vec3{1, 0, 0}, Distance: SentinelDistance}

// PlanePacket stores four planes as four parallel 4-lane vectors.
type PlanePacket struct {
	Xs        F32x4
	Ys        F32x4
	Zs        F32x4
	Distances F32x4
}

// PackPlanes reshapes six frustum planes into two packets of four. Lanes 0-3 of the first packet
// hold planes 0-3, lanes 0-1 of the second hold planes 4-5 and the remaining lanes hold
// SentinelPlane so 4-wide kernels always evaluate exactly eight plane lanes.
//
// Parameters:
//   - planes: the frustum planes in left, right, bottom, top, near, far order
//
// Returns:
//   - [2]PlanePacket: the packed planes
func PackPlanes(planes [common.PlaneCount]common.Plane) [PacketCount]PlanePacket {
	var packets [PacketCount]PlanePacket
	for i := 0; i < PacketCount*Width; i++ {
		p := SentinelPlane
		if i < common.PlaneCount {
			p = planes[i]
		}
		packet := &packets[i/Width]
		lane := i % Width
		packet.Xs[lane] = p.Normal[0]
		packet.Ys[lane] = p.Normal[1]
		packet.Zs[lane] = p.Normal[2]
		packet.Distances[lane] = p.Distance
	}
	return packets
}

// absNormals returns the packet with its normal components replaced by their absolute values.
// Distances are left untouched.
func (p PlanePacket) absNormals() PlanePacket {
	return PlanePacket{Xs: p.Xs.Abs(), Ys: p.Ys.Abs(), Zs: p.Zs.Abs(), Distances: p.Distances}
}

// distance evaluates ((xs*x + ys*y) + zs*z) + d for a point broadcast into every lane.
func (p *PlanePacket) distance(x, y, z F32x4) F32x4 {
	return p.Xs.Mul(x).Add(p.Ys.Mul(y)).Add(p.Zs.Mul(z)).Add(p.Distances)
}
