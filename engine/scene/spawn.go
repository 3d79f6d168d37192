package scene

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Seed is the fixed seed every population is generated from, so runs are reproducible.
const Seed int64 = 1

// Spawn places count volume centers inside a ball of the given radius around the origin. Each
// center is a uniformly random unit direction scaled by a uniform fraction of the radius, so the
// population is denser near the origin.
//
// Parameters:
//   - count: number of centers
//   - spawnRadius: radius of the ball
//   - seed: generator seed
//
// Returns:
//   - []mgl32.Vec3: the centers
func Spawn(count int, spawnRadius float32, seed int64) []mgl32.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	centers := make([]mgl32.Vec3, count)
	for i := range centers {
		centers[i] = randomDirection(rng).Mul(rng.Float32() * spawnRadius)
	}
	return centers
}

// randomDirection samples a unit vector uniformly over the sphere.
func randomDirection(rng *rand.Rand) mgl32.Vec3 {
	z := rng.Float64()*2 - 1
	theta := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	sin, cos := math.Sincos(theta)
	return mgl32.Vec3{float32(r * cos), float32(r * sin), float32(z)}
}
