package noise

import (
	"math"
	"math/rand"

	"postfx/internal/util"
)

// Generator produces gradient noise and random values from a single seed.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// NewGenerator creates a new noise generator. A zero seed is replaced with
// one drawn from the clock.
func NewGenerator(seed int64) *Generator {
	rng := util.NewRand(seed)
	if seed == 0 {
		seed = rng.Int63()
	}
	return &Generator{rng: rng, seed: seed}
}

// Seed returns the effective seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Float returns a random float in range [0.0, 1.0)
func (g *Generator) Float() float64 {
	return g.rng.Float64()
}

// Range returns a random float in range [min, max)
func (g *Generator) Range(min, max float64) float64 {
	return util.RandomFloat(g.rng, min, max)
}

// Perlin2D generates 2D Perlin noise in roughly [-1, 1]
func (g *Generator) Perlin2D(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	x1, y1 := x0+1, y0+1

	sx := fade(x - x0)
	sy := fade(y - y0)

	s := int(g.seed)
	g00 := gradient2D(hash(int(x0), int(y0), 0, s))
	g10 := gradient2D(hash(int(x1), int(y0), 0, s))
	g01 := gradient2D(hash(int(x0), int(y1), 0, s))
	g11 := gradient2D(hash(int(x1), int(y1), 0, s))

	dp00 := g00[0]*(x-x0) + g00[1]*(y-y0)
	dp10 := g10[0]*(x-x1) + g10[1]*(y-y0)
	dp01 := g01[0]*(x-x0) + g01[1]*(y-y1)
	dp11 := g11[0]*(x-x1) + g11[1]*(y-y1)

	v0 := util.Lerp(dp00, dp10, sx)
	v1 := util.Lerp(dp01, dp11, sx)
	return util.Lerp(v0, v1, sy)
}

// Perlin3D generates 3D Perlin noise in roughly [-1, 1]
func (g *Generator) Perlin3D(x, y, z float64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)

	sx := fade(x - x0)
	sy := fade(y - y0)
	sz := fade(z - z0)

	corner := func(dx, dy, dz float64) float64 {
		cx, cy, cz := x0+dx, y0+dy, z0+dz
		gr := gradient3D(hash(int(cx), int(cy), int(cz), int(g.seed)))
		return gr[0]*(x-cx) + gr[1]*(y-cy) + gr[2]*(z-cz)
	}

	v00 := util.Lerp(corner(0, 0, 0), corner(1, 0, 0), sx)
	v10 := util.Lerp(corner(0, 1, 0), corner(1, 1, 0), sx)
	v01 := util.Lerp(corner(0, 0, 1), corner(1, 0, 1), sx)
	v11 := util.Lerp(corner(0, 1, 1), corner(1, 1, 1), sx)

	v0 := util.Lerp(v00, v10, sy)
	v1 := util.Lerp(v01, v11, sy)
	return util.Lerp(v0, v1, sz)
}

// FBM2D sums octaves of Perlin noise, normalised to roughly [-1, 1]
func (g *Generator) FBM2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	result := 0.0
	amplitude := 1.0
	frequency := 1.0
	max := 0.0

	for i := 0; i < octaves; i++ {
		result += g.Perlin2D(x*frequency, y*frequency) * amplitude
		max += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if max == 0 {
		return 0
	}
	return result / max
}

// Ridge2D generates 2D ridge noise in [0, 1]
func (g *Generator) Ridge2D(x, y float64) float64 {
	n := 1.0 - math.Abs(g.Perlin2D(x, y))
	return n * n
}

// RotationTile returns width*height RGBA texels of unit rotation vectors in
// the XY plane (z = 0, w = 1). Angles come from Perlin noise sampled at
// random points so neighbouring texels are uncorrelated.
func (g *Generator) RotationTile(width, height int) []float32 {
	data := make([]float32, width*height*4)
	for i := 0; i < width*height; i++ {
		x := g.Range(-1, 1) * 4
		y := g.Range(-1, 1) * 4
		angle := (g.Perlin3D(x, y, float64(i)*0.5) + 1) * math.Pi

		stride := i * 4
		data[stride] = float32(math.Cos(angle))
		data[stride+1] = float32(math.Sin(angle))
		data[stride+2] = 0
		data[stride+3] = 1
	}
	return data
}

// hash combines the coordinates and seed to create a unique hash
func hash(x, y, z, seed int) int {
	h := seed + x*374761393 + y*668265263 + z*2147483647
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func gradient2D(hash int) [2]float64 {
	switch hash & 7 {
	case 0:
		return [2]float64{1, 0}
	case 1:
		return [2]float64{-1, 0}
	case 2:
		return [2]float64{0, 1}
	case 3:
		return [2]float64{0, -1}
	case 4:
		return [2]float64{1, 1}
	case 5:
		return [2]float64{-1, 1}
	case 6:
		return [2]float64{1, -1}
	default:
		return [2]float64{-1, -1}
	}
}

// gradient3D picks one of the twelve cube-edge directions
func gradient3D(hash int) [3]float64 {
	const inv = 0.7071067811865476
	switch hash & 15 % 12 {
	case 0:
		return [3]float64{inv, inv, 0}
	case 1:
		return [3]float64{-inv, inv, 0}
	case 2:
		return [3]float64{inv, -inv, 0}
	case 3:
		return [3]float64{-inv, -inv, 0}
	case 4:
		return [3]float64{inv, 0, inv}
	case 5:
		return [3]float64{-inv, 0, inv}
	case 6:
		return [3]float64{inv, 0, -inv}
	case 7:
		return [3]float64{-inv, 0, -inv}
	case 8:
		return [3]float64{0, inv, inv}
	case 9:
		return [3]float64{0, -inv, inv}
	case 10:
		return [3]float64{0, inv, -inv}
	default:
		return [3]float64{0, -inv, -inv}
	}
}

// fade is the improved Perlin smoothstep: 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}
