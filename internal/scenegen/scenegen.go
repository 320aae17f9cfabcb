// Package scenegen builds the procedural terrain-and-props scene the viewer
// renders through the post-processing pipeline.
package scenegen

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/noise"
	"postfx/internal/util"
	"postfx/pkg/config"
)

// HeightScale converts normalised elevation to world units
const HeightScale = 6.0

// Band is a coarse elevation class
type Band int

const (
	BandLow Band = iota
	BandGround
	BandRock
	BandPeak
)

// Prop is one box placed on the terrain
type Prop struct {
	Kind      string
	Position  mgl32.Vec3
	Scale     mgl32.Vec3
	RotationY float32
	Band      Band
}

// Transform returns the prop's model matrix
func (p Prop) Transform() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).
		Mul4(mgl32.HomogRotate3DY(p.RotationY)).
		Mul4(mgl32.Scale3D(p.Scale.X(), p.Scale.Y(), p.Scale.Z()))
}

// Layout is a generated heightmap with props. Heights are normalised to
// [0, 1] and indexed [z][x].
type Layout struct {
	Size    int
	Heights [][]float64
	Props   []Prop
	Seed    int64
}

// Generate creates a layout from cfg. A zero seed picks a random one; the
// effective seed is kept in Layout.Seed.
func Generate(cfg config.SceneConfig, seed int64) *Layout {
	gen := noise.NewGenerator(seed)
	size := util.ClampInt(cfg.TerrainSize, 2, 1024)

	l := &Layout{
		Size:    size,
		Heights: make([][]float64, size),
		Seed:    gen.Seed(),
	}

	const scale = 0.08
	for z := 0; z < size; z++ {
		l.Heights[z] = make([]float64, size)
		for x := 0; x < size; x++ {
			wx := float64(x - size/2)
			wz := float64(z - size/2)

			elevation := (gen.FBM2D(wx*scale, wz*scale, 4, 2, 0.5) + 1) * 0.5
			l.Heights[z][x] = applyFeatures(gen, elevation, wx, wz, scale)
		}
	}

	l.populate(gen, cfg.PropDensity)
	return l
}

// applyFeatures carves a central valley and adds ridges
func applyFeatures(gen *noise.Generator, elevation, x, z, scale float64) float64 {
	dist := math.Sqrt(x*x+z*z) * 0.05
	valley := math.Pow(math.Max(0, 1-dist), 3) * 0.3
	elevation -= valley

	elevation += gen.Ridge2D(x*scale*1.5, z*scale*1.5) * 0.2
	return util.Clamp(elevation, 0, 1)
}

// BandOf classifies a normalised elevation
func BandOf(elevation float64) Band {
	switch {
	case elevation < 0.3:
		return BandLow
	case elevation < 0.5:
		return BandGround
	case elevation < 0.7:
		return BandRock
	default:
		return BandPeak
	}
}

func (l *Layout) populate(gen *noise.Generator, density float64) {
	count := int(density * float64(l.Size*l.Size))
	half := float64(l.Size-1) / 2

	for i := 0; i < count; i++ {
		x := gen.Range(-half, half)
		z := gen.Range(-half, half)
		elevation := l.HeightAt(x, z)
		if elevation <= 0.2 {
			continue
		}

		prop := Prop{
			Position:  mgl32.Vec3{float32(x), float32(elevation * HeightScale), float32(z)},
			RotationY: float32(gen.Range(0, 2*math.Pi)),
			Band:      BandOf(elevation),
		}
		if gen.Float() < 0.4 {
			h := gen.Range(2, 5)
			prop.Kind = "pillar"
			prop.Scale = mgl32.Vec3{0.6, float32(h), 0.6}
		} else {
			s := gen.Range(0.5, 2)
			prop.Kind = "rock"
			prop.Scale = mgl32.Vec3{float32(s), float32(s * 0.7), float32(s)}
		}
		l.Props = append(l.Props, prop)
	}
}

// HeightAt returns the normalised elevation nearest to world (x, z). The
// terrain is centred on the origin; positions outside it clamp to the edge.
func (l *Layout) HeightAt(x, z float64) float64 {
	half := float64(l.Size-1) / 2
	ix := util.ClampInt(int(math.Round(x+half)), 0, l.Size-1)
	iz := util.ClampInt(int(math.Round(z+half)), 0, l.Size-1)
	return l.Heights[iz][ix]
}

// Extent is the terrain's half width in world units
func (l *Layout) Extent() float32 {
	return float32(l.Size-1) / 2
}
