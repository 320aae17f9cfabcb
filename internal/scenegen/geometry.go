package scenegen

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is indexed triangle data with per-vertex normals, xyz each
type Geometry struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices
func (g Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TerrainGeometry triangulates the heightmap on a unit grid centred on the
// origin. Triangles wind counter-clockwise seen from above.
func (l *Layout) TerrainGeometry() Geometry {
	n := l.Size
	g := Geometry{
		Positions: make([]float32, 0, n*n*3),
		Normals:   make([]float32, 0, n*n*3),
		Indices:   make([]uint32, 0, (n-1)*(n-1)*6),
	}

	half := l.Extent()
	height := func(x, z int) float32 {
		if x < 0 {
			x = 0
		} else if x >= n {
			x = n - 1
		}
		if z < 0 {
			z = 0
		} else if z >= n {
			z = n - 1
		}
		return float32(l.Heights[z][x] * HeightScale)
	}

	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			g.Positions = append(g.Positions, float32(x)-half, height(x, z), float32(z)-half)

			dx := (height(x+1, z) - height(x-1, z)) / 2
			dz := (height(x, z+1) - height(x, z-1)) / 2
			normal := mgl32.Vec3{-dx, 1, -dz}.Normalize()
			g.Normals = append(g.Normals, normal[:]...)
		}
	}

	for z := 0; z < n-1; z++ {
		for x := 0; x < n-1; x++ {
			i := uint32(z*n + x)
			row := uint32(n)
			g.Indices = append(g.Indices,
				i, i+row, i+1,
				i+1, i+row, i+row+1,
			)
		}
	}
	return g
}

// boxFaces lists each face normal with two edge directions whose cross
// product is the normal
var boxFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// BoxGeometry is a unit cube resting on the XZ plane
func BoxGeometry() Geometry {
	var g Geometry
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	base := mgl32.Vec3{0, 0.5, 0}

	for f, face := range boxFaces {
		normal, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := base.Add(normal.Mul(0.5)).Add(u.Mul(c[0] * 0.5)).Add(v.Mul(c[1] * 0.5))
			g.Positions = append(g.Positions, p[:]...)
			g.Normals = append(g.Normals, normal[:]...)
		}
		i := uint32(f * 4)
		g.Indices = append(g.Indices, i, i+1, i+2, i, i+2, i+3)
	}
	return g
}
