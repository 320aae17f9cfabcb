package noise

import (
	"math"
	"testing"
)

func TestPerlinDeterministic(t *testing.T) {
	a := NewGenerator(1234)
	b := NewGenerator(1234)
	for i := 0; i < 50; i++ {
		x, y, z := float64(i)*0.37, float64(i)*0.11, float64(i)*0.73
		if a.Perlin2D(x, y) != b.Perlin2D(x, y) {
			t.Fatalf("Perlin2D differs at %d", i)
		}
		if a.Perlin3D(x, y, z) != b.Perlin3D(x, y, z) {
			t.Fatalf("Perlin3D differs at %d", i)
		}
	}
}

func TestPerlinRange(t *testing.T) {
	g := NewGenerator(99)
	for i := 0; i < 500; i++ {
		x, y, z := g.Range(-20, 20), g.Range(-20, 20), g.Range(-20, 20)
		if v := g.Perlin3D(x, y, z); v < -1.5 || v > 1.5 {
			t.Fatalf("Perlin3D(%v,%v,%v) = %v out of range", x, y, z, v)
		}
		if v := g.FBM2D(x, y, 4, 2, 0.5); v < -1.5 || v > 1.5 {
			t.Fatalf("FBM2D = %v out of range", v)
		}
		if v := g.Ridge2D(x, y); v < 0 || v > 1 {
			t.Fatalf("Ridge2D = %v out of [0,1]", v)
		}
	}
}

func TestPerlinZeroOnLattice(t *testing.T) {
	g := NewGenerator(5)
	if v := g.Perlin2D(3, -4); v != 0 {
		t.Errorf("Perlin2D on lattice = %v, want 0", v)
	}
}

func TestRotationTile(t *testing.T) {
	g := NewGenerator(7)
	data := g.RotationTile(4, 4)
	if len(data) != 4*4*4 {
		t.Fatalf("len = %d, want 64", len(data))
	}
	for i := 0; i < 16; i++ {
		x, y, z, w := data[i*4], data[i*4+1], data[i*4+2], data[i*4+3]
		l := math.Hypot(float64(x), float64(y))
		if math.Abs(l-1) > 1e-5 {
			t.Errorf("texel %d length = %v, want 1", i, l)
		}
		if z != 0 || w != 1 {
			t.Errorf("texel %d z,w = %v,%v", i, z, w)
		}
	}
}

func TestZeroSeedIsReplaced(t *testing.T) {
	if NewGenerator(0).Seed() == 0 {
		t.Error("zero seed should be replaced")
	}
}
