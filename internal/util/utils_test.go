package util

import "testing"

func TestLerpClamp(t *testing.T) {
	if got := Lerp(0.1, 1.0, 0); got != 0.1 {
		t.Errorf("Lerp(0.1,1,0) = %v", got)
	}
	if got := Lerp(0.1, 1.0, 1); got != 1.0 {
		t.Errorf("Lerp(0.1,1,1) = %v", got)
	}
	if got := Clamp(2, 0, 1); got != 1 {
		t.Errorf("Clamp(2,0,1) = %v", got)
	}
	if got := Clamp(-2, 0, 1); got != 0 {
		t.Errorf("Clamp(-2,0,1) = %v", got)
	}
	if got := ClampInt(7, 0, 5); got != 5 {
		t.Errorf("ClampInt(7,0,5) = %v", got)
	}
}

func TestScaled(t *testing.T) {
	tests := []struct {
		v     int
		ratio float64
		want  int
	}{
		{800, 1, 800},
		{800, 2, 1600},
		{801, 0.5, 400},
		{1, 0.25, 1},
		{0, 1, 1},
	}
	for _, tt := range tests {
		if got := Scaled(tt.v, tt.ratio); got != tt.want {
			t.Errorf("Scaled(%d, %v) = %d, want %d", tt.v, tt.ratio, got, tt.want)
		}
	}
}

func TestNewRandSeeded(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 8; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("same seed diverged at %d: %v != %v", i, x, y)
		}
	}
	if v := RandomFloat(NewRand(7), -1, 1); v < -1 || v >= 1 {
		t.Errorf("RandomFloat out of range: %v", v)
	}
}
