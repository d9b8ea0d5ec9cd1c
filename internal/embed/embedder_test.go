package embed

import (
	"math"
	"testing"
)

func TestNormalize_UnitLength(t *testing.T) {
	v := Normalize([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected normalized vector: %v", v)
	}
	if got := Dot(v, v); math.Abs(got-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", got)
	}
}

func TestNormalize_ZeroVectorStaysZero(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	for i, x := range v {
		if x != 0 {
			t.Errorf("component %d: expected 0, got %f", i, x)
		}
	}
	if got := Dot(v, []float32{1, 0, 0}); got != 0 {
		t.Errorf("zero vector should score 0, got %f", got)
	}
}

func TestDot_Orthogonal(t *testing.T) {
	if got := Dot([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestDot_Cosine(t *testing.T) {
	a := Normalize([]float32{1, 1})
	b := Normalize([]float32{1, 0})
	want := math.Cos(math.Pi / 4)
	if got := Dot(a, b); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}
}
