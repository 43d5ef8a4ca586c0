package memutils

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-5 }

func TestEuclideanDistance(t *testing.T) {
	if d := EuclideanDistance([]float32{0, 0}, []float32{3, 4}); !approx(d, 5) {
		t.Fatalf("expected 5, got %v", d)
	}
	if d := EuclideanDistance([]float32{1}, []float32{1, 2}); !math.IsInf(d, 1) {
		t.Fatalf("mismatched lengths should be +Inf, got %v", d)
	}
}

func TestRestoreRecoversRawVector(t *testing.T) {
	raw := []float32{3, 4}
	meta := NormMetadata(raw)
	if !approx(Norm(raw), 5) {
		t.Fatalf("expected norm 5, got %v", Norm(raw))
	}

	got := Restore([]float32{0.6, 0.8}, meta)
	if !approx(float64(got[0]), 3) || !approx(float64(got[1]), 4) {
		t.Fatalf("unexpected restored vector: %v", got)
	}
}

func TestRestoreWithoutNormKeepsUnitVector(t *testing.T) {
	unit := []float32{0.6, 0.8}
	for _, meta := range []map[string]string{nil, {NormKey: "bogus"}} {
		got := Restore(unit, meta)
		if got[0] != 0.6 || got[1] != 0.8 {
			t.Fatalf("metadata %v: expected unit vector back, got %v", meta, got)
		}
	}
}
