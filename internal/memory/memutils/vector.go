package memutils

import (
	"math"
	"strconv"
)

// NormKey is the document metadata key holding the original vector norm.
// chromem stores unit vectors only, so the norm is kept alongside to
// recover the raw embedding at query time.
const NormKey = "norm"

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	return math.Sqrt(sumSquares)
}

// NormMetadata returns document metadata recording the norm of v.
func NormMetadata(v []float32) map[string]string {
	return map[string]string{NormKey: strconv.FormatFloat(Norm(v), 'g', -1, 64)}
}

// Restore scales a stored unit vector back to its original length using the
// norm in meta. Without a readable norm the vector is returned as is.
func Restore(unit []float32, meta map[string]string) []float32 {
	norm, err := strconv.ParseFloat(meta[NormKey], 64)
	if err != nil || norm == 1 {
		return unit
	}
	raw := make([]float32, len(unit))
	for i, val := range unit {
		raw[i] = float32(float64(val) * norm)
	}
	return raw
}

// EuclideanDistance returns the L2 distance between two vectors of equal
// length. Mismatched lengths yield +Inf so they sort last.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum)
}
