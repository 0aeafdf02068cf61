package util

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// probability vectors must sum to one within this tolerance
const ProbabilityTolerance = 0.01

// sum the vector
func VectorSum(data []uint32) uint32 {
	sum := uint32(0)
	for _, d := range data {
		sum += d
	}
	return sum
}

// Normalize scales v in place so that it sums to one and returns v.
// A vector summing to zero is left untouched.
func Normalize(v []float64) []float64 {
	sum := floats.Sum(v)
	if sum == 0 {
		return v
	}
	floats.Scale(1/sum, v)
	return v
}

// dot product of two equal length vectors
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// SoftmaxLog turns a vector of log weights into a probability vector.
// The log-sum-exp is subtracted before exponentiating so that large
// negative log weights do not underflow to an all-zero vector.
func SoftmaxLog(logp []float64) []float64 {
	p := make([]float64, len(logp))
	if len(logp) == 0 {
		return p
	}
	lse := floats.LogSumExp(logp)
	for i, lp := range logp {
		p[i] = math.Exp(lp - lse)
	}
	return Normalize(p)
}

// ValidProbability reports whether every entry of p is finite and
// non-negative and the entries sum to one within ProbabilityTolerance.
func ValidProbability(p []float64) bool {
	sum := 0.0
	for _, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return false
		}
		sum += x
	}
	return math.Abs(1-sum) < ProbabilityTolerance
}
