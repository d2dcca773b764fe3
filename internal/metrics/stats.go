package metrics

import "math"

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// WeightedMean computes sum(v*w)/sum(w). Returns 0 when the weights sum to 0.
func WeightedMean(values []float64, weights []int) float64 {
	var sum, total float64
	for i, v := range values {
		sum += v * float64(weights[i])
		total += float64(weights[i])
	}
	return safeDivide(sum, total)
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
