package statistics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/autextification/scorer/internal/models"
)

// Method selects how the bootstrap distribution is turned into an interval.
type Method string

const (
	// MethodBasic reflects the percentile interval around the point estimate
	// (the "reverse percentile" interval).
	MethodBasic Method = "basic"
	// MethodPercentile uses the percentiles of the bootstrap distribution directly.
	MethodPercentile Method = "percentile"
)

// ParseMethod validates a bootstrap method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodBasic, MethodPercentile:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown bootstrap method %q (want basic or percentile)", s)
	}
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 100

// DefaultConfidenceLevel is the two-sided confidence level of the interval.
const DefaultConfidenceLevel = 0.95

// Options controls PairedBootstrap.
type Options struct {
	Resamples       int
	ConfidenceLevel float64
	Method          Method
	// Seed makes resampling reproducible. A negative seed uses a
	// non-deterministic source.
	Seed int64
}

// DefaultOptions returns 100 basic-method resamples at 95% confidence.
func DefaultOptions() Options {
	return Options{
		Resamples:       DefaultBootstrapIterations,
		ConfidenceLevel: DefaultConfidenceLevel,
		Method:          MethodBasic,
		Seed:            -1,
	}
}

// PairedBootstrap computes a bootstrap confidence interval for a statistic of
// n paired observations. Each resample draws n indices with replacement and
// passes them to stat, so paired vectors stay aligned. stat(nil) must return
// the point estimate over all observations.
//
// With fewer than 2 observations the interval collapses onto the point estimate.
func PairedBootstrap(n int, stat func(idx []int) float64, opts Options) models.ConfidenceInterval {
	if opts.Resamples <= 0 {
		opts.Resamples = DefaultBootstrapIterations
	}
	if opts.ConfidenceLevel <= 0 || opts.ConfidenceLevel >= 1 {
		opts.ConfidenceLevel = DefaultConfidenceLevel
	}
	if opts.Method == "" {
		opts.Method = MethodBasic
	}

	theta := stat(nil)
	if n < 2 {
		return models.ConfidenceInterval{
			Low:    theta,
			High:   theta,
			Level:  opts.ConfidenceLevel,
			Method: string(opts.Method),
		}
	}

	var rng *rand.Rand
	if opts.Seed >= 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	iters := opts.Resamples
	boot := make([]float64, iters)
	idx := make([]int, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			idx[j] = rng.Intn(n)
		}
		boot[i] = stat(idx)
	}

	se := sampleStdDev(boot)
	sort.Float64s(boot)

	alpha := (1.0 - opts.ConfidenceLevel) / 2.0
	lo := Percentile(boot, alpha*100)
	hi := Percentile(boot, (1.0-alpha)*100)
	if opts.Method == MethodBasic {
		lo, hi = 2*theta-hi, 2*theta-lo
	}

	return models.ConfidenceInterval{
		Low:           lo,
		High:          hi,
		StandardError: se,
		Level:         opts.ConfidenceLevel,
		Resamples:     iters,
		Method:        string(opts.Method),
	}
}

// Percentile returns the p-th percentile (0..100) of sorted values, linearly
// interpolating between the two nearest ranks. Returns NaN for empty input.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p / 100
	if h <= 0 {
		return sorted[0]
	}
	if h >= float64(n-1) {
		return sorted[n-1]
	}
	i := int(math.Floor(h))
	frac := h - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

// sampleStdDev is the standard deviation with Bessel's correction.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
