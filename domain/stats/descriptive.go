// Package stats provides the descriptive statistics engine used by column
// profiling and the data-health pre-check. All variance and standard
// deviation calculations use the population divisor (n, not n-1).
package stats

import (
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of values. Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// Median returns the middle value of the sorted sequence.
// Returns 0 for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Median(values)
	if err != nil {
		return 0
	}
	return m
}

// Mode returns the most frequent values. The result is empty when every
// value is unique: a mode only exists when some value repeats.
func Mode(values []float64) []float64 {
	m, err := mstats.Mode(values)
	if err != nil {
		return nil
	}
	return m
}

// Variance returns the population variance (divisor n).
// Returns 0 for an empty slice.
func Variance(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(n)
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Min returns the smallest value. Returns 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Min(values)
	if err != nil {
		return 0
	}
	return m
}

// Max returns the largest value. Returns 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Max(values)
	if err != nil {
		return 0
	}
	return m
}

// Skewness returns the sample-adjusted skewness:
//
//	g1 = n/((n-1)(n-2)) * Σ((x-mean)/s)³
//
// where s is the sample standard deviation. Returns 0 when n < 3 or the
// standard deviation is 0, to avoid division by zero.
func Skewness(values []float64) float64 {
	n := len(values)
	if n < 3 {
		return 0
	}
	mean := Mean(values)
	s := sampleStdDev(values, mean)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		z := (v - mean) / s
		sum += z * z * z
	}
	nf := float64(n)
	return nf / ((nf - 1) * (nf - 2)) * sum
}

// Kurtosis returns the sample-adjusted excess kurtosis:
//
//	g2 = n(n+1)/((n-1)(n-2)(n-3)) * Σ((x-mean)/s)⁴ - 3(n-1)²/((n-2)(n-3))
//
// Returns 0 when n < 4 or the standard deviation is 0.
func Kurtosis(values []float64) float64 {
	n := len(values)
	if n < 4 {
		return 0
	}
	mean := Mean(values)
	s := sampleStdDev(values, mean)
	if s == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		z := (v - mean) / s
		sum += z * z * z * z
	}
	nf := float64(n)
	term := nf * (nf + 1) / ((nf - 1) * (nf - 2) * (nf - 3)) * sum
	correction := 3 * (nf - 1) * (nf - 1) / ((nf - 2) * (nf - 3))
	return term - correction
}

// Quartiles holds the three quartile cut points and the interquartile range.
type Quartiles struct {
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// ComputeQuartiles returns Q1/Q2/Q3 via nearest-rank indexing
// (index = floor(n*p)), not interpolation. Returns the zero value for an
// empty slice.
func ComputeQuartiles(values []float64) Quartiles {
	n := len(values)
	if n == 0 {
		return Quartiles{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := sorted[rankIndex(n, 0.25)]
	q2 := sorted[rankIndex(n, 0.50)]
	q3 := sorted[rankIndex(n, 0.75)]
	return Quartiles{Q1: q1, Q2: q2, Q3: q3, IQR: q3 - q1}
}

func rankIndex(n int, p float64) int {
	idx := int(math.Floor(float64(n) * p))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Percentile returns the p-th percentile of values using linear interpolation
// between adjacent ranks. p is expressed in [0, 100]; values outside that
// range are a domain error. The input slice is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be between 0 and 100, got %g", p)
	}
	n := len(values)
	if n == 0 {
		return 0, fmt.Errorf("percentile of empty sequence")
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower], nil
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), nil
}

// PearsonCorrelation returns the Pearson correlation coefficient of two
// equal-length sequences. A series with zero variance has no defined
// correlation; that case returns 0 rather than an error.
func PearsonCorrelation(x, y []float64) (float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return 0, fmt.Errorf("correlation requires non-empty sequences")
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("correlation requires equal-length sequences, got %d and %d", len(x), len(y))
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return 0, nil
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}

// sampleStdDev is the n-1 divisor standard deviation used by the adjusted
// moment formulas.
func sampleStdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}
