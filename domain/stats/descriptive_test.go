package stats

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// TestVariance_PopulationDivisor verifies variance uses n, not n-1
func TestVariance_PopulationDivisor(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	v := Variance(values)
	if !almostEqual(v, 4.0) {
		t.Errorf("Expected population variance 4.0, got %f", v)
	}

	// Sample variance of the same data would be 32/7 ≈ 4.571
	if almostEqual(v, 32.0/7.0) {
		t.Error("Variance used the sample divisor (n-1) instead of n")
	}
}

func TestStdDev_IsSqrtOfVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if !almostEqual(StdDev(values), math.Sqrt(Variance(values))) {
		t.Errorf("StdDev %f does not equal sqrt of variance %f", StdDev(values), Variance(values))
	}
	if !almostEqual(StdDev(values), 2.0) {
		t.Errorf("Expected std dev 2.0, got %f", StdDev(values))
	}
}

func TestVariance_NeverNegative(t *testing.T) {
	cases := [][]float64{
		{},
		{5},
		{5, 5, 5, 5},
		{-3, -1, 2, 8},
		{1e9, 1e9 + 1, 1e9 + 2},
	}
	for _, values := range cases {
		if v := Variance(values); v < 0 {
			t.Errorf("Variance(%v) = %f, should never be negative", values, v)
		}
	}
}

func TestMeanMedian_EmptyInput(t *testing.T) {
	if m := Mean(nil); m != 0 {
		t.Errorf("Mean of empty input should be 0, got %f", m)
	}
	if m := Median(nil); m != 0 {
		t.Errorf("Median of empty input should be 0, got %f", m)
	}
}

// TestMode_NoRepeats verifies a mode only exists when some value repeats
func TestMode_NoRepeats(t *testing.T) {
	if m := Mode([]float64{1, 2, 3, 4}); len(m) != 0 {
		t.Errorf("All-unique input should have no mode, got %v", m)
	}

	m := Mode([]float64{1, 2, 2, 3})
	if len(m) != 1 || m[0] != 2 {
		t.Errorf("Expected mode [2], got %v", m)
	}
}

func TestSkewness_SmallSamples(t *testing.T) {
	if s := Skewness([]float64{1, 2}); s != 0 {
		t.Errorf("Skewness with n < 3 should be 0, got %f", s)
	}
	if s := Skewness([]float64{5, 5, 5, 5}); s != 0 {
		t.Errorf("Skewness of constant data should be 0, got %f", s)
	}
	// Symmetric data has zero skew
	if s := Skewness([]float64{1, 2, 3, 4, 5}); !almostEqual(s, 0) {
		t.Errorf("Symmetric data should have skewness 0, got %f", s)
	}
}

func TestSkewness_Direction(t *testing.T) {
	rightTail := []float64{1, 1, 1, 2, 2, 3, 10}
	if s := Skewness(rightTail); s <= 0 {
		t.Errorf("Right-tailed data should have positive skewness, got %f", s)
	}

	leftTail := []float64{-10, 2, 2, 3, 3, 3, 4}
	if s := Skewness(leftTail); s >= 0 {
		t.Errorf("Left-tailed data should have negative skewness, got %f", s)
	}
}

func TestKurtosis_SmallSamples(t *testing.T) {
	if k := Kurtosis([]float64{1, 2, 3}); k != 0 {
		t.Errorf("Kurtosis with n < 4 should be 0, got %f", k)
	}
	if k := Kurtosis([]float64{7, 7, 7, 7, 7}); k != 0 {
		t.Errorf("Kurtosis of constant data should be 0, got %f", k)
	}
}

func TestKurtosis_KnownValue(t *testing.T) {
	// Sample-adjusted excess kurtosis of {1,2,3,4,5} is exactly -1.2
	k := Kurtosis([]float64{1, 2, 3, 4, 5})
	if !almostEqual(k, -1.2) {
		t.Errorf("Expected kurtosis -1.2, got %f", k)
	}
}

// TestComputeQuartiles_NearestRank verifies index = floor(n*p), not interpolation
func TestComputeQuartiles_NearestRank(t *testing.T) {
	q := ComputeQuartiles([]float64{9, 2, 4, 5, 4, 5, 4, 7})

	if q.Q1 != 4 {
		t.Errorf("Expected Q1 = 4, got %f", q.Q1)
	}
	if q.Q2 != 5 {
		t.Errorf("Expected Q2 = 5, got %f", q.Q2)
	}
	if q.Q3 != 7 {
		t.Errorf("Expected Q3 = 7, got %f", q.Q3)
	}
	if q.IQR != 3 {
		t.Errorf("Expected IQR = 3, got %f", q.IQR)
	}
}

func TestComputeQuartiles_SingleValue(t *testing.T) {
	q := ComputeQuartiles([]float64{42})
	if q.Q1 != 42 || q.Q2 != 42 || q.Q3 != 42 || q.IQR != 0 {
		t.Errorf("Single-value quartiles should all equal the value, got %+v", q)
	}
}

func TestComputeQuartiles_Empty(t *testing.T) {
	q := ComputeQuartiles(nil)
	if q != (Quartiles{}) {
		t.Errorf("Empty input should yield zero quartiles, got %+v", q)
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	p50, err := Percentile(values, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !almostEqual(p50, 3) {
		t.Errorf("Expected 50th percentile 3, got %f", p50)
	}

	p90, err := Percentile(values, 90)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !almostEqual(p90, 4.6) {
		t.Errorf("Expected 90th percentile 4.6, got %f", p90)
	}

	p0, _ := Percentile(values, 0)
	p100, _ := Percentile(values, 100)
	if p0 != 1 || p100 != 5 {
		t.Errorf("Expected percentile bounds 1 and 5, got %f and %f", p0, p100)
	}
}

func TestPercentile_DomainErrors(t *testing.T) {
	if _, err := Percentile([]float64{1, 2, 3}, -1); err == nil {
		t.Error("Expected error for percentile below 0")
	}
	if _, err := Percentile([]float64{1, 2, 3}, 101); err == nil {
		t.Error("Expected error for percentile above 100")
	}
	if _, err := Percentile(nil, 50); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	if _, err := Percentile(values, 75); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []float64{5, 1, 4, 2, 3}
	for i := range values {
		if values[i] != expected[i] {
			t.Fatalf("Input slice was reordered: %v", values)
		}
	}
}

func TestPearsonCorrelation(t *testing.T) {
	r, err := PearsonCorrelation([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !almostEqual(r, 1) {
		t.Errorf("Expected perfect positive correlation 1, got %f", r)
	}

	r, err = PearsonCorrelation([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !almostEqual(r, -1) {
		t.Errorf("Expected perfect negative correlation -1, got %f", r)
	}
}

// TestPearsonCorrelation_ZeroVariance verifies a constant series yields 0, not NaN
func TestPearsonCorrelation_ZeroVariance(t *testing.T) {
	r, err := PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r != 0 {
		t.Errorf("Zero-variance series should correlate as 0, got %f", r)
	}
	if math.IsNaN(r) {
		t.Error("Correlation must never be NaN")
	}
}

func TestPearsonCorrelation_LengthMismatch(t *testing.T) {
	if _, err := PearsonCorrelation([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("Expected error for unequal-length sequences")
	}
	if _, err := PearsonCorrelation(nil, nil); err == nil {
		t.Error("Expected error for empty sequences")
	}
}
