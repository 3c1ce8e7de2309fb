package stats

import "math"

// DefaultIQRMultiplier is the fence multiplier for IQR-based detection.
const DefaultIQRMultiplier = 1.5

// DefaultZScoreThreshold is the absolute z cutoff for Z-score detection.
const DefaultZScoreThreshold = 3.0

// IQROutlierResult reports values falling outside the Tukey fences.
type IQROutlierResult struct {
	Outliers   []float64 `json:"outliers"`
	Indices    []int     `json:"indices"`
	LowerFence float64   `json:"lowerFence"`
	UpperFence float64   `json:"upperFence"`
}

// ZScoreOutlierResult reports values whose standardized distance from the
// mean exceeds the threshold.
type ZScoreOutlierResult struct {
	Outliers []float64 `json:"outliers"`
	Indices  []int     `json:"indices"`
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"stdDev"`
}

// DetectIQROutliers flags values outside [Q1 - k*IQR, Q3 + k*IQR].
// Empty input yields an empty result, not an error.
func DetectIQROutliers(values []float64, k float64) IQROutlierResult {
	result := IQROutlierResult{Outliers: []float64{}, Indices: []int{}}
	if len(values) == 0 {
		return result
	}
	if k <= 0 {
		k = DefaultIQRMultiplier
	}

	q := ComputeQuartiles(values)
	result.LowerFence = q.Q1 - k*q.IQR
	result.UpperFence = q.Q3 + k*q.IQR

	for i, v := range values {
		if v < result.LowerFence || v > result.UpperFence {
			result.Outliers = append(result.Outliers, v)
			result.Indices = append(result.Indices, i)
		}
	}
	return result
}

// DetectZScoreOutliers flags values with |z| > threshold where
// z = (value - mean) / std. Zero-variance input produces no outliers:
// with std = 0 no value can be standardized, so none can exceed the cutoff.
func DetectZScoreOutliers(values []float64, threshold float64) ZScoreOutlierResult {
	result := ZScoreOutlierResult{Outliers: []float64{}, Indices: []int{}}
	if len(values) == 0 {
		return result
	}
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}

	result.Mean = Mean(values)
	result.StdDev = StdDev(values)
	if result.StdDev == 0 {
		return result
	}

	for i, v := range values {
		z := (v - result.Mean) / result.StdDev
		if math.Abs(z) > threshold {
			result.Outliers = append(result.Outliers, v)
			result.Indices = append(result.Indices, i)
		}
	}
	return result
}
