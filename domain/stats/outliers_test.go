package stats

import (
	"math"
	"testing"
)

func TestDetectIQROutliers(t *testing.T) {
	// 100 sits far outside the fences of the 1..9 run
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}

	result := DetectIQROutliers(values, 1.5)

	if len(result.Outliers) != 1 || result.Outliers[0] != 100 {
		t.Fatalf("Expected outliers [100], got %v", result.Outliers)
	}
	if len(result.Indices) != 1 || result.Indices[0] != 9 {
		t.Errorf("Expected indices [9], got %v", result.Indices)
	}
	if result.LowerFence >= result.UpperFence {
		t.Errorf("Lower fence %f should be below upper fence %f", result.LowerFence, result.UpperFence)
	}
}

func TestDetectIQROutliers_EmptyInput(t *testing.T) {
	result := DetectIQROutliers(nil, 1.5)

	if result.Outliers == nil || result.Indices == nil {
		t.Error("Empty input should yield empty slices, not nil")
	}
	if len(result.Outliers) != 0 {
		t.Errorf("Expected no outliers, got %v", result.Outliers)
	}
}

func TestDetectIQROutliers_DefaultMultiplier(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}

	explicit := DetectIQROutliers(values, DefaultIQRMultiplier)
	defaulted := DetectIQROutliers(values, 0)

	if explicit.LowerFence != defaulted.LowerFence || explicit.UpperFence != defaulted.UpperFence {
		t.Errorf("Non-positive multiplier should fall back to %v", DefaultIQRMultiplier)
	}
}

func TestDetectZScoreOutliers(t *testing.T) {
	values := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		values = append(values, 10)
	}
	values = append(values, 1000)

	result := DetectZScoreOutliers(values, 3)

	if len(result.Outliers) != 1 || result.Outliers[0] != 1000 {
		t.Fatalf("Expected outliers [1000], got %v", result.Outliers)
	}
	if result.Indices[0] != 20 {
		t.Errorf("Expected index 20, got %d", result.Indices[0])
	}
}

// TestDetectZScoreOutliers_ZeroVariance verifies constant data produces no
// outliers and no NaN instead of dividing by a zero standard deviation
func TestDetectZScoreOutliers_ZeroVariance(t *testing.T) {
	result := DetectZScoreOutliers([]float64{4, 4, 4, 4}, 3)

	if len(result.Outliers) != 0 {
		t.Errorf("Zero-variance data should have no outliers, got %v", result.Outliers)
	}
	if result.StdDev != 0 {
		t.Errorf("Expected std dev 0, got %f", result.StdDev)
	}
	if math.IsNaN(result.Mean) || math.IsNaN(result.StdDev) {
		t.Error("Result should never contain NaN")
	}
}

func TestDetectZScoreOutliers_EmptyInput(t *testing.T) {
	result := DetectZScoreOutliers(nil, 3)
	if result.Outliers == nil || len(result.Outliers) != 0 {
		t.Errorf("Empty input should yield an empty result, got %v", result.Outliers)
	}
}
