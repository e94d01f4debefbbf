package baseline

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// checkSeries compares a rolling output against expected values, where NaN
// expects NaN.
func checkSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d values, got %d", name, len(want), len(got))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("%s[%d]: expected NaN, got %v", name, i, got[i])
			}
			continue
		}
		if !almostEqual(got[i], want[i]) {
			t.Errorf("%s[%d]: expected %v, got %v", name, i, want[i], got[i])
		}
	}
}

var nan = math.NaN()

func TestRollingMedian(t *testing.T) {
	xs := []float64{1, 3, 5, 3, 1}
	got := rollingMedian(xs, 3, 1)
	checkSeries(t, "median", got, []float64{1, 2, 3, 3, 3})
}

func TestRollingMedianMinPeriods(t *testing.T) {
	xs := []float64{4, 4, 4, 4}
	got := rollingMedian(xs, 5, 3)
	checkSeries(t, "median", got, []float64{nan, nan, 4, 4})
}

func TestRollingMedianSkipsNaN(t *testing.T) {
	xs := []float64{2, nan, 6, nan, 10}
	got := rollingMedian(xs, 5, 2)
	// present values accumulate: [2], [2], [2,6], [2,6], [2,6,10]
	checkSeries(t, "median", got, []float64{nan, nan, 4, 4, 6})
}

func TestRollingMADMaturesAfterCenter(t *testing.T) {
	xs := []float64{1, 3, 5, 3, 1, 9}
	got := rollingMAD(xs, 5, 3)
	// center defined from index 2; deviations exist from there, so the MAD
	// itself only reaches minPeriods present deviations at index 4.
	checkSeries(t, "mad", got, []float64{nan, nan, nan, nan, 2, 2})
}

func TestRollingMADConstantSeriesIsZero(t *testing.T) {
	xs := []float64{3, 3, 3, 3, 3, 3, 3}
	got := rollingMAD(xs, 5, 2)
	for i := 2; i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("mad[%d]: expected 0 for constant series, got %v", i, got[i])
		}
	}
}

func TestRollingMean(t *testing.T) {
	xs := []float64{2, 4, 6, 8}
	got := rollingMean(xs, 3, 2)
	checkSeries(t, "mean", got, []float64{nan, 3, 4, 6})
}

func TestRollingStdIsSample(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	got := rollingStd(xs, 3, 2)
	// sample std of [1,2] = sqrt(0.5); of any 3 consecutive integers = 1
	checkSeries(t, "std", got, []float64{nan, math.Sqrt(0.5), 1, 1, 1})
}

func TestRollingStdNeedsTwoValues(t *testing.T) {
	xs := []float64{7, 7}
	got := rollingStd(xs, 5, 1)
	if !math.IsNaN(got[0]) {
		t.Errorf("expected NaN for a single observation, got %v", got[0])
	}
	if got[1] != 0 {
		t.Errorf("expected 0 for two equal observations, got %v", got[1])
	}
}

func TestRollingCount(t *testing.T) {
	xs := []float64{1, nan, 2, 3, nan}
	got := rollingCount(xs, 3, 1)
	checkSeries(t, "count", got, []float64{1, 1, 2, 2, 2})
}

func TestRollingCountMinPeriods(t *testing.T) {
	xs := []float64{nan, nan, 1}
	got := rollingCount(xs, 3, 1)
	checkSeries(t, "count", got, []float64{nan, nan, 1})
}

func TestMedianEvenLength(t *testing.T) {
	if m := median([]float64{4, 1, 3, 2}); !almostEqual(m, 2.5) {
		t.Errorf("expected 2.5, got %v", m)
	}
	if m := median([]float64{5}); m != 5 {
		t.Errorf("expected 5, got %v", m)
	}
}
