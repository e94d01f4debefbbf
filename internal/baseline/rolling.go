package baseline

import (
	"math"
	"sort"
)

// Rolling statistics over trailing observation windows. Missing values are
// represented as NaN and are excluded from every computation; a window emits
// NaN until it holds at least minPeriods present values. The first
// minPeriods-1 positions of a fresh series therefore carry no baseline, and
// a MAD series matures later still because deviations only exist once the
// center does.

// rollingMedian returns the median of the trailing window at each position.
func rollingMedian(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	buf := make([]float64, 0, window)

	for i := range xs {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		buf = buf[:0]
		for _, v := range xs[start : i+1] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = median(buf)
	}
	return out
}

// rollingMAD returns the rolling median absolute deviation: the rolling
// median of |x - rollingMedian(x)| over the same window.
func rollingMAD(xs []float64, window, minPeriods int) []float64 {
	center := rollingMedian(xs, window, minPeriods)
	absDev := make([]float64, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(center[i]) {
			absDev[i] = math.NaN()
			continue
		}
		absDev[i] = math.Abs(xs[i] - center[i])
	}
	return rollingMedian(absDev, window, minPeriods)
}

// rollingMean returns the mean of the trailing window at each position.
func rollingMean(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		var n int
		for _, v := range xs[start : i+1] {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// rollingStd returns the sample standard deviation (n-1 denominator) of the
// trailing window at each position.
func rollingStd(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	buf := make([]float64, 0, window)

	for i := range xs {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		buf = buf[:0]
		for _, v := range xs[start : i+1] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) < minPeriods || len(buf) < 2 {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for _, v := range buf {
			sum += v
		}
		mean := sum / float64(len(buf))
		var ss float64
		for _, v := range buf {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(len(buf)-1))
	}
	return out
}

// rollingCount returns the number of present values in the trailing window
// at each position. With minPeriods 1 the count is defined everywhere a
// value exists.
func rollingCount(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var n int
		for _, v := range xs[start : i+1] {
			if !math.IsNaN(v) {
				n++
			}
		}
		if n < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(n)
	}
	return out
}

// median computes the median of values, mutating the slice order.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
