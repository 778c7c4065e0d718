// Package numutil holds small shared numeric helpers that have no
// gonum equivalent with matching semantics.
package numutil

import (
	"math"
	"sort"
)

// Percentile computes the pct-th percentile (0..100) of values using
// linear interpolation between order statistics, i.e. the position is
// pct/100*(n-1). The input is not modified.
//
// gonum's stat.Quantile implements different cumulant conventions, so
// the interpolation is done here to keep surrogate thresholds
// compatible with the reference behaviour.
func Percentile(values []float64, pct float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := pct / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// ArgsortDesc returns the indices that sort values in descending
// order. The sort is stable so ties keep their original order.
func ArgsortDesc(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	return idx
}

// NanMean returns the mean of the non-NaN entries, or NaN if none.
func NanMean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// LineFit fits y = alpha + beta*x by ordinary least squares and
// returns the coefficients together with their standard errors
// (t-distribution confidence bands are built by the caller).
func LineFit(x, y []float64) (alpha, beta, seAlpha, seBeta float64) {
	n := float64(len(x))
	var xMean, yMean float64
	for i := range x {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= n
	yMean /= n

	var sxx, sxy float64
	for i := range x {
		dx := x[i] - xMean
		sxx += dx * dx
		sxy += dx * (y[i] - yMean)
	}
	beta = sxy / sxx
	alpha = yMean - beta*xMean

	var ssr float64
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		ssr += r * r
	}
	dof := n - 2
	if dof <= 0 {
		return alpha, beta, 0, 0
	}
	s2 := ssr / dof
	seBeta = math.Sqrt(s2 / sxx)
	seAlpha = math.Sqrt(s2 * (1/n + xMean*xMean/sxx))
	return alpha, beta, seAlpha, seBeta
}
