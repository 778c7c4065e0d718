package synapse

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/neurokit/assembly/internal/numutil"
)

// poissonRates fits the spatial null model: a cumulative histogram of
// all valid pairwise distances is fitted with a straight line, and the
// slope parameterizes one Poisson rate per label,
// targetRange * slope * fraction.
//
// The assumption is a uniform synapse distribution along the dendrite,
// which makes the cumulative distance counts linear.
func poissonRates(dists [][]float64, fracs map[string]float64, targetRange float64) map[string]float64 {
	n := len(dists)
	nPairs := n * (n - 1) / 2

	var samples []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !math.IsNaN(dists[i][j]) {
				samples = append(samples, dists[i][j])
			}
		}
	}

	// Histogram out to twice the target range; the extra headroom just
	// has to cover the range of interest.
	nBins := int(math.Ceil(2*targetRange)) - 1
	if nBins < 1 {
		nBins = 1
	}
	hist := make([]float64, nBins)
	for _, d := range samples {
		bin := int(d)
		if bin >= nBins {
			continue
		}
		if bin < 0 {
			bin = 0
		}
		hist[bin]++
	}

	// Cumulative counts normalized by the full condensed length,
	// NaN pairs included, so sparse sections stay cheap.
	x := make([]float64, nBins)
	cum := make([]float64, nBins)
	var running float64
	for i := 0; i < nBins; i++ {
		running += hist[i]
		x[i] = float64(i + 1)
		cum[i] = running / float64(nPairs)
	}

	_, slope, _, _ := numutil.LineFit(x, cum)

	rates := make(map[string]float64, len(fracs))
	for label, frac := range fracs {
		rates[label] = targetRange * slope * frac
	}
	return rates
}

// significantSynapses returns the sub-matrix indices of synapses whose
// neighbour count within the target range is significantly higher than
// the Poisson null predicts.
func significantSynapses(sub [][]float64, lambda float64, o options) []int {
	n := len(sub)
	var significant []int
	for i := 0; i < n; i++ {
		neighbours := 0
		for j := 0; j < n; j++ {
			if sub[i][j] < o.targetRange { // NaN compares false
				neighbours++
			}
		}
		if neighbours < o.minNsyns {
			continue
		}
		p := survival(lambda, neighbours)
		if p == 0 {
			// Numerical floor so the log below stays finite.
			p = math.Pow(10, -2*o.logSignTh)
		}
		if -math.Log10(p) >= o.logSignTh {
			significant = append(significant, i)
		}
	}
	return significant
}

// survival is P(X >= n) for a Poisson with the given rate. Degenerate
// rates (empty or single-section groups) make every count unsurprising.
func survival(lambda float64, n int) float64 {
	if lambda <= 0 {
		return 1
	}
	pois := distuv.Poisson{Lambda: lambda}
	return 1 - pois.CDF(float64(n-1))
}
