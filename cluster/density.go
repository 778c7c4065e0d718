package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/neurokit/assembly/internal/numutil"
	"github.com/neurokit/assembly/metric"
	"github.com/neurokit/assembly/model"
)

// DensityResult is the outcome of density-peak clustering, keeping the
// per-bin density diagnostics for downstream inspection.
type DensityResult struct {
	Labels      model.Labeling
	NumClusters int
	Rhos        []float64
	Deltas      []float64
	Centroids   []int
}

// DensityPeaks runs density-peak clustering of the time bins: the
// transposed spike matrix is projected into PCA space, a local density
// rho and a higher-density separation delta are computed per bin, and
// bins whose gamma = rho*delta rises above a fitted confidence band
// become cluster centroids. Every other bin joins its nearest centroid.
func DensityPeaks(spikes *mat.Dense, opts ...Option) (*DensityResult, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	proj, err := pcaProject(transposed(spikes), o.components)
	if err != nil {
		return nil, err
	}
	n, _ := proj.Dims()

	// Pairwise distances with the diagonal lifted to the matrix maximum
	// so no bin selects itself as a neighbour.
	dm := metric.EuclideanDistances(proj)
	maxDist := mat.Max(dm)
	dists := make([][]float64, n)
	for i := 0; i < n; i++ {
		dists[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				dists[i][j] = maxDist
			} else {
				dists[i][j] = dm.At(i, j)
			}
		}
	}

	rhos, deltas := rhoDelta(dists, o.ratioToKeep)
	gammas := make([]float64, n)
	for i := range gammas {
		gammas[i] = rhos[i] * deltas[i]
	}

	upper := gammaUpperBound(gammas, o.alpha)
	var centroids []int
	for i, g := range gammas {
		if g >= upper[i] {
			centroids = append(centroids, i)
		}
	}
	o.logger.Debug("density-peak centroids", "bins", n, "centroids", len(centroids))
	if len(centroids) > MaxCentroids {
		return nil, &ErrTooManyCentroids{Count: len(centroids), Max: MaxCentroids}
	}
	if len(centroids) == 0 {
		return nil, ErrNoCentroids
	}

	// Assign every bin to its nearest centroid, then relabel the
	// centroids with their own index in discovery order.
	labels := make(model.Labeling, n)
	for i := 0; i < n; i++ {
		best, bestDist := 0, math.Inf(1)
		for j, c := range centroids {
			if d := dists[i][c]; d < bestDist {
				best, bestDist = j, d
			}
		}
		labels[i] = best
	}
	for j, c := range centroids {
		labels[c] = j
	}

	o.logger.Info("density-peak clustering done", "bins", n, "clusters", len(centroids))
	return &DensityResult{
		Labels:      labels,
		NumClusters: len(centroids),
		Rhos:        rhos,
		Deltas:      deltas,
		Centroids:   centroids,
	}, nil
}

// rhoDelta computes the local density rho (inverse mean distance to the
// nearest ratioToKeep fraction of neighbours) and delta (distance to
// the nearest bin of strictly higher density; the densest bin gets its
// row maximum).
func rhoDelta(dists [][]float64, ratioToKeep float64) (rhos, deltas []float64) {
	n := len(dists)
	nKeep := int(ratioToKeep * float64(n))
	if nKeep < 1 {
		nKeep = 1
	}

	meanMin := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		copy(row, dists[i])
		sort.Float64s(row)
		var sum float64
		for k := 0; k < nKeep; k++ {
			sum += row[k]
		}
		meanMin[i] = sum / float64(nKeep)
	}
	// A zero mean distance would blow up the inverse below; replace it
	// with the smallest nonzero mean.
	minNonzero := math.Inf(1)
	for _, m := range meanMin {
		if m != 0 && m < minNonzero {
			minNonzero = m
		}
	}
	for i, m := range meanMin {
		if m == 0 {
			meanMin[i] = minNonzero
		}
	}

	rhos = make([]float64, n)
	maxRho := math.Inf(-1)
	for i := range rhos {
		rhos[i] = 1 / meanMin[i]
		if rhos[i] > maxRho {
			maxRho = rhos[i]
		}
	}

	deltas = make([]float64, n)
	for i, rho := range rhos {
		if rho != maxRho {
			best := math.Inf(1)
			for j, other := range rhos {
				if other > rho && dists[i][j] < best {
					best = dists[i][j]
				}
			}
			deltas[i] = best
		} else {
			best := math.Inf(-1)
			for j := range rhos {
				if dists[i][j] > best {
					best = dists[i][j]
				}
			}
			deltas[i] = best
		}
	}
	return rhos, deltas
}

// gammaUpperBound sorts the gammas in descending order, fits a straight
// line to the sorted sequence by least squares and returns the upper
// t-distribution confidence bound evaluated per rank.
func gammaUpperBound(gammas []float64, alpha float64) []float64 {
	n := len(gammas)
	order := numutil.ArgsortDesc(gammas)
	x := make([]float64, n)
	sorted := make([]float64, n)
	for rank, idx := range order {
		x[rank] = float64(rank)
		sorted[rank] = gammas[idx]
	}

	intercept, slope, seIntercept, seSlope := numutil.LineFit(x, sorted)
	dof := float64(n - 2)
	tVal := 0.0
	if dof > 0 {
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
		tVal = tDist.Quantile(1 - alpha/2)
	}

	upper := make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = (intercept + tVal*seIntercept) + (slope+tVal*seSlope)*float64(i)
	}
	return upper
}

func transposed(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	t := mat.NewDense(c, r, nil)
	t.Copy(m.T())
	return t
}
