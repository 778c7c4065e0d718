package cluster

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurokit/assembly/model"
)

// alternatingSpikes builds a spike matrix where neurons 0..4 fire on
// even bins and neurons 5..9 on odd bins, optionally jittered.
func alternatingSpikes(nBins int, noise float64, seed int64) model.SpikeMatrix {
	rng := rand.New(rand.NewSource(seed))
	m := mat.NewDense(10, nBins, nil)
	for j := 0; j < nBins; j++ {
		lo, hi := 0, 5
		if j%2 == 1 {
			lo, hi = 5, 10
		}
		for i := lo; i < hi; i++ {
			m.Set(i, j, 1)
		}
		if noise > 0 {
			for i := 0; i < 10; i++ {
				m.Set(i, j, m.At(i, j)+noise*rng.Float64())
			}
		}
	}
	gids := make([]model.GID, 10)
	tBins := make([]float64, nBins)
	for i := range gids {
		gids[i] = model.GID(100 + i)
	}
	for j := range tBins {
		tBins[j] = float64(j) * 20
	}
	sm, _ := model.NewSpikeMatrix(m, gids, tBins)
	return sm
}

func assertParityLabels(t *testing.T, labels model.Labeling, nBins int) {
	t.Helper()
	require.Len(t, labels, nBins)
	for j := 0; j < nBins; j++ {
		if j%2 == 0 {
			assert.Equal(t, labels[0], labels[j], "even bin %d", j)
		} else {
			assert.Equal(t, labels[1], labels[j], "odd bin %d", j)
		}
	}
	assert.NotEqual(t, labels[0], labels[1])
}

func TestClusterSimMatrix(t *testing.T) {
	t.Run("RecoversBlockStructure", func(t *testing.T) {
		sm := alternatingSpikes(40, 0, 1)
		res, err := ClusterSimMatrix(sm.M,
			WithClusterRange(2, 4),
			WithCriterion(Silhouette),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, res.NumClusters)
		assertParityLabels(t, res.Labels, 40)
	})

	t.Run("DaviesBouldinCriterion", func(t *testing.T) {
		sm := alternatingSpikes(40, 0, 1)
		res, err := ClusterSimMatrix(sm.M,
			WithClusterRange(2, 4),
			WithCriterion(DaviesBouldin),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, res.NumClusters)
	})

	t.Run("DegenerateRangeStillScores", func(t *testing.T) {
		sm := alternatingSpikes(20, 0, 1)
		res, err := ClusterSimMatrix(sm.M, WithClusterRange(3, 3))
		require.NoError(t, err)
		assert.Equal(t, 3, res.NumClusters)
	})

	t.Run("DenseLabels", func(t *testing.T) {
		sm := alternatingSpikes(30, 0.2, 7)
		res, err := ClusterSimMatrix(sm.M, WithClusterRange(2, 5))
		require.NoError(t, err)
		seen := make(map[int]bool)
		for _, l := range res.Labels {
			require.GreaterOrEqual(t, l, 0)
			require.Less(t, l, res.NumClusters)
			seen[l] = true
		}
		assert.Len(t, seen, res.NumClusters)
	})

	t.Run("UnknownCriterion", func(t *testing.T) {
		sm := alternatingSpikes(20, 0, 1)
		_, err := ClusterSimMatrix(sm.M, WithCriterion(Criterion(42)))
		assert.ErrorIs(t, err, ErrUnknownCriterion)
	})
}

func TestDensityPeaks(t *testing.T) {
	t.Run("RecoversTwoBlobs", func(t *testing.T) {
		sm := alternatingSpikes(60, 0.05, 3)
		res, err := DensityPeaks(sm.M, WithRatioToKeep(0.05))
		require.NoError(t, err)
		require.Equal(t, 2, res.NumClusters)
		assertParityLabels(t, res.Labels, 60)
		assert.Len(t, res.Centroids, 2)
	})

	t.Run("EveryBinLabeled", func(t *testing.T) {
		sm := alternatingSpikes(60, 0.05, 11)
		res, err := DensityPeaks(sm.M, WithRatioToKeep(0.05))
		require.NoError(t, err)
		require.Len(t, res.Labels, 60)
		for _, l := range res.Labels {
			assert.GreaterOrEqual(t, l, 0)
			assert.Less(t, l, res.NumClusters)
		}
	})
}

func TestRhoDelta(t *testing.T) {
	// Three close points and one far outlier; diagonal pre-filled with
	// the matrix maximum, as DensityPeaks does.
	dists := [][]float64{
		{9, 1, 1, 9},
		{1, 9, 1.5, 8},
		{1, 1.5, 9, 8.5},
		{9, 8, 8.5, 9},
	}
	rhos, deltas := rhoDelta(dists, 0.5)

	// Point 0 has the smallest mean distance to its two neighbours.
	maxRho := math.Inf(-1)
	maxIdx := -1
	for i, r := range rhos {
		if r > maxRho {
			maxRho, maxIdx = r, i
		}
	}
	require.Equal(t, 0, maxIdx)
	// The densest point's delta is its row maximum.
	assert.InDelta(t, 9, deltas[0], 1e-12)
	// A denser neighbour at distance 1 bounds point 1's delta.
	assert.InDelta(t, 1, deltas[1], 1e-12)
	// The outlier is far from every denser point.
	assert.GreaterOrEqual(t, deltas[3], 8.0)
}

func TestClusterBins(t *testing.T) {
	sm := alternatingSpikes(40, 0, 1)

	t.Run("Hierarchical", func(t *testing.T) {
		labels, err := ClusterBins(sm, Hierarchical, WithClusterRange(2, 4))
		require.NoError(t, err)
		assert.Equal(t, 2, labels.NumClusters())
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		_, err := ClusterBins(sm, Method(99))
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "hierarchical", Hierarchical.String())
	assert.Equal(t, "density_based", DensityBased.String())
	assert.Equal(t, "silhouette", Silhouette.String())
	assert.Equal(t, "davies_bouldin", DaviesBouldin.String())
}

func TestErrTooManyCentroids(t *testing.T) {
	err := &ErrTooManyCentroids{Count: 23, Max: MaxCentroids}
	assert.Contains(t, err.Error(), "23")
	var target *ErrTooManyCentroids
	assert.True(t, errors.As(err, &target))
}
