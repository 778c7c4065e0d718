package assembly

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurokit/assembly/cluster"
	"github.com/neurokit/assembly/model"
)

// Two seeds of the same ground truth: neurons 0..4 active on even bins,
// neurons 5..9 on odd bins.
func paritySpikes(t *testing.T, nBins int) map[int]model.SpikeMatrix {
	t.Helper()
	spikes := make(map[int]model.SpikeMatrix, 2)
	for seed := 0; seed < 2; seed++ {
		m := mat.NewDense(10, nBins, nil)
		for j := 0; j < nBins; j++ {
			lo, hi := 0, 5
			if j%2 == 1 {
				lo, hi = 5, 10
			}
			for i := lo; i < hi; i++ {
				m.Set(i, j, 1)
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
		sm, err := model.NewSpikeMatrix(m, gids, tBins)
		require.NoError(t, err)
		spikes[seed] = sm
	}
	return spikes
}

func TestPipeline(t *testing.T) {
	spikes := paritySpikes(t, 40)

	labelings, err := ClusterSpikes(spikes, cluster.Hierarchical,
		WithClusterRange(2, 4),
		WithCriterion(cluster.Silhouette),
	)
	require.NoError(t, err)
	require.Len(t, labelings, 2)
	for seed, labels := range labelings {
		assert.Equal(t, 2, labels.NumClusters(), "seed %d", seed)
	}

	groups, err := DetectAssemblies(context.Background(), spikes, labelings,
		WithSurrogates(200), WithRandSeed(42))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for seed, grp := range groups {
		require.Len(t, grp.Assemblies, 2, "seed %d", seed)
		for _, a := range grp.Assemblies {
			assert.Equal(t, seed, a.ID.Seed)
			assert.Equal(t, 5, a.Len())
		}
	}

	result, labels, err := ClusterAssemblies(groups)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 4, len(labels))
	// Both seeds recover the same two neuron groups, so each consensus
	// assembly unions two identical constituents.
	for _, ca := range result {
		assert.Len(t, ca.Constituents, 2)
		assert.Equal(t, uint64(5), ca.Gids.GetCardinality())
	}
}

func TestClusterSpikesSeedOverride(t *testing.T) {
	spikes := paritySpikes(t, 40)

	labelings, err := ClusterSpikes(spikes, cluster.Hierarchical,
		WithClusterRange(2, 4),
		WithSeedOverride(map[int]int{1: 3}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, labelings[0].NumClusters())
	assert.Equal(t, 3, labelings[1].NumClusters())
}

func TestDetectAssembliesMissingLabels(t *testing.T) {
	spikes := paritySpikes(t, 20)
	labelings := map[int]model.Labeling{0: make(model.Labeling, 20)}

	_, err := DetectAssemblies(context.Background(), spikes, labelings,
		WithSurrogates(10))
	var target *ErrMissingLabels
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 1, target.Seed)
	assert.Contains(t, err.Error(), "seed 1")
}
