package hcluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two tight pairs on a line: {0, 1} and {10, 11}
func pairFixture() []float64 {
	points := []float64{0, 1, 10, 11}
	dists := make([][]float64, len(points))
	for i := range points {
		dists[i] = make([]float64, len(points))
		for j := range points {
			dists[i][j] = math.Abs(points[i] - points[j])
		}
	}
	return Condense(dists)
}

func TestCondense(t *testing.T) {
	cond := pairFixture()
	require.Len(t, cond, 6)
	assert.Equal(t, []float64{1, 10, 11, 9, 10, 1}, cond)
	assert.Equal(t, 4, NumPoints(cond))
}

func TestClusterWard(t *testing.T) {
	dend, err := Cluster(pairFixture(), Ward)
	require.NoError(t, err)
	require.Len(t, dend.Merges, 3)

	// The two unit-distance pairs merge first.
	assert.InDelta(t, 1, dend.Merges[0].Height, 1e-12)
	assert.InDelta(t, 1, dend.Merges[1].Height, 1e-12)
	// Final Ward merge of two size-2 clusters at distance ~10:
	// sqrt((3*d(0,2)^2 + 3*d(1,3)^2 - 2*d^2)/4) computed recursively.
	assert.InDelta(t, math.Sqrt(200), dend.Merges[2].Height, 1e-9)
	assert.Equal(t, 4, dend.Merges[2].Size)

	labels := dend.Cut(2)
	assert.Equal(t, []int{0, 0, 1, 1}, labels)
}

func TestClusterLinkages(t *testing.T) {
	tests := []struct {
		name        string
		linkage     Linkage
		finalHeight float64
	}{
		{"Single", Single, 9},
		{"Complete", Complete, 11},
		{"Average", Average, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dend, err := Cluster(pairFixture(), tt.linkage)
			require.NoError(t, err)
			assert.InDelta(t, tt.finalHeight, dend.Merges[2].Height, 1e-12)
			assert.Equal(t, []int{0, 0, 1, 1}, dend.Cut(2))
		})
	}
}

func TestCut(t *testing.T) {
	dend, err := Cluster(pairFixture(), Ward)
	require.NoError(t, err)

	t.Run("AllSingletons", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2, 3}, dend.Cut(4))
	})

	t.Run("OneCluster", func(t *testing.T) {
		assert.Equal(t, []int{0, 0, 0, 0}, dend.Cut(1))
	})

	t.Run("ClampsOutOfRange", func(t *testing.T) {
		assert.Equal(t, dend.Cut(1), dend.Cut(0))
		assert.Equal(t, dend.Cut(4), dend.Cut(9))
	})

	t.Run("DenseLabels", func(t *testing.T) {
		for k := 1; k <= 4; k++ {
			labels := dend.Cut(k)
			seen := make(map[int]bool)
			for _, l := range labels {
				seen[l] = true
			}
			require.Len(t, seen, k)
			for l := 0; l < k; l++ {
				assert.True(t, seen[l], "label %d missing for k=%d", l, k)
			}
		}
	})
}

func TestClusterInvalidInput(t *testing.T) {
	_, err := Cluster([]float64{1, 2}, Ward)
	assert.Error(t, err)
}
