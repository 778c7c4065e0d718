package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("UnitDiagonal", func(t *testing.T) {
		X := mat.NewDense(3, 4, []float64{
			1, 2, 3, 4,
			0, 1, 0, 1,
			5, 0, 0, 1,
		})
		sim := CosineSimilarity(X)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 1, sim.At(i, i), 1e-12)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		X := mat.NewDense(3, 3, []float64{1, 0, 0, 1, 1, 0, 0, 2, 1})
		sim := CosineSimilarity(X)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDelta(t, sim.At(j, i), sim.At(i, j), 1e-12)
			}
		}
	})

	t.Run("OrthogonalRows", func(t *testing.T) {
		X := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
		sim := CosineSimilarity(X)
		assert.InDelta(t, 0, sim.At(0, 1), 1e-12)
	})

	t.Run("ZeroRowPropagatesNaN", func(t *testing.T) {
		X := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
		sim := CosineSimilarity(X)
		assert.True(t, math.IsNaN(sim.At(0, 0)))
		assert.True(t, math.IsNaN(sim.At(0, 1)))
	})
}

func TestPairwiseCorrelation(t *testing.T) {
	t.Run("PerfectAntiCorrelation", func(t *testing.T) {
		X := mat.NewDense(2, 4, []float64{
			1, 0, 1, 0,
			0, 1, 0, 1,
		})
		corrs := PairwiseCorrelation(X)
		assert.InDelta(t, 1, corrs.At(0, 0), 1e-12)
		assert.InDelta(t, -1, corrs.At(0, 1), 1e-12)
		assert.InDelta(t, -1, corrs.At(1, 0), 1e-12)
	})

	t.Run("ConstantRowBecomesZero", func(t *testing.T) {
		X := mat.NewDense(2, 3, []float64{
			2, 2, 2,
			1, 2, 3,
		})
		corrs := PairwiseCorrelation(X)
		assert.Equal(t, 0.0, corrs.At(0, 0))
		assert.Equal(t, 0.0, corrs.At(0, 1))
		assert.Equal(t, 0.0, corrs.At(1, 0))
		assert.InDelta(t, 1, corrs.At(1, 1), 1e-12)
	})
}

func TestPairwiseCorrelationXY(t *testing.T) {
	X := mat.NewDense(2, 4, []float64{
		1, 0, 1, 0,
		0, 1, 0, 1,
	})
	Y := mat.NewDense(1, 4, []float64{1, 0, 1, 0})
	corrs := PairwiseCorrelationXY(X, Y)
	r, c := corrs.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 1, c)
	assert.InDelta(t, 1, corrs.At(0, 0), 1e-12)
	assert.InDelta(t, -1, corrs.At(1, 0), 1e-12)
}

func TestEuclideanDistances(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 0,
		3, 4,
		0, 1,
	})
	d := EuclideanDistances(X)
	assert.Equal(t, 0.0, d.At(0, 0))
	assert.InDelta(t, 5, d.At(0, 1), 1e-12)
	assert.InDelta(t, 5, d.At(1, 0), 1e-12)
	assert.InDelta(t, 1, d.At(0, 2), 1e-12)
}
