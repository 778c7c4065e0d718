package numutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		pct      float64
		expected float64
	}{
		{"Median", []float64{1, 2, 3, 4}, 50, 2.5},
		{"P95", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 95, 9.55},
		{"Min", []float64{3, 1, 2}, 0, 1},
		{"Max", []float64{3, 1, 2}, 100, 3},
		{"Single", []float64{7}, 40, 7},
		{"Unsorted", []float64{5, 1, 4, 2, 3}, 25, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.pct)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, math.IsNaN(Percentile(nil, 50)))
	})

	t.Run("InputUnchanged", func(t *testing.T) {
		v := []float64{3, 1, 2}
		Percentile(v, 50)
		assert.Equal(t, []float64{3, 1, 2}, v)
	})
}

func TestArgsortDesc(t *testing.T) {
	t.Run("Simple", func(t *testing.T) {
		assert.Equal(t, []int{0, 2, 1}, ArgsortDesc([]float64{3, 1, 2}))
	})

	t.Run("StableOnTies", func(t *testing.T) {
		assert.Equal(t, []int{1, 0, 2}, ArgsortDesc([]float64{2, 5, 2}))
	})
}

func TestNanMean(t *testing.T) {
	assert.InDelta(t, 2, NanMean([]float64{1, math.NaN(), 3}), 1e-12)
	assert.True(t, math.IsNaN(NanMean([]float64{math.NaN()})))
	assert.True(t, math.IsNaN(NanMean(nil)))
}

func TestLineFit(t *testing.T) {
	t.Run("ExactLine", func(t *testing.T) {
		x := []float64{0, 1, 2, 3, 4}
		y := make([]float64, len(x))
		for i := range x {
			y[i] = 2*x[i] + 1
		}
		alpha, beta, seAlpha, seBeta := LineFit(x, y)
		require.InDelta(t, 1, alpha, 1e-12)
		require.InDelta(t, 2, beta, 1e-12)
		assert.InDelta(t, 0, seAlpha, 1e-12)
		assert.InDelta(t, 0, seBeta, 1e-12)
	})

	t.Run("NoisyLineHasPositiveErrors", func(t *testing.T) {
		x := []float64{0, 1, 2, 3, 4, 5}
		y := []float64{0.1, 0.9, 2.2, 2.8, 4.1, 4.9}
		_, beta, seAlpha, seBeta := LineFit(x, y)
		assert.InDelta(t, 1, beta, 0.1)
		assert.Greater(t, seAlpha, 0.0)
		assert.Greater(t, seBeta, 0.0)
	})
}
