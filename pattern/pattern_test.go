package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurokit/assembly/model"
)

func TestGroupByPattern(t *testing.T) {
	t.Run("PreservesOrder", func(t *testing.T) {
		labels := model.Labeling{0, 1, 0, 2, 1, 0}
		patterns := []string{"A", "B", "A", "A", "B", "C"}

		groups, err := GroupByPattern(labels, patterns)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, []int{0, 0, 2}, groups["A"])
		assert.Equal(t, []int{1, 1}, groups["B"])
		assert.Equal(t, []int{0}, groups["C"])
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := GroupByPattern(model.Labeling{0, 1}, []string{"A"})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("Empty", func(t *testing.T) {
		groups, err := GroupByPattern(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})
}

func TestWindowByTime(t *testing.T) {
	stimTimes := []float64{0, 500, 1000, 1500, 2000}

	t.Run("HalfOpenInterval", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, WindowByTime(stimTimes, 500, 2000))
	})

	t.Run("NoMatches", func(t *testing.T) {
		assert.Empty(t, WindowByTime(stimTimes, 3000, 4000))
	})

	t.Run("FullRange", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2, 3, 4}, WindowByTime(stimTimes, 0, 2001))
	})
}
