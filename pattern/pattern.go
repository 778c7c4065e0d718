// Package pattern reorganizes time-bin cluster-label sequences by
// externally supplied stimulus-pattern labels.
package pattern

import (
	"errors"

	"github.com/neurokit/assembly/model"
)

// ErrLengthMismatch is returned when labels and patterns differ in length.
var ErrLengthMismatch = errors.New("cluster labels and pattern labels differ in length")

// GroupByPattern collects the cluster labels per stimulus pattern,
// preserving presentation order within each pattern.
func GroupByPattern(labels model.Labeling, patterns []string) (map[string][]int, error) {
	if len(labels) != len(patterns) {
		return nil, ErrLengthMismatch
	}
	groups := make(map[string][]int)
	for i, p := range patterns {
		groups[p] = append(groups[p], labels[i])
	}
	return groups, nil
}

// WindowByTime returns the indices of stimulus times falling inside
// [t0, t1). Used when a long simulation is analyzed in time chunks.
func WindowByTime(stimTimes []float64, t0, t1 float64) []int {
	var idx []int
	for i, t := range stimTimes {
		if t0 <= t && t < t1 {
			idx = append(idx, i)
		}
	}
	return idx
}
