package assembly

import "fmt"

// ErrMissingLabels indicates that a spike matrix has no matching
// time-bin labeling: the seed was clustered separately or not at all.
type ErrMissingLabels struct {
	Seed int
}

func (e *ErrMissingLabels) Error() string {
	return fmt.Sprintf("no time-bin cluster labels for seed %d", e.Seed)
}
