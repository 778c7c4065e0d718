// Package cluster groups time bins of a spike matrix into candidate
// activity states.
//
// Two algorithms are provided: hierarchical Ward-linkage clustering of
// the cosine similarity matrix of time bins, and density-peak
// clustering of the spike matrix projected into PCA space. Both select
// the cluster count automatically and return dense zero-based labels,
// one per time bin.
package cluster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/neurokit/assembly/model"
)

var (
	// ErrUnknownMethod is returned for an unrecognized clustering method.
	ErrUnknownMethod = errors.New("unknown clustering method")
	// ErrUnknownCriterion is returned for an unrecognized model-order criterion.
	ErrUnknownCriterion = errors.New("unknown model-order criterion")
	// ErrNoCentroids is returned when density-peak clustering finds no
	// bin above the confidence band.
	ErrNoCentroids = errors.New("no cluster centroids above the confidence band")
)

// ErrTooManyCentroids indicates a bad parameterization: density-peak
// clustering found more centroids than the hard cap.
type ErrTooManyCentroids struct {
	Count int
	Max   int
}

func (e *ErrTooManyCentroids) Error() string {
	return fmt.Sprintf("found %d cluster centroids, more than the cap of %d", e.Count, e.Max)
}

// Method selects the time-bin clustering algorithm.
type Method int

const (
	Hierarchical Method = iota
	DensityBased
)

func (m Method) String() string {
	switch m {
	case Hierarchical:
		return "hierarchical"
	case DensityBased:
		return "density_based"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Criterion selects how the cluster count is scored during model-order
// selection.
type Criterion int

const (
	// Silhouette picks the count with the highest mean silhouette.
	Silhouette Criterion = iota
	// DaviesBouldin picks the count with the lowest Davies-Bouldin index.
	DaviesBouldin
)

func (c Criterion) String() string {
	switch c {
	case Silhouette:
		return "silhouette"
	case DaviesBouldin:
		return "davies_bouldin"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// MaxCentroids caps the number of density-peak centroids. Exceeding it
// signals a runaway parameterization and aborts clustering.
const MaxCentroids = 20

type options struct {
	minClusters int
	maxClusters int
	criterion   Criterion
	ratioToKeep float64
	alpha       float64
	components  int
	logger      *slog.Logger
}

// Option configures time-bin clustering.
type Option func(*options)

// WithClusterRange bounds the cluster-count search for hierarchical
// clustering. Setting min == max collapses the search to one count
// (scoring still runs).
func WithClusterRange(minClusters, maxClusters int) Option {
	return func(o *options) {
		o.minClusters = minClusters
		o.maxClusters = maxClusters
	}
}

// WithCriterion selects the model-order criterion for hierarchical
// clustering.
func WithCriterion(c Criterion) Option {
	return func(o *options) {
		o.criterion = c
	}
}

// WithRatioToKeep sets the fraction of nearest neighbours used for the
// density-peak local density estimate.
func WithRatioToKeep(ratio float64) Option {
	return func(o *options) {
		o.ratioToKeep = ratio
	}
}

// WithAlpha sets the two-sided significance level of the confidence
// band that separates density-peak centroids from the bulk.
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions() options {
	return options{
		minClusters: 5,
		maxClusters: 20,
		criterion:   DaviesBouldin,
		ratioToKeep: 0.02,
		alpha:       0.001,
		components:  12,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// ClusterBins clusters the time bins of the spike matrix with the
// given method and returns one zero-based label per bin.
func ClusterBins(sm model.SpikeMatrix, method Method, opts ...Option) (model.Labeling, error) {
	switch method {
	case Hierarchical:
		res, err := ClusterSimMatrix(sm.M, opts...)
		if err != nil {
			return nil, err
		}
		return res.Labels, nil
	case DensityBased:
		res, err := DensityPeaks(sm.M, opts...)
		if err != nil {
			return nil, err
		}
		return res.Labels, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}
}
