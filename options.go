package assembly

import (
	"github.com/neurokit/assembly/cluster"
)

type options struct {
	minClusters   int
	maxClusters   int
	criterion     cluster.Criterion
	seedOverrides map[int]int
	surrogates    int
	thresholdPct  float64
	workers       int
	randSeed      int64
	logger        *Logger
}

// Option configures the pipeline facade.
type Option func(*options)

// WithClusterRange bounds the hierarchical cluster-count search.
func WithClusterRange(minClusters, maxClusters int) Option {
	return func(o *options) {
		o.minClusters = minClusters
		o.maxClusters = maxClusters
	}
}

// WithCriterion selects the model-order criterion for hierarchical
// clustering.
func WithCriterion(c cluster.Criterion) Option {
	return func(o *options) { o.criterion = c }
}

// WithSeedOverride pins the cluster count for individual seeds instead
// of the automatic model-order selection.
func WithSeedOverride(overrides map[int]int) Option {
	return func(o *options) { o.seedOverrides = overrides }
}

// WithSurrogates sets the number of surrogate datasets for the
// core-cell significance threshold.
func WithSurrogates(n int) Option {
	return func(o *options) { o.surrogates = n }
}

// WithThresholdPct sets the surrogate percentile used as the core-cell
// significance threshold.
func WithThresholdPct(pct float64) Option {
	return func(o *options) { o.thresholdPct = pct }
}

// WithWorkers caps concurrency in the parallel stages. Defaults to
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRandSeed sets the base seed for surrogate generation.
func WithRandSeed(seed int64) Option {
	return func(o *options) { o.randSeed = seed }
}

// WithLogger sets the pipeline logger. If nil, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions() options {
	return options{
		minClusters:  5,
		maxClusters:  20,
		criterion:    cluster.DaviesBouldin,
		surrogates:   1000,
		thresholdPct: 95,
		randSeed:     1,
		logger:       NoopLogger(),
	}
}
