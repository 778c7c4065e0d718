// Package detect extracts cell assemblies from a clustered spike
// matrix.
//
// Core cells are neurons whose correlation with a time-bin cluster's
// activation exceeds a Monte-Carlo significance threshold built from
// column-shuffled surrogate datasets. A cluster is promoted to an
// assembly only when its core cells are more correlated with each
// other than the population average.
package detect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/neurokit/assembly/internal/numutil"
	"github.com/neurokit/assembly/metric"
	"github.com/neurokit/assembly/model"
)

type options struct {
	surrogates   int
	thresholdPct float64
	workers      int
	seed         int64
	logger       *slog.Logger
}

// Option configures assembly detection.
type Option func(*options)

// WithSurrogates sets the number of surrogate datasets used for the
// significance threshold.
func WithSurrogates(n int) Option {
	return func(o *options) { o.surrogates = n }
}

// WithThresholdPct sets the percentile of the surrogate correlations
// used as the core-cell significance threshold.
func WithThresholdPct(pct float64) Option {
	return func(o *options) { o.thresholdPct = pct }
}

// WithWorkers caps the number of concurrent surrogate tasks. Defaults
// to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSeed sets the base seed for surrogate generation. Task i derives
// its own source from seed+i, keeping parallel workers deterministic
// and independent.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
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
		surrogates:   1000,
		thresholdPct: 95,
		workers:      runtime.GOMAXPROCS(0),
		seed:         1,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// CoreCellScores correlates every neuron's activity with every cluster
// activation time course, yielding a (neuron x cluster) score matrix.
func CoreCellScores(spikes *mat.Dense, labels model.Labeling) *mat.Dense {
	return metric.PairwiseCorrelationXY(spikes, labels.OneHot())
}

// SurrogateThresholds builds an empirical null for the core-cell
// scores: the spike matrix columns are permuted (preserving each
// neuron's spike count) N times, the correlation recomputed per
// surrogate, and the configured percentile taken per (neuron, cluster)
// cell.
//
// The surrogate tasks are independent and run on an errgroup; all must
// complete before the percentile is computed.
func SurrogateThresholds(ctx context.Context, spikes *mat.Dense, labels model.Labeling, opts ...Option) (*mat.Dense, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	indicator := labels.OneHot()
	nNeurons, nBins := spikes.Dims()
	k, _ := indicator.Dims()

	surrogates := make([]*mat.Dense, o.surrogates)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < o.surrogates; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(o.seed + int64(i)))
			perm := rng.Perm(nBins)
			shuffled := mat.NewDense(nNeurons, nBins, nil)
			for j, src := range perm {
				for r := 0; r < nNeurons; r++ {
					shuffled.Set(r, j, spikes.At(r, src))
				}
			}
			surrogates[i] = metric.PairwiseCorrelationXY(shuffled, indicator)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ths := mat.NewDense(nNeurons, k, nil)
	cell := make([]float64, o.surrogates)
	for r := 0; r < nNeurons; r++ {
		for c := 0; c < k; c++ {
			for i, s := range surrogates {
				cell[i] = s.At(r, c)
			}
			ths.Set(r, c, numutil.Percentile(cell, o.thresholdPct))
		}
	}
	return ths, nil
}

// Assemblies detects the assemblies of one seed: core cells per
// cluster, then the within-cluster correlation gate. Clusters that fail
// the gate are discarded and emit no assembly.
func Assemblies(ctx context.Context, sm model.SpikeMatrix, labels model.Labeling, seed int, opts ...Option) (model.AssemblyGroup, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	scores := CoreCellScores(sm.M, labels)
	ths, err := SurrogateThresholds(ctx, sm.M, labels, opts...)
	if err != nil {
		return model.AssemblyGroup{}, err
	}

	nNeurons, k := scores.Dims()
	coreCells := make([][]bool, nNeurons)
	for r := 0; r < nNeurons; r++ {
		coreCells[r] = make([]bool, k)
		for c := 0; c < k; c++ {
			coreCells[r][c] = scores.At(r, c) > ths.At(r, c)
		}
	}

	promoted := withinClusterGate(sm.M, coreCells)

	group := model.AssemblyGroup{
		Label:    fmt.Sprintf("seed%d", seed),
		AllGids:  sm.Gids,
		Metadata: labels,
	}
	for _, c := range promoted {
		var gids []model.GID
		for r := 0; r < nNeurons; r++ {
			if coreCells[r][c] {
				gids = append(gids, sm.Gids[r])
			}
		}
		group.Assemblies = append(group.Assemblies,
			model.NewAssembly(model.AssemblyID{Index: c, Seed: seed}, gids))
	}
	o.logger.Info("assembly detection done",
		"seed", seed, "clusters", k, "assemblies", len(group.Assemblies))
	return group, nil
}

// withinClusterGate returns the cluster indices whose core-cell mean
// pairwise correlation strictly exceeds the global mean (self pairs
// excluded).
func withinClusterGate(spikes *mat.Dense, coreCells [][]bool) []int {
	corrs := metric.PairwiseCorrelation(spikes)
	n, _ := corrs.Dims()
	for i := 0; i < n; i++ {
		corrs.Set(i, i, math.NaN())
	}

	var all []float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			all = append(all, corrs.At(i, j))
		}
	}
	globalMean := numutil.NanMean(all)

	k := 0
	if n > 0 {
		k = len(coreCells[0])
	}
	var promoted []int
	for c := 0; c < k; c++ {
		var idx []int
		for r := 0; r < n; r++ {
			if coreCells[r][c] {
				idx = append(idx, r)
			}
		}
		var within []float64
		for _, i := range idx {
			for _, j := range idx {
				within = append(within, corrs.At(i, j))
			}
		}
		if numutil.NanMean(within) > globalMean {
			promoted = append(promoted, c)
		}
	}
	return promoted
}
