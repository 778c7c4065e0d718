// Package synapse resolves fine-grained spatial clustering of synapses
// on dendrites.
//
// For every postsynaptic neuron its incoming synapses are partitioned
// into one group per assembly (by presynaptic membership) plus a
// non-assembly remainder. Within each group, synapses with
// significantly more same-section neighbours than a fitted Poisson null
// model predicts are clustered, and overlapping raw clusters are merged
// iteratively. Neurons are independent, so the work fans out across an
// errgroup.
package synapse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/neurokit/assembly/model"
)

// ErrNoSynapses is returned when the synapse table is empty.
var ErrNoSynapses = errors.New("synapse table is empty")

// ErrSynapseCountMismatch indicates that cluster merging lost or
// duplicated synapses: the total clustered count must equal the number
// of unique significant synapses fed in.
type ErrSynapseCountMismatch struct {
	Got, Want int
}

func (e *ErrSynapseCountMismatch) Error() string {
	return fmt.Sprintf("clustered synapse count %d does not match the %d significant synapses", e.Got, e.Want)
}

// ErrClusterBoundExceeded indicates more merged clusters than the
// theoretical upper bound (total synapses / minimum cluster count).
type ErrClusterBoundExceeded struct {
	Got, Bound int
}

func (e *ErrClusterBoundExceeded) Error() string {
	return fmt.Sprintf("after merging there are still more clusters (%d) than the theoretical upper bound %d", e.Got, e.Bound)
}

type options struct {
	targetRange float64
	minNsyns    int
	logSignTh   float64
	workers     int
	logger      *slog.Logger
}

// Option configures synapse clustering.
type Option func(*options)

// WithTargetRange sets the maximum inter-synapse distance (um)
// considered when testing for spatial clustering.
func WithTargetRange(r float64) Option {
	return func(o *options) { o.targetRange = r }
}

// WithMinNsyns sets the minimum number of neighbours a synapse needs
// to seed a cluster.
func WithMinNsyns(n int) Option {
	return func(o *options) { o.minNsyns = n }
}

// WithLogSignificance sets the -log10(p) threshold for a synapse to be
// a candidate cluster member.
func WithLogSignificance(th float64) Option {
	return func(o *options) { o.logSignTh = th }
}

// WithWorkers caps the number of concurrently processed postsynaptic
// neurons. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
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
		targetRange: 10,
		minNsyns:    10,
		logSignTh:   5.0,
		workers:     runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Cluster detects spatial synapse clusters for every postsynaptic
// neuron in the table, against the assemblies of grp. The result holds
// one row per synapse and one label column per group, using the
// -100/-1/>=0 convention; rows are sorted by postsynaptic gid so the
// parallel fan-out stays deterministic.
func Cluster(ctx context.Context, table model.SynapseTable, grp model.AssemblyGroup, opts ...Option) (model.SynapseClusterTable, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(table.Rows) == 0 {
		return model.SynapseClusterTable{}, ErrNoSynapses
	}

	postGids := table.PostGids()
	perGid := make([][]model.SynapseClusterRow, len(postGids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, gid := range postGids {
		i, gid := i, gid
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := clusterPostGid(table.ByPostGid(gid), grp, o)
			if err != nil {
				return fmt.Errorf("post_gid %d: %w", gid, err)
			}
			perGid[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.SynapseClusterTable{}, err
	}

	result := model.SynapseClusterTable{GroupLabels: groupLabels(grp)}
	for _, rows := range perGid {
		result.Rows = append(result.Rows, rows...)
	}
	result.SortByPostGid()
	o.logger.Info("synapse clustering done",
		"post_gids", len(postGids), "synapses", len(result.Rows), "groups", len(result.GroupLabels))
	return result, nil
}

// clusterPostGid handles a single postsynaptic neuron.
func clusterPostGid(syns []model.SynapseRecord, grp model.AssemblyGroup, o options) ([]model.SynapseClusterRow, error) {
	part := partition(syns, grp)
	dists := sectionDistances(syns)
	lambdas := poissonRates(dists, part.fracs, o.targetRange)

	n := len(syns)
	labels := groupLabels(grp)
	results := make([][]int, n)
	for i := range results {
		results[i] = make([]int, len(labels))
		for j := range results[i] {
			results[i][j] = model.SynapseNotInGroup
		}
	}

	for li, label := range labels {
		synIdx := part.synIdx[label]
		for _, s := range synIdx {
			results[s][li] = model.SynapseUnclustered
		}
		sub := subMatrix(dists, synIdx)
		significant := significantSynapses(sub, lambdas[label], o)
		if len(significant) == 0 {
			continue
		}
		raw := rawClusters(sub, significant, o.targetRange)
		merged, err := mergeClusters(raw)
		if err != nil {
			return nil, err
		}
		for ci, members := range merged {
			for _, r := range members {
				results[synIdx[r]][li] = ci
			}
		}
	}

	rows := make([]model.SynapseClusterRow, n)
	for i, s := range syns {
		rows[i] = model.SynapseClusterRow{PreGid: s.PreGid, PostGid: s.PostGid, Labels: results[i]}
	}
	return rows, nil
}

// groupLabels names the label columns: one per assembly plus the
// non-assembly remainder.
func groupLabels(grp model.AssemblyGroup) []string {
	labels := make([]string, 0, len(grp.Assemblies)+1)
	for _, a := range grp.Assemblies {
		labels = append(labels, fmt.Sprintf("assembly%d", a.ID.Index))
	}
	return append(labels, "non_assembly")
}
