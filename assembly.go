package assembly

import (
	"context"
	"sort"

	"github.com/neurokit/assembly/cluster"
	"github.com/neurokit/assembly/consensus"
	"github.com/neurokit/assembly/detect"
	"github.com/neurokit/assembly/model"
)

// ClusterSpikes clusters the time bins of every seed's spike matrix
// and returns one labeling per seed. Per-seed overrides collapse the
// cluster-count search to the pinned value.
func ClusterSpikes(spikes map[int]model.SpikeMatrix, method cluster.Method, opts ...Option) (map[int]model.Labeling, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.Background()

	labelings := make(map[int]model.Labeling, len(spikes))
	for _, seed := range sortedSeeds(spikes) {
		sm := spikes[seed]
		minK, maxK := o.minClusters, o.maxClusters
		if pinned, ok := o.seedOverrides[seed]; ok {
			minK, maxK = pinned, pinned
		}
		labels, err := cluster.ClusterBins(sm, method,
			cluster.WithClusterRange(minK, maxK),
			cluster.WithCriterion(o.criterion),
			cluster.WithLogger(o.logger.WithSeed(seed).Logger),
		)
		o.logger.LogClustering(ctx, seed, sm.NumBins(), labels.NumClusters(), err)
		if err != nil {
			return nil, err
		}
		labelings[seed] = labels
	}
	return labelings, nil
}

// DetectAssemblies runs core-cell extraction and assembly promotion for
// every seed, pairing each spike matrix with its time-bin labeling.
func DetectAssemblies(ctx context.Context, spikes map[int]model.SpikeMatrix, labelings map[int]model.Labeling, opts ...Option) (map[int]model.AssemblyGroup, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	groups := make(map[int]model.AssemblyGroup, len(spikes))
	for _, seed := range sortedSeeds(spikes) {
		labels, ok := labelings[seed]
		if !ok {
			return nil, &ErrMissingLabels{Seed: seed}
		}
		detectOpts := []detect.Option{
			detect.WithSurrogates(o.surrogates),
			detect.WithThresholdPct(o.thresholdPct),
			detect.WithSeed(o.randSeed),
			detect.WithLogger(o.logger.WithSeed(seed).Logger),
		}
		if o.workers > 0 {
			detectOpts = append(detectOpts, detect.WithWorkers(o.workers))
		}
		group, err := detect.Assemblies(ctx, spikes[seed], labels, seed, detectOpts...)
		o.logger.LogDetection(ctx, seed, labels.NumClusters(), len(group.Assemblies), err)
		if err != nil {
			return nil, err
		}
		groups[seed] = group
	}
	return groups, nil
}

// ClusterAssemblies merges the per-seed assembly groups into consensus
// assemblies. Groups are processed in ascending seed order so the
// membership rows and labels are deterministic.
func ClusterAssemblies(groups map[int]model.AssemblyGroup, opts ...consensus.Option) ([]model.ConsensusAssembly, model.Labeling, error) {
	ordered := make([]model.AssemblyGroup, 0, len(groups))
	for _, seed := range sortedSeeds(groups) {
		ordered = append(ordered, groups[seed])
	}
	return consensus.Build(ordered, opts...)
}

func sortedSeeds[V any](m map[int]V) []int {
	seeds := make([]int, 0, len(m))
	for s := range m {
		seeds = append(seeds, s)
	}
	sort.Ints(seeds)
	return seeds
}
