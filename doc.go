// Package assembly detects recurring groups of co-active neurons
// ("cell assemblies") from simulated spiking activity and resolves
// fine-grained synaptic clustering on dendrites.
//
// The pipeline runs in four stages, each available as its own package:
//
//   - cluster: time bins of a spike matrix are grouped into candidate
//     activity states, either by hierarchical Ward-linkage clustering of
//     their cosine similarity or by density-peak clustering in PCA
//     space, with automatic cluster-count selection
//   - detect: neurons correlating with a cluster's activation above a
//     Monte-Carlo surrogate threshold become core cells; sufficiently
//     inter-correlated core-cell sets are promoted to assemblies
//   - consensus: assemblies from independent simulation seeds are
//     clustered into consensus assemblies under a seed-separation
//     constraint
//   - synapse: per postsynaptic neuron, synapses from assembly
//     presynaptic populations are spatially clustered on the dendrite
//     and validated against a fitted Poisson null model
//
// This root package is the facade: it drives the per-seed stages and
// carries the shared configuration surface.
//
// # Quick Start
//
//	ctx := context.Background()
//	labels, err := assembly.ClusterSpikes(spikeMatrices, cluster.Hierarchical)
//	if err != nil {
//	    return err
//	}
//	groups, err := assembly.DetectAssemblies(ctx, spikeMatrices, labels,
//	    assembly.WithSurrogates(1000),
//	    assembly.WithThresholdPct(95))
//	if err != nil {
//	    return err
//	}
//	consensusAssemblies, _, err := assembly.ClusterAssemblies(groups)
//
// All inputs are fully materialized in memory and all outputs are plain
// in-memory structures; persistence, plotting and simulation access are
// external collaborators.
package assembly
