// Package model defines the core value types passed between the
// clustering, detection, consensus and synapse packages.
//
// # Identity Types
//
//   - GID: Globally unique identifier of a simulated neuron (uint32)
//   - AssemblyID: Composite identity of an assembly (local index + seed)
//
// # Data Types
//
//   - SpikeMatrix: Dense neuron x time-bin activity matrix with gid and
//     bin-edge bookkeeping
//   - Labeling: Dense zero-based cluster labels, one per item
//   - Assembly / AssemblyGroup: Sets of co-active neurons with provenance
//   - ConsensusAssembly: Assembly merged from matching per-seed assemblies
//   - SynapseRecord / SynapseTable: Synapse locations on dendrites
//   - SynapseClusterTable: Per-synapse cluster labels per group
//
// All types are value objects: once constructed they are treated as
// immutable by the algorithm packages.
package model
