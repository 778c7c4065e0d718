package model

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"
)

// GID is the unique identifier of a simulated neuron.
type GID = uint32

// SpikeMatrix holds binned spiking activity: one row per neuron, one
// column per time bin. Gids and TBins carry the row/column bookkeeping.
type SpikeMatrix struct {
	M     *mat.Dense
	Gids  []GID
	TBins []float64
}

// NewSpikeMatrix validates the row/column bookkeeping and wraps the
// matrix. Rows must match len(gids) and columns must match len(tBins).
func NewSpikeMatrix(m *mat.Dense, gids []GID, tBins []float64) (SpikeMatrix, error) {
	r, c := m.Dims()
	if r != len(gids) {
		return SpikeMatrix{}, fmt.Errorf("spike matrix has %d rows but %d gids", r, len(gids))
	}
	if c != len(tBins) {
		return SpikeMatrix{}, fmt.Errorf("spike matrix has %d columns but %d time bins", c, len(tBins))
	}
	return SpikeMatrix{M: m, Gids: gids, TBins: tBins}, nil
}

// NumNeurons returns the number of rows (neurons).
func (sm SpikeMatrix) NumNeurons() int { r, _ := sm.M.Dims(); return r }

// NumBins returns the number of columns (time bins).
func (sm SpikeMatrix) NumBins() int { _, c := sm.M.Dims(); return c }

// Labeling is a dense zero-based cluster assignment, one label per item
// (time bin or assembly). There is no reserved noise label.
type Labeling []int

// NumClusters returns the number of distinct labels, assuming the
// labeling is dense from 0..k-1.
func (l Labeling) NumClusters() int {
	k := 0
	for _, c := range l {
		if c+1 > k {
			k = c + 1
		}
	}
	return k
}

// OneHot converts the labeling into a (clusters x items) 0/1 indicator
// matrix: row c is the activation time course of cluster c.
func (l Labeling) OneHot() *mat.Dense {
	k := l.NumClusters()
	ind := mat.NewDense(k, len(l), nil)
	for i, c := range l {
		ind.Set(c, i, 1)
	}
	return ind
}

// AssemblyID is the composite identity of an assembly: a local index
// within its seed plus the seed it originates from.
type AssemblyID struct {
	Index int
	Seed  int
}

// String returns a string representation of the AssemblyID.
func (id AssemblyID) String() string {
	return fmt.Sprintf("assembly%d@seed%d", id.Index, id.Seed)
}

// Assembly is an unordered set of co-active neurons (core cells) with
// provenance. The gid set is stored as a roaring bitmap.
type Assembly struct {
	ID   AssemblyID
	Gids *roaring.Bitmap
}

// NewAssembly builds an assembly from a gid slice.
func NewAssembly(id AssemblyID, gids []GID) Assembly {
	return Assembly{ID: id, Gids: roaring.BitmapOf(gids...)}
}

// Len returns the number of neurons in the assembly.
func (a Assembly) Len() int { return int(a.Gids.GetCardinality()) }

// Contains reports whether gid is a member of the assembly.
func (a Assembly) Contains(gid GID) bool { return a.Gids.Contains(gid) }

// Union returns a new assembly holding the union of both gid sets.
// The result keeps the receiver's identity.
func (a Assembly) Union(b Assembly) Assembly {
	return Assembly{ID: a.ID, Gids: roaring.Or(a.Gids, b.Gids)}
}

// Intersection returns a new assembly holding the shared gids.
func (a Assembly) Intersection(b Assembly) Assembly {
	return Assembly{ID: a.ID, Gids: roaring.And(a.Gids, b.Gids)}
}

// Difference returns a new assembly holding gids of a not present in b.
func (a Assembly) Difference(b Assembly) Assembly {
	return Assembly{ID: a.ID, Gids: roaring.AndNot(a.Gids, b.Gids)}
}

// AssemblyGroup is an ordered collection of assemblies drawn from a
// common gid universe. Metadata carries the time-bin cluster labels the
// assemblies were derived from (nil for consensus-derived groups).
type AssemblyGroup struct {
	Label      string
	Assemblies []Assembly
	AllGids    []GID
	Metadata   Labeling
}

// MembershipMatrix returns one boolean row per assembly over the given
// gid universe: entry (i,j) is true when universe[j] belongs to
// assembly i.
func (g AssemblyGroup) MembershipMatrix(universe []GID) [][]bool {
	rows := make([][]bool, len(g.Assemblies))
	for i, a := range g.Assemblies {
		row := make([]bool, len(universe))
		for j, gid := range universe {
			row[j] = a.Contains(gid)
		}
		rows[i] = row
	}
	return rows
}

// GidUniverse returns the sorted union of AllGids across groups.
func GidUniverse(groups []AssemblyGroup) []GID {
	seen := roaring.New()
	for _, g := range groups {
		seen.AddMany(g.AllGids)
	}
	return seen.ToArray()
}

// ConsensusAssembly is an assembly merged from matching assemblies
// detected independently across seeds. Constituents keeps the per-seed
// provenance.
type ConsensusAssembly struct {
	Label        int
	Gids         *roaring.Bitmap
	Constituents []Assembly
}

// Len returns the number of neurons in the consensus assembly.
func (c ConsensusAssembly) Len() int { return int(c.Gids.GetCardinality()) }

// Assembly flattens the consensus assembly into a plain Assembly,
// tagged with the consensus label and seed -1.
func (c ConsensusAssembly) Assembly() Assembly {
	return Assembly{ID: AssemblyID{Index: c.Label, Seed: -1}, Gids: c.Gids}
}

// SynapseRecord locates one synapse on a dendrite: presynaptic and
// postsynaptic gids, the dendritic section it sits on and its 3D
// position.
type SynapseRecord struct {
	PreGid    GID
	PostGid   GID
	SectionID int
	X, Y, Z   float64
}

// SynapseTable is an ordered collection of synapse records restricted
// to a target population.
type SynapseTable struct {
	Rows []SynapseRecord
}

// PostGids returns the sorted distinct postsynaptic gids in the table.
func (t SynapseTable) PostGids() []GID {
	seen := roaring.New()
	for _, r := range t.Rows {
		seen.Add(r.PostGid)
	}
	return seen.ToArray()
}

// ByPostGid returns the rows belonging to one postsynaptic neuron, in
// table order.
func (t SynapseTable) ByPostGid(gid GID) []SynapseRecord {
	var rows []SynapseRecord
	for _, r := range t.Rows {
		if r.PostGid == gid {
			rows = append(rows, r)
		}
	}
	return rows
}

// Synapse cluster label conventions, per (synapse, group) cell.
const (
	// SynapseNotInGroup marks a synapse that does not belong to the group.
	SynapseNotInGroup = -100
	// SynapseUnclustered marks a group member outside any significant cluster.
	SynapseUnclustered = -1
)

// SynapseClusterRow is the per-synapse output of synapse clustering:
// one integer label per group, using the -100/-1/>=0 convention.
type SynapseClusterRow struct {
	PreGid  GID
	PostGid GID
	Labels  []int
}

// SynapseClusterTable collects cluster rows for many postsynaptic
// neurons. GroupLabels names the label columns.
type SynapseClusterTable struct {
	GroupLabels []string
	Rows        []SynapseClusterRow
}

// SortByPostGid orders rows by postsynaptic gid (stable) so that
// concatenated parallel results are deterministic.
func (t *SynapseClusterTable) SortByPostGid() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].PostGid < t.Rows[j].PostGid
	})
}
