package synapse

import (
	"fmt"
	"math"

	"github.com/neurokit/assembly/model"
)

// partitioning of one neuron's synapses into labeled groups. A synapse
// may appear under several assemblies (neurons can belong to more than
// one) but in exactly one of assembly-union / non-assembly, so the
// fractions need not add up to 1.
type partitioning struct {
	synIdx map[string][]int
	fracs  map[string]float64
}

func partition(syns []model.SynapseRecord, grp model.AssemblyGroup) partitioning {
	n := len(syns)
	part := partitioning{
		synIdx: make(map[string][]int, len(grp.Assemblies)+1),
		fracs:  make(map[string]float64, len(grp.Assemblies)+1),
	}
	inAny := make([]bool, n)
	for _, a := range grp.Assemblies {
		label := fmt.Sprintf("assembly%d", a.ID.Index)
		var idx []int
		for i, s := range syns {
			if a.Contains(s.PreGid) {
				idx = append(idx, i)
				inAny[i] = true
			}
		}
		part.synIdx[label] = idx
		part.fracs[label] = float64(len(idx)) / float64(n)
	}
	var rest []int
	for i := 0; i < n; i++ {
		if !inAny[i] {
			rest = append(rest, i)
		}
	}
	part.synIdx["non_assembly"] = rest
	part.fracs["non_assembly"] = float64(len(rest)) / float64(n)
	return part
}

// sectionDistances returns the Euclidean distance between every pair of
// synapses on the same dendritic section. Cross-section pairs and the
// diagonal are NaN, which keeps cross-branch pairs out of every
// downstream comparison.
func sectionDistances(syns []model.SynapseRecord) [][]float64 {
	n := len(syns)
	dists := make([][]float64, n)
	for i := range dists {
		dists[i] = make([]float64, n)
		dists[i][i] = math.NaN()
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.NaN()
			if syns[i].SectionID == syns[j].SectionID {
				dx := syns[i].X - syns[j].X
				dy := syns[i].Y - syns[j].Y
				dz := syns[i].Z - syns[j].Z
				d = math.Sqrt(dx*dx + dy*dy + dz*dz)
			}
			dists[i][j] = d
			dists[j][i] = d
		}
	}
	return dists
}

// subMatrix indexes out the rows and columns of dists given by idx.
func subMatrix(dists [][]float64, idx []int) [][]float64 {
	sub := make([][]float64, len(idx))
	for i, r := range idx {
		sub[i] = make([]float64, len(idx))
		for j, c := range idx {
			sub[i][j] = dists[r][c]
		}
	}
	return sub
}
