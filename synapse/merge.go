package synapse

import "sort"

// rawClusters thresholds the significant-synapse sub-distance columns
// at the target range. Raw cluster j holds every synapse (row index in
// the label sub-space) within range of significant synapse j; clusters
// overlap freely at this stage.
func rawClusters(sub [][]float64, significant []int, targetRange float64) [][]int {
	clusters := make([][]int, 0, len(significant))
	for _, s := range significant {
		var members []int
		for r := range sub {
			if sub[r][s] < targetRange { // NaN compares false
				members = append(members, r)
			}
		}
		clusters = append(clusters, members)
	}
	return clusters
}

// mergeClusters merges raw clusters until every significant synapse
// belongs to exactly one cluster: for a shrinking overlap threshold
// (from the smallest raw cluster size minus one down to 2), any two
// clusters sharing more than the threshold synapses are unioned and the
// absorbed one dropped.
//
// The clusters are kept as an arena of index sets so merging never
// aliases a matrix that is being shrunk while iterated.
func mergeClusters(raw [][]int) ([][]int, error) {
	clusters := make([]map[int]struct{}, len(raw))
	minCount := -1
	unique := make(map[int]struct{})
	for i, members := range raw {
		set := make(map[int]struct{}, len(members))
		for _, m := range members {
			set[m] = struct{}{}
			unique[m] = struct{}{}
		}
		clusters[i] = set
		if minCount < 0 || len(set) < minCount {
			minCount = len(set)
		}
	}
	nsyns := len(unique)
	bound := 0
	if minCount > 0 {
		bound = nsyns / minCount
	}

	for th := minCount - 1; th >= 2; th-- {
		for i := 0; i < len(clusters)-1; i++ {
			var absorbed []int
			for j := i + 1; j < len(clusters); j++ {
				if overlap(clusters[i], clusters[j]) > th {
					absorbed = append(absorbed, j)
				}
			}
			if len(absorbed) == 0 {
				continue
			}
			for _, j := range absorbed {
				for m := range clusters[j] {
					clusters[i][m] = struct{}{}
				}
			}
			clusters = dropIndices(clusters, absorbed)
		}
		if totalMembers(clusters) == nsyns {
			break
		}
	}

	total := totalMembers(clusters)
	if total != nsyns {
		return nil, &ErrSynapseCountMismatch{Got: total, Want: nsyns}
	}
	if len(clusters) > bound {
		return nil, &ErrClusterBoundExceeded{Got: len(clusters), Bound: bound}
	}

	merged := make([][]int, len(clusters))
	for i, set := range clusters {
		members := make([]int, 0, len(set))
		for m := range set {
			members = append(members, m)
		}
		sort.Ints(members)
		merged[i] = members
	}
	return merged, nil
}

func overlap(a, b map[int]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for m := range a {
		if _, ok := b[m]; ok {
			n++
		}
	}
	return n
}

func totalMembers(clusters []map[int]struct{}) int {
	total := 0
	for _, c := range clusters {
		total += len(c)
	}
	return total
}

// dropIndices removes the given (ascending) indices, preserving the
// order of the survivors.
func dropIndices(clusters []map[int]struct{}, drop []int) []map[int]struct{} {
	dropSet := make(map[int]struct{}, len(drop))
	for _, d := range drop {
		dropSet[d] = struct{}{}
	}
	kept := clusters[:0]
	for i, c := range clusters {
		if _, gone := dropSet[i]; !gone {
			kept = append(kept, c)
		}
	}
	return kept
}
