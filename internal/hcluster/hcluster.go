// Package hcluster implements agglomerative hierarchical clustering
// over a condensed pairwise distance vector, with dendrogram cuts into
// a fixed number of flat clusters.
//
// The merge heights follow the Lance-Williams update formulas, so Ward,
// complete, average and single linkage all share one merge loop.
package hcluster

import (
	"fmt"
	"math"
)

// Linkage selects the inter-cluster distance update rule.
type Linkage int

const (
	Ward Linkage = iota
	Complete
	Average
	Single
)

func (l Linkage) String() string {
	switch l {
	case Ward:
		return "ward"
	case Complete:
		return "complete"
	case Average:
		return "average"
	case Single:
		return "single"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// Merge records one agglomeration step: clusters A and B (original
// points are 0..n-1, merged clusters n, n+1, ...) joined at Height into
// a cluster of Size points.
type Merge struct {
	A, B   int
	Height float64
	Size   int
}

// Dendrogram is the full merge history of n points (n-1 merges).
type Dendrogram struct {
	N      int
	Merges []Merge
}

// Condense converts a square symmetric distance matrix given as rows
// into condensed form (upper triangle, row-major).
func Condense(dists [][]float64) []float64 {
	n := len(dists)
	cond := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cond = append(cond, dists[i][j])
		}
	}
	return cond
}

// NumPoints recovers n from the length of a condensed distance vector.
func NumPoints(cond []float64) int {
	n := int(math.Round((1 + math.Sqrt(1+8*float64(len(cond))))/2))
	return n
}

// Cluster agglomerates the points described by the condensed distance
// vector using the given linkage and returns the dendrogram.
func Cluster(cond []float64, linkage Linkage) (*Dendrogram, error) {
	n := NumPoints(cond)
	if n < 2 || n*(n-1)/2 != len(cond) {
		return nil, fmt.Errorf("condensed distance length %d is not n*(n-1)/2 for any n >= 2", len(cond))
	}

	// Working copy as a full matrix for O(1) symmetric access.
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	k := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d[i][j] = cond[k]
			d[j][i] = cond[k]
			k++
		}
	}

	active := make([]bool, n)
	size := make([]float64, n)
	id := make([]int, n) // current dendrogram id of slot i
	for i := 0; i < n; i++ {
		active[i] = true
		size[i] = 1
		id[i] = i
	}

	dend := &Dendrogram{N: n, Merges: make([]Merge, 0, n-1)}
	for step := 0; step < n-1; step++ {
		// Find the closest active pair.
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if d[i][j] < best {
					best, bi, bj = d[i][j], i, j
				}
			}
		}

		ni, nj := size[bi], size[bj]
		// Merge bj into bi and update distances per Lance-Williams.
		for m := 0; m < n; m++ {
			if !active[m] || m == bi || m == bj {
				continue
			}
			dim, djm := d[bi][m], d[bj][m]
			var upd float64
			switch linkage {
			case Ward:
				nm := size[m]
				t := 1 / (ni + nj + nm)
				upd = math.Sqrt(math.Max(0,
					(ni+nm)*t*dim*dim+(nj+nm)*t*djm*djm-nm*t*best*best))
			case Complete:
				upd = math.Max(dim, djm)
			case Average:
				upd = (ni*dim + nj*djm) / (ni + nj)
			case Single:
				upd = math.Min(dim, djm)
			default:
				return nil, fmt.Errorf("unsupported linkage: %v", linkage)
			}
			d[bi][m] = upd
			d[m][bi] = upd
		}
		active[bj] = false
		size[bi] = ni + nj

		dend.Merges = append(dend.Merges, Merge{
			A:      id[bi],
			B:      id[bj],
			Height: best,
			Size:   int(ni + nj),
		})
		id[bi] = n + step
	}
	return dend, nil
}

// Cut flattens the dendrogram into exactly k clusters by undoing the
// last k-1 merges. Labels are zero-based and assigned in order of first
// occurrence, so the labeling is dense and deterministic.
func (d *Dendrogram) Cut(k int) []int {
	if k < 1 {
		k = 1
	}
	if k > d.N {
		k = d.N
	}
	parent := make([]int, d.N+len(d.Merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for step := 0; step < d.N-k; step++ {
		m := d.Merges[step]
		root := d.N + step
		parent[find(m.A)] = root
		parent[find(m.B)] = root
	}

	labels := make([]int, d.N)
	next := 0
	seen := make(map[int]int, k)
	for i := 0; i < d.N; i++ {
		r := find(i)
		l, ok := seen[r]
		if !ok {
			l = next
			seen[r] = l
			next++
		}
		labels[i] = l
	}
	return labels
}
