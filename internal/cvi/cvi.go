// Package cvi implements the cluster validity indices used for
// automatic model-order selection: mean silhouette coefficient and the
// Davies-Bouldin index.
//
// Both operate on a feature matrix (one row per item) with Euclidean
// geometry. The callers deliberately pass precomputed distance-matrix
// rows as features, which reproduces the reference scoring behaviour.
package cvi

import (
	"math"
)

// Silhouette returns the mean silhouette coefficient of the labeling
// over the feature rows. Items in singleton clusters contribute 0.
func Silhouette(features [][]float64, labels []int) float64 {
	n := len(features)
	k := numClusters(labels)
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	var total float64
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := range sums {
			sums[c] = 0
		}
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			sums[labels[j]] += euclidean(features[i], features[j])
		}
		li := labels[i]
		if counts[li] <= 1 {
			continue // silhouette of a singleton is defined as 0
		}
		a := sums[li] / float64(counts[li]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == li || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// DaviesBouldin returns the Davies-Bouldin index of the labeling over
// the feature rows: the mean over clusters of the worst ratio of
// within-cluster scatter to between-centroid separation. Lower is
// better.
func DaviesBouldin(features [][]float64, labels []int) float64 {
	n := len(features)
	if n == 0 {
		return 0
	}
	k := numClusters(labels)
	dim := len(features[0])

	centroids := make([][]float64, k)
	counts := make([]int, k)
	for c := range centroids {
		centroids[c] = make([]float64, dim)
	}
	for i, l := range labels {
		counts[l]++
		for d := 0; d < dim; d++ {
			centroids[l][d] += features[i][d]
		}
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		for d := 0; d < dim; d++ {
			centroids[c][d] /= float64(counts[c])
		}
	}

	scatter := make([]float64, k)
	for i, l := range labels {
		scatter[l] += euclidean(features[i], centroids[l])
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			scatter[c] /= float64(counts[c])
		}
	}

	var total float64
	for i := 0; i < k; i++ {
		worst := 0.0
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			sep := euclidean(centroids[i], centroids[j])
			if sep == 0 {
				continue
			}
			if r := (scatter[i] + scatter[j]) / sep; r > worst {
				worst = r
			}
		}
		total += worst
	}
	return total / float64(k)
}

func numClusters(labels []int) int {
	k := 0
	for _, l := range labels {
		if l+1 > k {
			k = l + 1
		}
	}
	return k
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
