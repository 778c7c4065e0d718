package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/neurokit/assembly/internal/cvi"
	"github.com/neurokit/assembly/internal/hcluster"
	"github.com/neurokit/assembly/metric"
	"github.com/neurokit/assembly/model"
)

// HierarchicalResult is the outcome of Ward-linkage clustering of time
// bins, keeping the similarity matrix and dendrogram for downstream
// inspection.
type HierarchicalResult struct {
	Labels      model.Labeling
	NumClusters int
	Similarity  *mat.Dense
	Dendrogram  *hcluster.Dendrogram
}

// ClusterSimMatrix runs hierarchical (Ward linkage) clustering of the
// cosine similarity matrix of time bins. spikes is the neuron x bin
// matrix; bins are clustered, not neurons.
//
// For every candidate count in the configured range the dendrogram is
// cut and scored with the configured criterion; the optimizing count
// wins. Scores are computed over Euclidean distances between rows of
// the bin-distance matrix.
func ClusterSimMatrix(spikes *mat.Dense, opts ...Option) (*HierarchicalResult, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.criterion != Silhouette && o.criterion != DaviesBouldin {
		return nil, fmt.Errorf("%w: %v", ErrUnknownCriterion, o.criterion)
	}

	sim := metric.CosineSimilarity(spikes.T())
	n, _ := sim.Dims()

	// Distance form, clamping floating-point noise below 1e-10 to zero.
	dists := make([][]float64, n)
	for i := 0; i < n; i++ {
		dists[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := 1 - sim.At(i, j)
			if d < 1e-10 {
				d = 0
			}
			dists[i][j] = d
		}
	}

	dend, err := hcluster.Cluster(hcluster.Condense(dists), hcluster.Ward)
	if err != nil {
		return nil, err
	}

	bestK, bestScore := 0, 0.0
	for k := o.minClusters; k <= o.maxClusters; k++ {
		labels := dend.Cut(k)
		var score float64
		switch o.criterion {
		case Silhouette:
			score = cvi.Silhouette(dists, labels)
		case DaviesBouldin:
			score = -cvi.DaviesBouldin(dists, labels)
		}
		o.logger.Debug("scored cluster count", "k", k, "criterion", o.criterion.String(), "score", score)
		if bestK == 0 || score > bestScore {
			bestK, bestScore = k, score
		}
	}

	labels := model.Labeling(dend.Cut(bestK))
	o.logger.Info("hierarchical clustering done", "bins", n, "clusters", bestK)
	return &HierarchicalResult{
		Labels:      labels,
		NumClusters: labels.NumClusters(),
		Similarity:  sim,
		Dendrogram:  dend,
	}, nil
}
