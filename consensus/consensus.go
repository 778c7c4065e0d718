// Package consensus clusters assemblies detected across simulation
// seeds into consensus assemblies.
//
// Assemblies are represented as boolean gid-membership rows and grouped
// by hierarchical clustering under a seed-separation constraint: two
// assemblies from the same seed describe different activity states by
// construction and must never share a consensus cluster.
package consensus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/neurokit/assembly/internal/cvi"
	"github.com/neurokit/assembly/internal/hcluster"
	"github.com/neurokit/assembly/model"
)

var (
	// ErrUnknownMetric is returned for an unrecognized membership distance metric.
	ErrUnknownMetric = errors.New("unknown distance metric")
	// ErrUnknownSelection is returned for an unrecognized count-selection strategy.
	ErrUnknownSelection = errors.New("unknown cluster-count selection")
)

// ErrNoValidClusterCount indicates that no cluster count in the
// attempted range satisfies the seed-separation constraint.
type ErrNoValidClusterCount struct {
	Min, Max int
}

func (e *ErrNoValidClusterCount) Error() string {
	return fmt.Sprintf("no cluster count in [%d, %d] fulfills the seed-separation criteria", e.Min, e.Max)
}

// Metric selects the distance between assembly membership rows.
type Metric int

const (
	// Hamming is the fraction of gids on which two assemblies disagree.
	Hamming Metric = iota
	// Jaccard is the fraction of disagreeing gids among gids present in
	// either assembly.
	Jaccard
)

func (m Metric) String() string {
	switch m {
	case Hamming:
		return "hamming"
	case Jaccard:
		return "jaccard"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Selection picks the consensus cluster count among the candidates that
// satisfy seed separation.
type Selection int

const (
	// FirstValid takes the smallest valid count without any scoring.
	FirstValid Selection = iota
	// BestSilhouette takes the valid count with the highest silhouette.
	BestSilhouette
	// BestDaviesBouldin takes the valid count with the lowest index.
	BestDaviesBouldin
)

func (s Selection) String() string {
	switch s {
	case FirstValid:
		return "min"
	case BestSilhouette:
		return "silhouette"
	case BestDaviesBouldin:
		return "davies_bouldin"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// MaxClusters caps the consensus cluster-count search.
const MaxClusters = 20

type options struct {
	metric          Metric
	linkage         hcluster.Linkage
	selection       Selection
	inflateSameSeed bool
	logger          *slog.Logger
}

// Option configures consensus clustering.
type Option func(*options)

// WithMetric selects the membership-row distance metric.
func WithMetric(m Metric) Option {
	return func(o *options) { o.metric = m }
}

// WithLinkage selects the hierarchical linkage method.
func WithLinkage(l hcluster.Linkage) Option {
	return func(o *options) { o.linkage = l }
}

// WithSelection selects the cluster-count strategy.
func WithSelection(s Selection) Option {
	return func(o *options) { o.selection = s }
}

// WithSameSeedInflation inflates all same-seed block-diagonal distances
// to five times the global maximum before linkage, discouraging
// same-seed assemblies from merging early.
func WithSameSeedInflation(enabled bool) Option {
	return func(o *options) { o.inflateSameSeed = enabled }
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
		metric:    Hamming,
		linkage:   hcluster.Ward,
		selection: FirstValid,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// ClusterMembership clusters assembly membership rows under the
// seed-separation constraint and returns one zero-based consensus label
// per assembly. nPerSeed gives the number of consecutive rows
// contributed by each seed, in row order.
func ClusterMembership(membership [][]bool, nPerSeed []int, opts ...Option) (model.Labeling, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.metric != Hamming && o.metric != Jaccard {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, o.metric)
	}
	if o.selection != FirstValid && o.selection != BestSilhouette && o.selection != BestDaviesBouldin {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSelection, o.selection)
	}

	n := len(membership)
	dists := distanceMatrix(membership, o.metric)
	bounds := cumulative(nPerSeed)

	if o.inflateSameSeed {
		inflateBlockDiagonals(dists, bounds)
	}

	minK := 0
	for _, c := range nPerSeed {
		if c > minK {
			minK = c
		}
	}
	maxK := n
	if maxK > MaxClusters {
		maxK = MaxClusters
	}

	dend, err := hcluster.Cluster(hcluster.Condense(dists), o.linkage)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		k      int
		labels []int
		score  float64
	}
	var valid []candidate
	for k := minK; k <= maxK; k++ {
		labels := dend.Cut(k)
		if !seedSeparated(labels, bounds) {
			continue
		}
		c := candidate{k: k, labels: labels}
		switch o.selection {
		case BestSilhouette:
			c.score = cvi.Silhouette(dists, labels)
		case BestDaviesBouldin:
			c.score = -cvi.DaviesBouldin(dists, labels)
		}
		valid = append(valid, c)
		if o.selection == FirstValid {
			break
		}
	}
	if len(valid) == 0 {
		return nil, &ErrNoValidClusterCount{Min: minK, Max: maxK}
	}

	best := valid[0]
	for _, c := range valid[1:] {
		if c.score > best.score {
			best = c
		}
	}
	o.logger.Info("consensus clustering done",
		"assemblies", n, "clusters", best.k, "selection", o.selection.String())
	return model.Labeling(best.labels), nil
}

// Build runs consensus clustering over per-seed assembly groups and
// materializes one ConsensusAssembly per label: the union of its
// constituents' gids with full provenance.
func Build(groups []model.AssemblyGroup, opts ...Option) ([]model.ConsensusAssembly, model.Labeling, error) {
	universe := model.GidUniverse(groups)
	var membership [][]bool
	var nPerSeed []int
	var flat []model.Assembly
	for _, g := range groups {
		membership = append(membership, g.MembershipMatrix(universe)...)
		nPerSeed = append(nPerSeed, len(g.Assemblies))
		flat = append(flat, g.Assemblies...)
	}

	labels, err := ClusterMembership(membership, nPerSeed, opts...)
	if err != nil {
		return nil, nil, err
	}

	result := make([]model.ConsensusAssembly, labels.NumClusters())
	for i := range result {
		result[i] = model.ConsensusAssembly{Label: i, Gids: roaring.New()}
	}
	for i, l := range labels {
		result[l].Gids.Or(flat[i].Gids)
		result[l].Constituents = append(result[l].Constituents, flat[i])
	}
	return result, labels, nil
}

func distanceMatrix(membership [][]bool, m Metric) [][]float64 {
	n := len(membership)
	dists := make([][]float64, n)
	for i := range dists {
		dists[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := rowDistance(membership[i], membership[j], m)
			dists[i][j] = d
			dists[j][i] = d
		}
	}
	return dists
}

func rowDistance(a, b []bool, m Metric) float64 {
	diff, either := 0, 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
		if a[i] || b[i] {
			either++
		}
	}
	switch m {
	case Jaccard:
		if either == 0 {
			return 0
		}
		return float64(diff) / float64(either)
	default:
		return float64(diff) / float64(len(a))
	}
}

// inflateBlockDiagonals overwrites every same-seed block with five
// times the global maximum distance, keeping the diagonal at zero.
func inflateBlockDiagonals(dists [][]float64, bounds []int) {
	maxDist := 0.0
	for i := range dists {
		for j := range dists[i] {
			if dists[i][j] > maxDist {
				maxDist = dists[i][j]
			}
		}
	}
	inf := maxDist * 5
	for b := 0; b+1 < len(bounds); b++ {
		lo, hi := bounds[b], bounds[b+1]
		for i := lo; i < hi; i++ {
			for j := lo; j < hi; j++ {
				if i == j {
					continue
				}
				dists[i][j] = inf
			}
		}
	}
}

// seedSeparated reports whether no seed block contains a repeated
// consensus label.
func seedSeparated(labels []int, bounds []int) bool {
	for b := 0; b+1 < len(bounds); b++ {
		seen := make(map[int]struct{})
		for i := bounds[b]; i < bounds[b+1]; i++ {
			if _, dup := seen[labels[i]]; dup {
				return false
			}
			seen[labels[i]] = struct{}{}
		}
	}
	return true
}

func cumulative(counts []int) []int {
	bounds := make([]int, len(counts)+1)
	for i, c := range counts {
		bounds[i+1] = bounds[i] + c
	}
	return bounds
}
