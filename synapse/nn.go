package synapse

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/neurokit/assembly/internal/numutil"
	"github.com/neurokit/assembly/model"
)

// NNTable holds, per postsynaptic neuron and assembly, the aggregated
// distance of each assembly synapse to its nearest same-assembly
// neighbour. Entries stay -1 when too few synapses survive the
// same-section filtering.
type NNTable struct {
	PostGids    []model.GID
	AssemblyIDs []int
	Values      [][]float64
}

// AggFunc reduces the per-synapse nearest-neighbour distances of one
// (neuron, assembly) cell to a single value.
type AggFunc func([]float64) float64

// Median is the default aggregation.
func Median(v []float64) float64 { return numutil.Percentile(v, 50) }

// NearestNeighbourDistances computes the aggregated nearest-neighbour
// synapse distance per postsynaptic neuron per assembly. Neurons are
// independent and processed on an errgroup.
func NearestNeighbourDistances(ctx context.Context, table model.SynapseTable, grp model.AssemblyGroup, agg AggFunc, opts ...Option) (*NNTable, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(table.Rows) == 0 {
		return nil, ErrNoSynapses
	}
	if agg == nil {
		agg = Median
	}

	postGids := table.PostGids()
	result := &NNTable{
		PostGids: postGids,
		Values:   make([][]float64, len(postGids)),
	}
	for _, a := range grp.Assemblies {
		result.AssemblyIDs = append(result.AssemblyIDs, a.ID.Index)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, gid := range postGids {
		i, gid := i, gid
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			syns := table.ByPostGid(gid)
			part := partition(syns, grp)
			dists := sectionDistances(syns)

			row := make([]float64, len(grp.Assemblies))
			for j, a := range grp.Assemblies {
				row[j] = -1
				label := fmt.Sprintf("assembly%d", a.ID.Index)
				sub := subMatrix(dists, part.synIdx[label])
				nn := nearestNeighbourMins(sub)
				if len(nn) > o.minNsyns {
					row[j] = agg(nn)
				}
			}
			result.Values[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// nearestNeighbourMins returns, for every column of the sub-distance
// matrix that is not all-NaN, the minimum valid distance in it.
func nearestNeighbourMins(sub [][]float64) []float64 {
	n := len(sub)
	var mins []float64
	for j := 0; j < n; j++ {
		best := math.Inf(1)
		valid := false
		for i := 0; i < n; i++ {
			d := sub[i][j]
			if !math.IsNaN(d) && d < best {
				best = d
				valid = true
			}
		}
		if valid {
			mins = append(mins, best)
		}
	}
	return mins
}
