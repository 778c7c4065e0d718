// Package metric provides the similarity and correlation primitives the
// clustering and detection packages are built on.
//
// All functions operate on dense matrices with observations in rows and
// return newly allocated results; inputs are never modified.
package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CosineSimilarity returns the (rows x rows) cosine similarity matrix
// of X: rows are L2-normalized and multiplied with their transpose.
//
// An all-zero row has no direction; its normalization divides by zero
// and the NaNs propagate into the result instead of raising. Callers
// must pre-filter zero-activity rows.
func CosineSimilarity(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	normed := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		var norm float64
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for j := 0; j < c; j++ {
			normed.Set(i, j, X.At(i, j)/norm)
		}
	}
	sim := mat.NewDense(r, r, nil)
	sim.Mul(normed, normed.T())
	return sim
}

// PairwiseCorrelation returns the (rows x rows) Pearson correlation
// matrix of X, i.e. 1 minus the pairwise correlation distance. Any NaN
// entry (constant rows have zero variance) is replaced with 0.
func PairwiseCorrelation(X mat.Matrix) *mat.Dense {
	r, _ := X.Dims()
	rows := matRows(X)
	corrs := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		corrs.Set(i, i, zeroNaN(stat.Correlation(rows[i], rows[i], nil)))
		for j := i + 1; j < r; j++ {
			c := zeroNaN(stat.Correlation(rows[i], rows[j], nil))
			corrs.Set(i, j, c)
			corrs.Set(j, i, c)
		}
	}
	return corrs
}

// PairwiseCorrelationXY returns the (rows(X) x rows(Y)) Pearson
// correlation matrix between rows of X and rows of Y, NaNs replaced
// with 0 as in PairwiseCorrelation.
func PairwiseCorrelationXY(X, Y mat.Matrix) *mat.Dense {
	rx, _ := X.Dims()
	ry, _ := Y.Dims()
	xRows := matRows(X)
	yRows := matRows(Y)
	corrs := mat.NewDense(rx, ry, nil)
	for i := 0; i < rx; i++ {
		for j := 0; j < ry; j++ {
			corrs.Set(i, j, zeroNaN(stat.Correlation(xRows[i], yRows[j], nil)))
		}
	}
	return corrs
}

// EuclideanDistances returns the (rows x rows) Euclidean distance
// matrix of X with a zero diagonal.
func EuclideanDistances(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	d := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			var sum float64
			for k := 0; k < c; k++ {
				diff := X.At(i, k) - X.At(j, k)
				sum += diff * diff
			}
			v := math.Sqrt(sum)
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
	return d
}

func matRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
