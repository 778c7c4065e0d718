package cluster

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrPCAFailed is returned when the principal-component decomposition
// of the spike matrix does not converge.
var ErrPCAFailed = errors.New("principal component decomposition failed")

// pcaProject centers the columns of X and projects the rows onto the
// first ncomp principal components. Fewer components are used when the
// data does not support ncomp.
func pcaProject(X *mat.Dense, ncomp int) (*mat.Dense, error) {
	r, c := X.Dims()

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return nil, ErrPCAFailed
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, nv := vecs.Dims()
	if ncomp > nv {
		ncomp = nv
	}

	centered := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		var mean float64
		for i := 0; i < r; i++ {
			mean += X.At(i, j)
		}
		mean /= float64(r)
		for i := 0; i < r; i++ {
			centered.Set(i, j, X.At(i, j)-mean)
		}
	}

	proj := mat.NewDense(r, ncomp, nil)
	proj.Mul(centered, vecs.Slice(0, c, 0, ncomp))
	return proj, nil
}
