package linalg

import (
	"errors"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrSingular = errors.New("linalg: could not solve linear system")
var ErrDimension = errors.New("linalg: dimension mismatch")

// denseLimit is the largest number of unknowns factored as a dense matrix. Larger systems are
// solved iteratively on the sparse matrix.
var denseLimit = 1500

// SolveLeastSquares minimizes |A*X - B| for every column of B using the normal equations.
func SolveLeastSquares(a *Triplets, b *mat.Dense) (*mat.Dense, error) {
	r, c := a.Dims()
	if br, _ := b.Dims(); br != r || r == 0 || c == 0 {
		return nil, ErrDimension
	}
	if c > denseLimit {
		sp := a.CSR()
		return solveColumns(normal{a: sp, tmp: mat.NewVecDense(r, nil)}, sp.ColumnNorms(), sp.mulTrans(b))
	}
	ad := a.Dense()

	var ata mat.SymDense
	ata.SymOuterK(1, ad.T())
	var atb mat.Dense
	atb.Mul(ad.T(), b)

	var chol mat.Cholesky
	if !chol.Factorize(&ata) {
		return nil, ErrSingular
	}
	var x mat.Dense
	if err := chol.SolveTo(&x, &atb); err != nil && !acceptable(err) {
		return nil, ErrSingular
	}
	if !finite(&x) {
		return nil, ErrSingular
	}
	return &x, nil
}

// SolveSymmetric solves A*X = B for a square symmetric A. Definite matrices of either sign are
// factored with Cholesky, anything else goes through LU.
func SolveSymmetric(a *Triplets, b *mat.Dense) (*mat.Dense, error) {
	r, c := a.Dims()
	if br, _ := b.Dims(); br != r || r != c || r == 0 {
		return nil, ErrDimension
	}
	if r > denseLimit {
		return solveSparse(a.CSR(), b)
	}
	ad := a.Dense()

	if a.IsSymmetric(1e-9) {
		sym := mat.NewSymDense(r, nil)
		neg := mat.NewSymDense(r, nil)
		for i := 0; i < r; i++ {
			for j := i; j < r; j++ {
				v := 0.5 * (ad.At(i, j) + ad.At(j, i))
				sym.SetSym(i, j, v)
				neg.SetSym(i, j, -v)
			}
		}
		var chol mat.Cholesky
		if chol.Factorize(sym) {
			var x mat.Dense
			if err := chol.SolveTo(&x, b); (err == nil || acceptable(err)) && finite(&x) {
				return &x, nil
			}
		} else if chol.Factorize(neg) {
			var x mat.Dense
			if err := chol.SolveTo(&x, b); (err == nil || acceptable(err)) && finite(&x) {
				x.Scale(-1, &x)
				return &x, nil
			}
		}
	}

	var x mat.Dense
	if err := x.Solve(ad, b); err != nil && !acceptable(err) {
		return nil, ErrSingular
	}
	if !finite(&x) {
		return nil, ErrSingular
	}
	return &x, nil
}

// solveSparse uses conjugate gradient on A (or -A for negative diagonals) when A is symmetric and
// on the normal equations otherwise.
func solveSparse(a *CSR, b *mat.Dense) (*mat.Dense, error) {
	diag := a.Diagonal()
	if a.IsSymmetric(1e-9) {
		pos, neg := true, true
		for _, d := range diag {
			pos = pos && d > 0
			neg = neg && d < 0
		}
		if pos {
			return solveColumns(a, diag, b)
		}
		if neg {
			for i := range diag {
				diag[i] = -diag[i]
			}
			var nb mat.Dense
			nb.Scale(-1, b)
			return solveColumns(negated{a}, diag, &nb)
		}
	}
	r, _ := a.Dims()
	return solveColumns(normal{a: a, tmp: mat.NewVecDense(r, nil)}, a.ColumnNorms(), a.mulTrans(b))
}

// acceptable reports whether err is only a conditioning warning.
func acceptable(err error) bool {
	var cond mat.Condition
	if errors.As(err, &cond) {
		if math.IsInf(float64(cond), 0) {
			return false
		}
		log.Printf("linalg: %v", err)
		return true
	}
	return false
}

func finite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
