package linalg

import (
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// operator is a square linear map given by its product with a vector.
type operator interface {
	MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector)
}

// negated is -A.
type negated struct{ a operator }

func (n negated) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	n.a.MulVecTo(dst, trans, x)
	dst.ScaleVec(-1, dst)
}

// normal is AᵀA for a rectangular A.
type normal struct {
	a   *CSR
	tmp *mat.VecDense
}

func (n normal) MulVecTo(dst *mat.VecDense, _ bool, x mat.Vector) {
	n.a.MulVecTo(n.tmp, false, x)
	n.a.MulVecTo(dst, true, n.tmp)
}

const (
	cgTolerance     = 1e-10
	cgMinIterations = 1000
)

// conjugateGradient solves A*x = b for a symmetric positive definite A with a Jacobi
// preconditioner. x holds the initial guess and receives the solution.
func conjugateGradient(a operator, diag []float64, b, x *mat.VecDense) error {
	n := b.Len()
	bnorm := mat.Norm(b, 2)
	if bnorm == 0 {
		x.Zero()
		return nil
	}

	inv := mat.NewVecDense(n, nil)
	for i, d := range diag {
		if d > 0 {
			inv.SetVec(i, 1/d)
		} else {
			inv.SetVec(i, 1)
		}
	}

	r := mat.NewVecDense(n, nil)
	a.MulVecTo(r, false, x)
	r.SubVec(b, r)
	z := mat.NewVecDense(n, nil)
	z.MulElemVec(inv, r)
	p := mat.VecDenseCopyOf(z)
	ap := mat.NewVecDense(n, nil)
	rz := mat.Dot(r, z)

	maxIter := max(cgMinIterations, 4*n)
	for it := 0; it < maxIter; it++ {
		if mat.Norm(r, 2) <= cgTolerance*bnorm {
			return nil
		}
		a.MulVecTo(ap, false, p)
		pap := mat.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			log.Println("linalg: matrix is not positive definite")
			return ErrSingular
		}
		alpha := rz / pap
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, ap)

		z.MulElemVec(inv, r)
		rzNew := mat.Dot(r, z)
		p.AddScaledVec(z, rzNew/rz, p)
		rz = rzNew
	}
	if mat.Norm(r, 2) <= cgTolerance*bnorm {
		return nil
	}
	log.Printf("linalg: conjugate gradient did not converge in %d iterations", maxIter)
	return ErrSingular
}

// solveColumns runs conjugateGradient for every column of b.
func solveColumns(a operator, diag []float64, b mat.Matrix) (*mat.Dense, error) {
	n, c := b.Dims()
	x := mat.NewDense(n, c, nil)
	col := mat.NewVecDense(n, nil)
	sol := mat.NewVecDense(n, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < n; i++ {
			col.SetVec(i, b.At(i, j))
		}
		sol.Zero()
		if err := conjugateGradient(a, diag, col, sol); err != nil {
			return nil, err
		}
		x.SetCol(j, sol.RawVector().Data)
	}
	return x, nil
}
