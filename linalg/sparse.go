// Package linalg assembles sparse systems from triplets and solves them with gonum.
package linalg

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

type Triplet struct {
	Row, Col int
	Value    float64
}

// Triplets collects matrix entries. Entries with the same position are summed.
type Triplets struct {
	rows, cols int
	entries    []Triplet
}

func NewTriplets(rows, cols int) *Triplets {
	return &Triplets{rows: rows, cols: cols}
}

func (t *Triplets) Add(row, col int, v float64) {
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		panic("linalg: triplet index out of range")
	}
	if v == 0 {
		return
	}
	t.entries = append(t.entries, Triplet{Row: row, Col: col, Value: v})
}

func (t *Triplets) Dims() (int, int) {
	return t.rows, t.cols
}

func (t *Triplets) Len() int {
	return len(t.entries)
}

func (t *Triplets) Entries() []Triplet {
	return t.entries
}

// Dense returns the assembled matrix.
func (t *Triplets) Dense() *mat.Dense {
	if t.rows == 0 || t.cols == 0 {
		return nil
	}
	d := mat.NewDense(t.rows, t.cols, nil)
	for _, e := range t.entries {
		d.Set(e.Row, e.Col, d.At(e.Row, e.Col)+e.Value)
	}
	return d
}

// IsSymmetric reports whether the assembled matrix is square and symmetric within tol.
func (t *Triplets) IsSymmetric(tol float64) bool {
	if t.rows != t.cols {
		return false
	}
	return t.CSR().IsSymmetric(tol)
}

// CSR returns the assembled matrix in compressed sparse row form.
func (t *Triplets) CSR() *CSR {
	c := &CSR{rows: t.rows, cols: t.cols, indptr: make([]int, t.rows+1)}
	for _, e := range t.entries {
		c.indptr[e.Row+1]++
	}
	for i := 0; i < t.rows; i++ {
		c.indptr[i+1] += c.indptr[i]
	}
	c.indices = make([]int, len(t.entries))
	c.data = make([]float64, len(t.entries))
	next := append([]int(nil), c.indptr[:t.rows]...)
	for _, e := range t.entries {
		c.indices[next[e.Row]] = e.Col
		c.data[next[e.Row]] = e.Value
		next[e.Row]++
	}

	// sort each row by column and sum duplicates
	n := 0
	start := 0
	for i := 0; i < t.rows; i++ {
		end := c.indptr[i+1]
		row := csrRow{indices: c.indices[start:end], data: c.data[start:end]}
		sort.Sort(row)
		rowStart := n
		for k := start; k < end; k++ {
			if n > rowStart && c.indices[n-1] == c.indices[k] {
				c.data[n-1] += c.data[k]
				continue
			}
			c.indices[n] = c.indices[k]
			c.data[n] = c.data[k]
			n++
		}
		start = end
		c.indptr[i+1] = n
	}
	c.indices = c.indices[:n]
	c.data = c.data[:n]
	return c
}

type csrRow struct {
	indices []int
	data    []float64
}

func (r csrRow) Len() int           { return len(r.indices) }
func (r csrRow) Less(i, j int) bool { return r.indices[i] < r.indices[j] }
func (r csrRow) Swap(i, j int) {
	r.indices[i], r.indices[j] = r.indices[j], r.indices[i]
	r.data[i], r.data[j] = r.data[j], r.data[i]
}

// CSR is a compressed sparse row matrix. It implements mat.Matrix.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

var _ mat.Matrix = (*CSR)(nil)

func (c *CSR) Dims() (int, int) { return c.rows, c.cols }

func (c *CSR) At(i, j int) float64 {
	if i < 0 || i >= c.rows || j < 0 || j >= c.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	cols := c.indices[c.indptr[i]:c.indptr[i+1]]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return c.data[c.indptr[i]+k]
	}
	return 0
}

func (c *CSR) T() mat.Matrix { return mat.Transpose{Matrix: c} }

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return len(c.data) }

// MulVecTo computes dst = A*x, or dst = Aᵀ*x if trans is true.
func (c *CSR) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	if trans {
		dst.Zero()
		for i := 0; i < c.rows; i++ {
			xi := x.AtVec(i)
			if xi == 0 {
				continue
			}
			for k := c.indptr[i]; k < c.indptr[i+1]; k++ {
				j := c.indices[k]
				dst.SetVec(j, dst.AtVec(j)+c.data[k]*xi)
			}
		}
		return
	}
	for i := 0; i < c.rows; i++ {
		var v float64
		for k := c.indptr[i]; k < c.indptr[i+1]; k++ {
			v += c.data[k] * x.AtVec(c.indices[k])
		}
		dst.SetVec(i, v)
	}
}

// mulTrans returns Aᵀ*B.
func (c *CSR) mulTrans(b mat.Matrix) *mat.Dense {
	_, bc := b.Dims()
	x := mat.NewDense(c.cols, bc, nil)
	for i := 0; i < c.rows; i++ {
		for j := 0; j < bc; j++ {
			bij := b.At(i, j)
			if bij == 0 {
				continue
			}
			for k := c.indptr[i]; k < c.indptr[i+1]; k++ {
				col := c.indices[k]
				x.Set(col, j, x.At(col, j)+c.data[k]*bij)
			}
		}
	}
	return x
}

// Diagonal returns the diagonal entries of a square matrix.
func (c *CSR) Diagonal() []float64 {
	d := make([]float64, min(c.rows, c.cols))
	for i := range d {
		d[i] = c.At(i, i)
	}
	return d
}

// ColumnNorms returns the squared norm of each column, the diagonal of AᵀA.
func (c *CSR) ColumnNorms() []float64 {
	d := make([]float64, c.cols)
	for k, j := range c.indices {
		d[j] += c.data[k] * c.data[k]
	}
	return d
}

func (c *CSR) IsSymmetric(tol float64) bool {
	if c.rows != c.cols {
		return false
	}
	for i := 0; i < c.rows; i++ {
		for k := c.indptr[i]; k < c.indptr[i+1]; k++ {
			j := c.indices[k]
			if j <= i {
				continue
			}
			if math.Abs(c.data[k]-c.At(j, i)) > tol {
				return false
			}
		}
	}
	// entries below the diagonal without a partner above it
	for i := 0; i < c.rows; i++ {
		for k := c.indptr[i]; k < c.indptr[i+1]; k++ {
			if j := c.indices[k]; j < i && c.At(j, i) == 0 && math.Abs(c.data[k]) > tol {
				return false
			}
		}
	}
	return true
}
