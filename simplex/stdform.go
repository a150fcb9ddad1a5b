package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// How an original column maps onto standard-form variables.
const (
	colConst = iota // no variable, value known
	colLower        // x = lo + v
	colUpper        // x = up - v
	colFree         // x = v - w
)

// stdForm is a model rewritten as min c·z subject to A z = b, z >= 0.
type stdForm struct {
	m, n int
	c    []float64
	a    *mat.Dense
	b    []float64
	z    []float64 // solution
	y    []float64 // duals of the standard-form rows

	kind  []int
	v, w  []int
	shift []float64 // lo, up or the constant value, by kind
	rowOf []int     // standard-form row of each original row, -1 if dropped
}

func newStdForm(s *Solver, cost []float64) (*stdForm, error) {
	tol := s.Tolerance
	numCol, numRow := s.numCol, s.numRow
	freeRow := make([]bool, numRow)
	for i := range freeRow {
		freeRow[i] = math.IsInf(s.rowLower[i], -1) && math.IsInf(s.rowUpper[i], 1)
	}

	sf := &stdForm{
		kind:  make([]int, numCol),
		v:     make([]int, numCol),
		w:     make([]int, numCol),
		shift: make([]float64, numCol),
		rowOf: make([]int, numRow),
	}
	var boxed []int
	for j := 0; j < numCol; j++ {
		lo, up := s.colLower[j], s.colUpper[j]
		if lo > up+tol {
			return nil, lp.ErrInfeasible
		}
		empty := true
		for p := s.aStart[j]; p < s.aStart[j+1]; p++ {
			if s.aValue[p] != 0 && !freeRow[s.aIndex[p]] {
				empty = false
				break
			}
		}
		switch {
		case up-lo <= tol:
			sf.kind[j], sf.shift[j] = colConst, lo
		case empty:
			val, err := emptyValue(cost[j], lo, up, tol)
			if err != nil {
				return nil, err
			}
			sf.kind[j], sf.shift[j] = colConst, val
		case !math.IsInf(lo, 0):
			sf.kind[j], sf.shift[j], sf.v[j] = colLower, lo, sf.n
			sf.n++
			if !math.IsInf(up, 0) {
				boxed = append(boxed, j)
			}
		case !math.IsInf(up, 0):
			sf.kind[j], sf.shift[j], sf.v[j] = colUpper, up, sf.n
			sf.n++
		default:
			sf.kind[j], sf.v[j], sf.w[j] = colFree, sf.n, sf.n+1
			sf.n += 2
		}
	}

	// Rows: constant part of each activity and whether any variable enters.
	constAct := make([]float64, numRow)
	live := make([]bool, numRow)
	for j := 0; j < numCol; j++ {
		for p := s.aStart[j]; p < s.aStart[j+1]; p++ {
			i, a := s.aIndex[p], s.aValue[p]
			if a == 0 {
				continue
			}
			constAct[i] += a * sf.shift[j]
			if sf.kind[j] != colConst {
				live[i] = true
			}
		}
	}
	var ranged []int
	slack := make([]int, numRow)
	for i := 0; i < numRow; i++ {
		sf.rowOf[i] = -1
		slack[i] = -1
		lo, up := s.rowLower[i], s.rowUpper[i]
		if lo > up+tol {
			return nil, lp.ErrInfeasible
		}
		if freeRow[i] {
			continue
		}
		if !live[i] {
			if constAct[i] < lo-tol*(1+math.Abs(lo)) || constAct[i] > up+tol*(1+math.Abs(up)) {
				return nil, lp.ErrInfeasible
			}
			continue
		}
		sf.rowOf[i] = sf.m
		sf.m++
		if up-lo > tol {
			slack[i] = sf.n
			sf.n++
			if !math.IsInf(lo, 0) && !math.IsInf(up, 0) {
				ranged = append(ranged, i)
			}
		}
	}
	// One extra row and slack per boxed column and per ranged row.
	boundRow := sf.m
	sf.m += len(boxed) + len(ranged)
	boundSlack := sf.n
	sf.n += len(boxed) + len(ranged)

	sf.c = make([]float64, sf.n)
	sf.b = make([]float64, sf.m)
	if sf.m > 0 && sf.n > 0 {
		sf.a = mat.NewDense(sf.m, sf.n, nil)
	}
	for j := 0; j < numCol; j++ {
		switch sf.kind[j] {
		case colLower:
			sf.c[sf.v[j]] = cost[j]
		case colUpper:
			sf.c[sf.v[j]] = -cost[j]
		case colFree:
			sf.c[sf.v[j]] = cost[j]
			sf.c[sf.w[j]] = -cost[j]
		}
		for p := s.aStart[j]; p < s.aStart[j+1]; p++ {
			r, a := sf.rowOf[s.aIndex[p]], s.aValue[p]
			if r < 0 || a == 0 {
				continue
			}
			switch sf.kind[j] {
			case colLower:
				sf.a.Set(r, sf.v[j], a)
			case colUpper:
				sf.a.Set(r, sf.v[j], -a)
			case colFree:
				sf.a.Set(r, sf.v[j], a)
				sf.a.Set(r, sf.w[j], -a)
			}
		}
	}
	for i := 0; i < numRow; i++ {
		r := sf.rowOf[i]
		if r < 0 {
			continue
		}
		lo, up := s.rowLower[i], s.rowUpper[i]
		switch {
		case slack[i] < 0:
			sf.b[r] = lo - constAct[i]
		case !math.IsInf(lo, 0):
			// A x - s = lo
			sf.b[r] = lo - constAct[i]
			sf.a.Set(r, slack[i], -1)
		default:
			// A x + s = up
			sf.b[r] = up - constAct[i]
			sf.a.Set(r, slack[i], 1)
		}
	}
	for k, j := range boxed {
		r, t := boundRow+k, boundSlack+k
		sf.a.Set(r, sf.v[j], 1)
		sf.a.Set(r, t, 1)
		sf.b[r] = s.colUpper[j] - s.colLower[j]
	}
	for k, i := range ranged {
		r, t := boundRow+len(boxed)+k, boundSlack+len(boxed)+k
		sf.a.Set(r, slack[i], 1)
		sf.a.Set(r, t, 1)
		sf.b[r] = s.rowUpper[i] - s.rowLower[i]
	}
	return sf, nil
}

// emptyValue is the optimal value of a column that meets no constraint.
func emptyValue(cost, lo, up, tol float64) (float64, error) {
	switch {
	case cost > tol:
		if math.IsInf(lo, -1) {
			return 0, lp.ErrUnbounded
		}
		return lo, nil
	case cost < -tol:
		if math.IsInf(up, 1) {
			return 0, lp.ErrUnbounded
		}
		return up, nil
	}
	return math.Max(lo, math.Min(up, 0)), nil
}

// solve runs the simplex method and recovers the row duals.
func (sf *stdForm) solve(tol float64) error {
	if sf.m == 0 {
		sf.z = make([]float64, sf.n)
		for _, c := range sf.c {
			if c < -tol {
				return lp.ErrUnbounded
			}
		}
		return nil
	}
	if sf.m > sf.n {
		return lp.ErrSingular
	}
	_, z, err := lp.Simplex(sf.c, sf.a, sf.b, tol, nil)
	if err != nil {
		return err
	}
	sf.z = z
	sf.y, err = sf.duals(tol)
	return err
}

// duals solves B^T y = c_B over the positive variables and checks the
// result for dual feasibility. Degenerate vertices can make that y
// infeasible; the dual program is solved instead in that case.
func (sf *stdForm) duals(tol float64) ([]float64, error) {
	var basis []int
	for k, v := range sf.z {
		if v > tol {
			basis = append(basis, k)
		}
	}
	if len(basis) > 0 {
		bt := mat.NewDense(len(basis), sf.m, nil)
		cb := make([]float64, len(basis))
		for r, k := range basis {
			for i := 0; i < sf.m; i++ {
				bt.Set(r, i, sf.a.At(i, k))
			}
			cb[r] = sf.c[k]
		}
		var yv mat.VecDense
		if err := yv.SolveVec(bt, mat.NewVecDense(len(cb), cb)); err == nil {
			y := make([]float64, sf.m)
			for i := range y {
				y[i] = yv.AtVec(i)
			}
			if sf.dualFeasible(y, tol) {
				return y, nil
			}
		}
	}
	return sf.dualProgram(tol)
}

func (sf *stdForm) dualFeasible(y []float64, tol float64) bool {
	col := make([]float64, sf.m)
	for k := 0; k < sf.n; k++ {
		mat.Col(col, k, sf.a)
		if sf.c[k]-floats.Dot(col, y) < -1e3*tol*(1+math.Abs(sf.c[k])) {
			return false
		}
	}
	return true
}

// dualProgram solves max b·y subject to A^T y <= c as
// min -b·(p - q) subject to A^T p - A^T q + s = c with p, q, s >= 0.
func (sf *stdForm) dualProgram(tol float64) ([]float64, error) {
	m, n := sf.m, sf.n
	c := make([]float64, 2*m+n)
	a := mat.NewDense(n, 2*m+n, nil)
	for i := 0; i < m; i++ {
		c[i], c[m+i] = -sf.b[i], sf.b[i]
	}
	for k := 0; k < n; k++ {
		for i := 0; i < m; i++ {
			v := sf.a.At(i, k)
			a.Set(k, i, v)
			a.Set(k, m+i, -v)
		}
		a.Set(k, 2*m+k, 1)
	}
	_, z, err := lp.Simplex(c, a, sf.c, tol, nil)
	if err != nil {
		return nil, err
	}
	y := make([]float64, m)
	for i := range y {
		y[i] = z[i] - z[m+i]
	}
	return y, nil
}

// primal maps the standard-form solution back onto the original columns.
func (sf *stdForm) primal() []float64 {
	x := make([]float64, len(sf.kind))
	for j, k := range sf.kind {
		switch k {
		case colConst:
			x[j] = sf.shift[j]
		case colLower:
			x[j] = sf.shift[j] + sf.z[sf.v[j]]
		case colUpper:
			x[j] = sf.shift[j] - sf.z[sf.v[j]]
		case colFree:
			x[j] = sf.z[sf.v[j]] - sf.z[sf.w[j]]
		}
	}
	return x
}

// rowDuals maps the standard-form duals back onto the original rows.
func (sf *stdForm) rowDuals(numRow int) []float64 {
	y := make([]float64, numRow)
	for i, r := range sf.rowOf {
		if r >= 0 {
			y[i] = sf.y[r]
		}
	}
	return y
}
