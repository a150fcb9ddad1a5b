package presolve

import (
	"fmt"
	"math"
)

// dualRowAction records an inequality row turned into an equality because
// its dual is known to be strictly signed at every optimum.
type dualRowAction struct {
	link
	row     int
	toLower bool // rup was lowered onto rlo
	old     float64
}

func (a *dualRowAction) kind() ActionKind { return KindDualRow }

func (a *dualRowAction) String() string {
	return fmt.Sprintf("dual tightening row %d", a.row)
}

func (a *dualRowAction) postsolve(p *postsolveMatrix) {
	i := a.row
	if a.toLower {
		p.rup[i] = a.old
	} else {
		p.rlo[i] = a.old
	}
	if p.rowStat[i] == BasisStatusBasic {
		return
	}
	if a.toLower {
		p.rowStat[i] = BasisStatusLower
	} else {
		p.rowStat[i] = BasisStatusUpper
	}
}

// dualPasses bounds the propagation rounds over the columns.
const dualPasses = 5

// termRange returns the range of a*y for y in [lo, up].
func termRange(a, lo, up float64) (float64, float64) {
	if a > 0 {
		return scaled(a, lo), scaled(a, up)
	}
	return scaled(a, up), scaled(a, lo)
}

// dualBounds derives bounds on the row duals. Each row starts from the sign
// its one-sidedness implies; each column with an infinite bound then
// constrains the sign of its reduced cost, which narrows the duals of its
// rows.
func dualBounds(pm *presolveMatrix) (ylo, yhi []float64) {
	ylo = make([]float64, pm.nrows)
	yhi = make([]float64, pm.nrows)
	for i := 0; i < pm.nrows; i++ {
		loInf, upInf := isInf(pm.rlo[i]), isInf(pm.rup[i])
		switch {
		case pm.rowGone[i] || pm.rowLen(i) == 0 || loInf && upInf:
			ylo[i], yhi[i] = 0, 0
		case loInf:
			ylo[i], yhi[i] = math.Inf(-1), 0
		case upInf:
			ylo[i], yhi[i] = 0, math.Inf(1)
		default:
			ylo[i], yhi[i] = math.Inf(-1), math.Inf(1)
		}
	}

	for pass := 0; pass < dualPasses; pass++ {
		changed := false
		for j := 0; j < pm.ncols; j++ {
			if pm.colGone[j] || pm.colLen(j) == 0 || pm.integer[j] {
				continue
			}
			// d_j >= 0 without an upper bound, d_j <= 0 without a lower one.
			needPos, needNeg := isInf(pm.cup[j]), isInf(pm.clo[j])
			if !needPos && !needNeg {
				continue
			}
			idx, val := pm.cols.entries(j)
			var sum activity
			for k, i := range idx {
				tmin, tmax := termRange(val[k], ylo[i], yhi[i])
				if isInf(tmin) {
					sum.ninfMin++
				} else {
					sum.min += tmin
				}
				if isInf(tmax) {
					sum.ninfMax++
				} else {
					sum.max += tmax
				}
			}
			c := pm.cost[j]
			for k, i := range idx {
				a := val[k]
				tmin, tmax := termRange(a, ylo[i], yhi[i])
				if needPos {
					// a*y_i <= c - sum of the other terms at their minimum
					if others, ok := othersSum(sum.min, sum.ninfMin, tmin); ok {
						changed = narrow(ylo, yhi, i, a, c-others, true) || changed
					}
				}
				if needNeg {
					// a*y_i >= c - sum of the other terms at their maximum
					if others, ok := othersSum(sum.max, sum.ninfMax, tmax); ok {
						changed = narrow(ylo, yhi, i, a, c-others, false) || changed
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return ylo, yhi
}

// othersSum removes one term from a partially infinite sum.
func othersSum(finite float64, ninf int, term float64) (float64, bool) {
	switch {
	case ninf == 0:
		return finite - term, true
	case ninf == 1 && isInf(term):
		return finite, true
	}
	return 0, false
}

// narrow applies a*y_i <= r (atMost) or a*y_i >= r to the bounds of y_i and
// reports whether they moved noticeably.
func narrow(ylo, yhi []float64, i int, a, r float64, atMost bool) bool {
	v := r / a
	upper := atMost == (a > 0)
	if upper {
		if v < yhi[i]-1e-9*(1+math.Abs(v)) {
			yhi[i] = v
			return true
		}
		return false
	}
	if v > ylo[i]+1e-9*(1+math.Abs(v)) {
		ylo[i] = v
		return true
	}
	return false
}

// dualReductions fixes columns whose reduced cost has a known strict sign
// and turns rows whose dual has a known strict sign into equalities. It is
// skipped when anything is prohibited, since the argument needs every
// column and row to take part.
func dualReductions(pm *presolveMatrix) error {
	if pm.anyProhibited {
		return nil
	}
	ylo, yhi := dualBounds(pm)
	tol := pm.cfg.dualTol

	for j := 0; j < pm.ncols; j++ {
		if pm.colGone[j] || pm.colLen(j) == 0 || pm.integer[j] || pm.isFixed(j) {
			continue
		}
		idx, val := pm.cols.entries(j)
		var sum activity
		for k, i := range idx {
			tmin, tmax := termRange(val[k], ylo[i], yhi[i])
			if isInf(tmin) {
				sum.ninfMin++
			} else {
				sum.min += tmin
			}
			if isInf(tmax) {
				sum.ninfMax++
			} else {
				sum.max += tmax
			}
		}
		// d_j = c_j - sum a_ij y_i lies in [c - max, c - min]
		c := pm.cost[j]
		switch {
		case sum.ninfMax == 0 && c-sum.max > tol:
			if isInf(pm.clo[j]) {
				return fmt.Errorf("%w: column %d needs a lower bound", ErrUnboundedOrInfeasible, j)
			}
			makeFixed(pm, j, false)
		case sum.ninfMin == 0 && c-sum.min < -tol:
			if isInf(pm.cup[j]) {
				return fmt.Errorf("%w: column %d needs an upper bound", ErrUnboundedOrInfeasible, j)
			}
			makeFixed(pm, j, true)
		}
	}

	for i := 0; i < pm.nrows; i++ {
		if pm.rowGone[i] || pm.rowLen(i) == 0 || pm.isEquality(i) {
			continue
		}
		switch {
		case ylo[i] > tol && !isInf(pm.rlo[i]):
			pm.push(&dualRowAction{row: i, toLower: true, old: pm.rup[i]})
			pm.rup[i] = pm.rlo[i]
			pm.markRow(i)
		case yhi[i] < -tol && !isInf(pm.rup[i]):
			pm.push(&dualRowAction{row: i, toLower: false, old: pm.rlo[i]})
			pm.rlo[i] = pm.rup[i]
			pm.markRow(i)
		}
	}
	return nil
}
