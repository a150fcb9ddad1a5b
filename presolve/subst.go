package presolve

import (
	"fmt"
	"math"
)

// coefChange records one coefficient of a non-pivot row rewritten by a
// substitution. A zero value means the entry is absent.
type coefChange struct {
	row, col      int
	before, after float64
}

// substitutionAction records the elimination of column col through the
// pivot row: x_col = (rhs - sum a_row,l x_l) / pivot was substituted into
// every other row and into the objective, and the pivot row was removed.
type substitutionAction struct {
	link
	of       ActionKind
	row, col int
	pivot    float64
	rhs      float64
	rlo, rup float64 // pivot row bounds

	clo, cup, cost float64 // eliminated column

	rowCols []int // pivot row without col
	rowVals []float64
	costs   []float64 // objective of rowCols before substitution

	others    []int // rows other than the pivot row that contain col
	otherVals []float64
	otherLo   []float64
	otherUp   []float64

	changes []coefChange

	// Set by the doubleton reduction: the surviving column and the bounds
	// it had before they were tightened from the eliminated column.
	keep                         int
	keepLo, keepUp               float64
	lowerFromElim, upperFromElim bool
}

func (a *substitutionAction) kind() ActionKind { return a.of }

func (a *substitutionAction) String() string {
	return fmt.Sprintf("%s eliminates col %d via row %d (%d other rows)",
		a.of, a.col, a.row, len(a.others))
}

func (a *substitutionAction) postsolve(p *postsolveMatrix) {
	i, j := a.row, a.col
	tol := p.cfg.tol

	for k, l := range a.rowCols {
		p.cost[l] = a.costs[k]
	}
	p.cost[j], p.clo[j], p.cup[j] = a.cost, a.clo, a.cup
	p.rlo[i], p.rup[i] = a.rlo, a.rup
	if a.keep >= 0 {
		p.clo[a.keep], p.cup[a.keep] = a.keepLo, a.keepUp
	}

	// Release entries first so the arena never holds both versions.
	for _, c := range a.changes {
		if c.before == 0 {
			p.setCoef(c.col, c.row, 0)
			p.acts[c.row] -= c.after * p.x[c.col]
		}
	}
	for _, c := range a.changes {
		if c.before != 0 {
			p.setCoef(c.col, c.row, c.before)
			p.acts[c.row] += (c.before - c.after) * p.x[c.col]
		}
	}
	for k, r := range a.others {
		p.rlo[r], p.rup[r] = a.otherLo[k], a.otherUp[k]
	}

	sum := 0.0
	for k, l := range a.rowCols {
		p.insert(l, i, a.rowVals[k])
		sum += a.rowVals[k] * p.x[l]
	}
	p.insert(j, i, a.pivot)
	xj := (a.rhs - sum) / a.pivot
	p.x[j] = xj
	for k, r := range a.others {
		p.insert(j, r, a.otherVals[k])
		p.acts[r] += a.otherVals[k] * xj
	}
	p.acts[i] = sum + a.pivot*xj

	// Column j enters the basis; the pivot row leaves it.
	p.y[i] = 0
	p.y[i] = p.reducedCost(j) / a.pivot
	p.d[j] = 0
	p.colStat[j] = BasisStatusBasic
	switch {
	case a.rlo == a.rup:
		p.rowStat[i] = nonbasicSide(BasisStatusFixed, p.y[i])
	case a.rhs == a.rlo:
		p.rowStat[i] = BasisStatusLower
	default:
		p.rowStat[i] = BasisStatusUpper
	}
	for _, l := range a.rowCols {
		p.d[l] = p.reducedCost(l)
	}

	if a.keep < 0 {
		return
	}
	x := a.keep
	st := p.colStat[x]
	if st == BasisStatusBasic || st == BasisStatusFree {
		return
	}
	side := nonbasicSide(st, p.d[x])
	fromElim := (side == BasisStatusLower && a.lowerFromElim && (isInf(a.keepLo) || p.x[x]-a.keepLo > tol)) ||
		(side == BasisStatusUpper && a.upperFromElim && (isInf(a.keepUp) || a.keepUp-p.x[x] > tol))
	if !fromElim {
		if s := statusByValue(p.x[x], a.keepLo, a.keepUp, tol); s != BasisStatusFree {
			p.colStat[x] = s
		}
		return
	}
	// x sits at a bound implied by the eliminated column, so that column is
	// the one actually at a bound: swap their roles.
	p.y[i] = 0
	p.y[i] = p.reducedCost(x) / a.rowVals[indexOf(a.rowCols, x)]
	p.d[x] = 0
	p.colStat[x] = BasisStatusBasic
	p.d[j] = p.reducedCost(j)
	p.colStat[j] = nonbasicSide(statusByValue(p.x[j], a.clo, a.cup, tol), p.d[j])
	if p.colStat[j] == BasisStatusFree {
		p.colStat[j] = BasisStatusBasic
	}
	if a.rlo == a.rup {
		p.rowStat[i] = nonbasicSide(BasisStatusFixed, p.y[i])
	}
}

func indexOf(v []int, x int) int {
	for k, e := range v {
		if e == x {
			return k
		}
	}
	return -1
}

// substitutionFill returns the number of entries created by eliminating
// column j through row i and the net change in the number of nonzeros,
// ignoring cancellation.
func substitutionFill(pm *presolveMatrix, i, j int) (created, net int) {
	rowCols, _ := pm.rows.entries(i)
	colRows, _ := pm.cols.entries(j)
	for _, k := range colRows {
		if k == i {
			continue
		}
		for _, l := range rowCols {
			if l == j {
				continue
			}
			if _, ok := pm.coef(k, l); !ok {
				created++
			}
		}
	}
	net = created - len(rowCols) - (len(colRows) - 1)
	return created, net
}

// eliminate substitutes column j out of the problem using row i as an
// equality with right-hand side rhs. Row i and column j are left empty and
// marked consumed.
func eliminate(pm *presolveMatrix, of ActionKind, i, j int, rhs float64) (*substitutionAction, error) {
	pivot, ok := pm.coef(i, j)
	if !ok || pivot == 0 {
		inconsistent("eliminate", "pivot a(%d,%d) missing", i, j)
	}
	created, _ := substitutionFill(pm, i, j)
	if err := pm.reserve(created); err != nil {
		return nil, err
	}

	a := &substitutionAction{
		of: of, row: i, col: j, pivot: pivot, rhs: rhs,
		rlo: pm.rlo[i], rup: pm.rup[i],
		clo: pm.clo[j], cup: pm.cup[j], cost: pm.cost[j],
		keep: -1,
	}
	idx, val := pm.rows.entries(i)
	for k, l := range idx {
		if l != j {
			a.rowCols = append(a.rowCols, l)
			a.rowVals = append(a.rowVals, val[k])
		}
	}
	idx, val = pm.cols.entries(j)
	for k, r := range idx {
		if r != i {
			a.others = append(a.others, r)
			a.otherVals = append(a.otherVals, val[k])
			a.otherLo = append(a.otherLo, pm.rlo[r])
			a.otherUp = append(a.otherUp, pm.rup[r])
		}
	}

	cj := pm.cost[j]
	a.costs = make([]float64, len(a.rowCols))
	for k, l := range a.rowCols {
		a.costs[k] = pm.cost[l]
		if cj != 0 {
			pm.cost[l] -= cj * a.rowVals[k] / pivot
		}
	}
	if cj != 0 {
		pm.offset += cj * rhs / pivot
	}

	pm.markRow(i)
	pm.markCol(j)
	pm.removeRow(i)
	pm.removeColumn(j)

	for k, r := range a.others {
		f := a.otherVals[k] / pivot
		pm.rlo[r] = shift(pm.rlo[r], -f*rhs)
		pm.rup[r] = shift(pm.rup[r], -f*rhs)
		for m, l := range a.rowCols {
			before, _ := pm.coef(r, l)
			after := before - f*a.rowVals[m]
			if math.Abs(after) < zeroTolerance {
				after = 0
			}
			a.changes = append(a.changes, coefChange{row: r, col: l, before: before, after: after})
			switch {
			case after == 0 && before != 0:
				pm.removeEntry(r, l)
			case after != 0:
				if err := pm.setEntry(r, l, after); err != nil {
					inconsistent("eliminate", "reserved space exhausted: %v", err)
				}
			}
		}
		pm.markRow(r)
	}

	pm.rowGone[i] = true
	pm.colGone[j] = true
	return a, nil
}
