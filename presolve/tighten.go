package presolve

import (
	"fmt"
	"math"
)

// tightenAction records a zero-cost column with an infinite bound in the
// direction that relaxes all of its rows. The column and those rows were
// removed; postsolve moves the column just far enough to satisfy them.
type tightenAction struct {
	link
	col     int
	up      bool // increasing the column relaxes every row
	rows    []int
	rowCols [][]int
	rowVals [][]float64
}

func (a *tightenAction) kind() ActionKind { return KindTighten }

func (a *tightenAction) String() string {
	return fmt.Sprintf("tighten col %d with %d rows", a.col, len(a.rows))
}

func (a *tightenAction) postsolve(p *postsolveMatrix) {
	j := a.col
	// start from the bound the column would rest at
	x := p.clo[j]
	if !a.up {
		x = p.cup[j]
	}
	binding := -1
	coefs := make([]float64, len(a.rows))
	for r, i := range a.rows {
		others := 0.0
		for k, l := range a.rowCols[r] {
			p.insert(l, i, a.rowVals[r][k])
			if l == j {
				coefs[r] = a.rowVals[r][k]
				continue
			}
			others += a.rowVals[r][k] * p.x[l]
		}
		p.acts[i] = others
		p.y[i] = 0
		p.rowStat[i] = BasisStatusBasic

		aj := coefs[r]
		// The row bound on the side the column pushes against.
		bound := p.rlo[i]
		if (aj > 0) != a.up {
			bound = p.rup[i]
		}
		if isInf(bound) {
			continue
		}
		req := (bound - others) / aj
		if a.up && (isInf(x) || req > x) || !a.up && (isInf(x) || req < x) {
			x, binding = req, r
		}
	}
	if isInf(x) {
		x = math.Max(p.clo[j], math.Min(p.cup[j], 0))
	}
	p.x[j] = x
	for r, i := range a.rows {
		p.acts[i] += coefs[r] * x
	}
	p.d[j] = p.reducedCost(j)
	if binding < 0 {
		p.colStat[j] = statusByValue(x, p.clo[j], p.cup[j], p.cfg.tol)
		return
	}
	p.colStat[j] = BasisStatusBasic
	i := a.rows[binding]
	if (coefs[binding] > 0) == a.up {
		p.rowStat[i] = BasisStatusLower
	} else {
		p.rowStat[i] = BasisStatusUpper
	}
}

// tightenColumns looks for zero-cost columns that can move in one direction
// without hurting any row. Such a column is pinned at its bound in that
// direction, or, when that bound is infinite, removed together with all the
// rows it can always satisfy.
func tightenColumns(pm *presolveMatrix, cols []int) {
	for _, j := range cols {
		if pm.colGone[j] || pm.colLen(j) == 0 || pm.colTouchesProhibited(j) || pm.isFixed(j) {
			continue
		}
		if math.Abs(pm.cost[j]) > zeroTolerance {
			continue
		}
		upOK, downOK := true, true
		idx, val := pm.cols.entries(j)
		for k, i := range idx {
			if val[k] > 0 {
				upOK = upOK && isInf(pm.rup[i])
				downOK = downOK && isInf(pm.rlo[i])
			} else {
				upOK = upOK && isInf(pm.rlo[i])
				downOK = downOK && isInf(pm.rup[i])
			}
		}
		switch {
		case upOK && !isInf(pm.cup[j]):
			makeFixed(pm, j, true)
		case downOK && !isInf(pm.clo[j]):
			makeFixed(pm, j, false)
		case (upOK || downOK) && !pm.integer[j]:
			removeSlackColumn(pm, j, upOK)
		}
	}
}

func removeSlackColumn(pm *presolveMatrix, j int, up bool) {
	rows, _ := pm.colEntries(j)
	for _, i := range rows {
		if pm.rowTouchesProhibited(i) {
			return
		}
	}
	a := &tightenAction{col: j, up: up, rows: rows}
	for _, i := range rows {
		cols, vals := pm.rowEntries(i)
		a.rowCols = append(a.rowCols, cols)
		a.rowVals = append(a.rowVals, vals)
		pm.markRow(i)
		pm.removeRow(i)
		pm.rowGone[i] = true
	}
	pm.colGone[j] = true
	pm.push(a)
	pm.stats.removed(KindTighten, len(rows), 1)
}
