package presolve

import (
	"fmt"
	"math"
)

// rowSingletonAction records a row with a single coefficient that was turned
// into bounds on its column.
type rowSingletonAction struct {
	link
	row, col int
	coef     float64
	rlo, rup float64
	clo, cup float64 // column bounds before tightening
}

func (a *rowSingletonAction) kind() ActionKind { return KindRowSingleton }

func (a *rowSingletonAction) String() string {
	return fmt.Sprintf("row singleton row %d col %d", a.row, a.col)
}

func (a *rowSingletonAction) postsolve(p *postsolveMatrix) {
	i, j, coef := a.row, a.col, a.coef
	tol := p.cfg.tol

	p.insert(j, i, coef)
	p.rlo[i], p.rup[i] = a.rlo, a.rup
	p.clo[j], p.cup[j] = a.clo, a.cup
	p.acts[i] = coef * p.x[j]
	p.y[i] = 0
	p.rowStat[i] = BasisStatusBasic

	st := p.colStat[j]
	if st == BasisStatusBasic || st == BasisStatusFree {
		return
	}
	side := nonbasicSide(st, p.d[j])
	atOriginal := (side == BasisStatusLower && !isInf(a.clo) && p.x[j]-a.clo <= tol) ||
		(side == BasisStatusUpper && !isInf(a.cup) && a.cup-p.x[j] <= tol)
	if atOriginal {
		p.colStat[j] = statusByValue(p.x[j], a.clo, a.cup, tol)
		if p.colStat[j] == BasisStatusFixed {
			return
		}
		p.colStat[j] = side
		return
	}

	// The active bound came from the row: move it back there.
	rowSide := BasisStatusLower
	bound := a.rlo
	if (side == BasisStatusUpper) == (coef > 0) {
		rowSide = BasisStatusUpper
		bound = a.rup
	}
	if isInf(bound) || math.Abs(p.acts[i]-bound) > tol*(1+math.Abs(bound)) {
		// Bound was rounded for integrality and the row is slack.
		p.colStat[j] = BasisStatusBasic
		return
	}
	p.y[i] = p.d[j] / coef
	p.d[j] = 0
	p.colStat[j] = BasisStatusBasic
	p.rowStat[i] = rowSide
}

// rowSingletons converts every scheduled single-entry row into bounds on its
// column. A column that ends up fixed is substituted out at once.
func rowSingletons(pm *presolveMatrix, rows []int) error {
	tol := pm.cfg.tol
	for _, i := range rows {
		if pm.rowGone[i] || pm.rowLen(i) != 1 || pm.rowTouchesProhibited(i) {
			continue
		}
		idx, val := pm.rows.entries(i)
		j, coef := idx[0], val[0]
		if math.Abs(coef) < zeroTolerance {
			continue
		}

		lo, up := scaled(1/coef, pm.rlo[i]), scaled(1/coef, pm.rup[i])
		if coef < 0 {
			lo, up = up, lo
		}
		if pm.integer[j] {
			if !isInf(lo) {
				lo = math.Ceil(lo - tol)
			}
			if !isInf(up) {
				up = math.Floor(up + tol)
			}
		}
		newLo, newUp := math.Max(pm.clo[j], lo), math.Min(pm.cup[j], up)
		if newLo > newUp+tol {
			if pm.cfg.ignoreInfeasible {
				continue
			}
			return fmt.Errorf("%w: row %d forces column %d into [%g, %g]", ErrInfeasible, i, j, newLo, newUp)
		}
		if newUp < newLo {
			newUp = newLo
		}

		a := &rowSingletonAction{
			row: i, col: j, coef: coef,
			rlo: pm.rlo[i], rup: pm.rup[i],
			clo: pm.clo[j], cup: pm.cup[j],
		}
		pm.clo[j], pm.cup[j] = newLo, newUp
		pm.markCol(j)
		pm.removeEntry(i, j)
		pm.rowGone[i] = true
		pm.push(a)
		pm.stats.removed(KindRowSingleton, 1, 0)

		if pm.isFixed(j) && pm.colLen(j) > 0 && !pm.colTouchesProhibited(j) {
			removeFixed(pm, []int{j})
		}
	}
	return nil
}
