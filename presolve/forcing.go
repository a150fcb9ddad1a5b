package presolve

import (
	"fmt"
	"sort"
)

// uselessAction records a row that no point of the column box can violate.
type uselessAction struct {
	link
	row  int
	cols []int
	vals []float64
}

func (a *uselessAction) kind() ActionKind { return KindUseless }

func (a *uselessAction) String() string {
	return fmt.Sprintf("useless row %d", a.row)
}

func (a *uselessAction) postsolve(p *postsolveMatrix) {
	i := a.row
	act := 0.0
	for k, j := range a.cols {
		p.insert(j, i, a.vals[k])
		act += a.vals[k] * p.x[j]
	}
	p.acts[i] = act
	p.y[i] = 0
	p.rowStat[i] = BasisStatusBasic
}

// forcingAction records a row whose activity range touches one of its
// bounds, which pins every column at the bound that attains it. The
// removeFixedActions that substitute the pinned columns follow it on the
// chain.
type forcingAction struct {
	link
	row      int
	atMax    bool // activity forced to its maximum, at the row's lower bound
	cols     []int
	vals     []float64
	clo, cup []float64
}

func (a *forcingAction) kind() ActionKind { return KindForcing }

func (a *forcingAction) String() string {
	return fmt.Sprintf("forcing row %d (%d cols)", a.row, len(a.cols))
}

func (a *forcingAction) postsolve(p *postsolveMatrix) {
	i := a.row
	for k, j := range a.cols {
		p.clo[j], p.cup[j] = a.clo[k], a.cup[k]
		switch {
		case a.clo[k] == a.cup[k]:
			p.colStat[j] = BasisStatusFixed
		case (a.vals[k] > 0) == a.atMax:
			p.colStat[j] = BasisStatusUpper
		default:
			p.colStat[j] = BasisStatusLower
		}
	}

	// Pick the row dual that makes every released column dual feasible. The
	// column that sets it becomes basic; ties go to the lowest index.
	best, piv := 0.0, -1
	for k, j := range a.cols {
		if p.colStat[j] == BasisStatusFixed {
			continue
		}
		r := p.d[j] / a.vals[k]
		if !a.atMax {
			r = -r
		}
		if r > best {
			best, piv = r, k
		}
	}
	if piv < 0 || best <= p.cfg.dualTol {
		return
	}
	y := best
	if !a.atMax {
		y = -best
	}
	p.y[i] = y
	if a.atMax {
		p.rowStat[i] = BasisStatusLower
	} else {
		p.rowStat[i] = BasisStatusUpper
	}
	for k, j := range a.cols {
		p.d[j] -= a.vals[k] * y
	}
	p.d[a.cols[piv]] = 0
	p.colStat[a.cols[piv]] = BasisStatusBasic
}

// forcingRows classifies every scheduled row by its activity range: rows
// that cannot be satisfied prove infeasibility, rows that cannot be violated
// are dropped, and rows whose range touches a bound force their columns.
func forcingRows(pm *presolveMatrix, rows []int) error {
	tol := pm.cfg.tol
	for _, i := range rows {
		if pm.rowGone[i] || pm.rowLen(i) == 0 || pm.rowTouchesProhibited(i) {
			continue
		}
		act := pm.rowActivity(i)
		lo, hi := act.lo(), act.hi()
		rlo, rup := pm.rlo[i], pm.rup[i]

		switch {
		case lo > rup+tol || hi < rlo-tol:
			if pm.cfg.ignoreInfeasible {
				continue
			}
			return fmt.Errorf("%w: row %d activity range [%g, %g] misses [%g, %g]", ErrInfeasible, i, lo, hi, rlo, rup)

		case lo >= rlo-tol && hi <= rup+tol:
			cols, vals := pm.rowEntries(i)
			pm.markRow(i)
			pm.removeRow(i)
			pm.rowGone[i] = true
			pm.push(&uselessAction{row: i, cols: cols, vals: vals})
			pm.stats.removed(KindUseless, 1, 0)

		case !isInf(rlo) && !isInf(hi) && hi <= rlo+tol:
			if forcible(pm, i) {
				forceRow(pm, i, true)
			}

		case !isInf(rup) && !isInf(lo) && lo >= rup-tol:
			if forcible(pm, i) {
				forceRow(pm, i, false)
			}
		}
	}
	return nil
}

// forcible reports whether every column of row i may be fixed, which also
// shifts the bounds of the other rows they appear in.
func forcible(pm *presolveMatrix, i int) bool {
	if !pm.anyProhibited {
		return true
	}
	idx, _ := pm.rows.entries(i)
	for _, j := range idx {
		if pm.colTouchesProhibited(j) {
			return false
		}
	}
	return true
}

func forceRow(pm *presolveMatrix, i int, atMax bool) {
	cols, vals := pm.rowEntries(i)
	order := make([]int, len(cols))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool { return cols[order[a]] < cols[order[b]] })

	a := &forcingAction{row: i, atMax: atMax}
	for _, k := range order {
		j, v := cols[k], vals[k]
		a.cols = append(a.cols, j)
		a.vals = append(a.vals, v)
		a.clo = append(a.clo, pm.clo[j])
		a.cup = append(a.cup, pm.cup[j])
		if (v > 0) == atMax {
			pm.clo[j] = pm.cup[j]
		} else {
			pm.cup[j] = pm.clo[j]
		}
	}
	pm.push(a)
	pm.stats.removed(KindForcing, 1, 0)
	removeFixed(pm, a.cols)
}
