package presolve

import (
	"fmt"
	"math"
)

// emptyRowsAction records rows physically removed from the problem. Later
// rows were renumbered to close the gaps.
type emptyRowsAction struct {
	link
	nrows    int   // row count before the drop
	dropped  []int // ascending original indices
	rlo, rup []float64
}

func (a *emptyRowsAction) kind() ActionKind { return KindEmptyRows }

func (a *emptyRowsAction) String() string {
	return fmt.Sprintf("drop %d empty rows", len(a.dropped))
}

func (a *emptyRowsAction) postsolve(p *postsolveMatrix) {
	p.expandRows(a.nrows, a.dropped)
	for k, i := range a.dropped {
		p.rlo[i] = a.rlo[k]
		p.rup[i] = a.rup[k]
		p.acts[i] = 0
		p.y[i] = 0
		p.rowStat[i] = BasisStatusBasic
	}
}

// emptyColsAction records columns physically removed from the problem
// together with the values they were given.
type emptyColsAction struct {
	link
	ncols   int
	dropped []int
	clo     []float64
	cup     []float64
	cost    []float64
	value   []float64
	gone    []bool
}

func (a *emptyColsAction) kind() ActionKind { return KindEmptyCols }

func (a *emptyColsAction) String() string {
	return fmt.Sprintf("drop %d empty cols", len(a.dropped))
}

func (a *emptyColsAction) postsolve(p *postsolveMatrix) {
	p.expandCols(a.ncols, a.dropped)
	for k, j := range a.dropped {
		p.clo[j] = a.clo[k]
		p.cup[j] = a.cup[k]
		p.cost[j] = a.cost[k]
		p.x[j] = a.value[k]
		p.d[j] = a.cost[k]
		if a.gone[k] {
			// A later node on the chain owns this column's final state.
			p.colStat[j] = BasisStatusFree
			continue
		}
		p.colStat[j] = statusByValue(a.value[k], a.clo[k], a.cup[k], p.cfg.tol)
	}
}

// emptyColumnValue picks the optimal value of a column that appears in no
// row: the bound its cost pushes it to, or the point of its box closest to
// zero when it has no cost.
func emptyColumnValue(cost, lo, up, dualTol float64) (float64, error) {
	switch {
	case cost > dualTol:
		if isInf(lo) {
			return 0, ErrUnbounded
		}
		return lo, nil
	case cost < -dualTol:
		if isInf(up) {
			return 0, ErrUnbounded
		}
		return up, nil
	}
	return math.Max(lo, math.Min(up, 0)), nil
}

// dropEmpty physically removes empty rows and columns. Rows consumed by a
// reduction are dropped silently; any other empty row must admit zero
// activity. Non-consumed empty columns are set to their optimal value and
// their objective contribution moves into the offset.
func dropEmpty(pm *presolveMatrix) error {
	keepRow := make([]bool, pm.nrows)
	keepCol := make([]bool, pm.ncols)
	rows := &emptyRowsAction{nrows: pm.nrows}
	cols := &emptyColsAction{ncols: pm.ncols}

	for i := 0; i < pm.nrows; i++ {
		keepRow[i] = true
		if pm.rowLen(i) != 0 || pm.rowProhibited[i] {
			continue
		}
		if !pm.rowGone[i] && (pm.rlo[i] > pm.cfg.tol || pm.rup[i] < -pm.cfg.tol) {
			if pm.cfg.ignoreInfeasible {
				continue
			}
			return fmt.Errorf("%w: empty row %d requires activity in [%g, %g]", ErrInfeasible, i, pm.rlo[i], pm.rup[i])
		}
		keepRow[i] = false
		rows.dropped = append(rows.dropped, i)
		rows.rlo = append(rows.rlo, pm.rlo[i])
		rows.rup = append(rows.rup, pm.rup[i])
	}

	offset := 0.0
	for j := 0; j < pm.ncols; j++ {
		keepCol[j] = true
		if pm.colLen(j) != 0 || pm.colProhibited[j] {
			continue
		}
		v := 0.0
		if !pm.colGone[j] {
			var err error
			v, err = emptyColumnValue(pm.cost[j], pm.clo[j], pm.cup[j], pm.cfg.dualTol)
			if err != nil {
				return fmt.Errorf("%w: empty column %d with cost %g", err, j, pm.cost[j])
			}
			offset += pm.cost[j] * v
		}
		keepCol[j] = false
		cols.dropped = append(cols.dropped, j)
		cols.clo = append(cols.clo, pm.clo[j])
		cols.cup = append(cols.cup, pm.cup[j])
		cols.cost = append(cols.cost, pm.cost[j])
		cols.value = append(cols.value, v)
		cols.gone = append(cols.gone, pm.colGone[j])
	}

	if len(rows.dropped) == 0 && len(cols.dropped) == 0 {
		return nil
	}
	pm.offset += offset
	pm.renumber(keepRow, keepCol)
	if len(rows.dropped) > 0 {
		pm.push(rows)
		pm.stats.removed(KindEmptyRows, len(rows.dropped), 0)
	}
	if len(cols.dropped) > 0 {
		pm.push(cols)
		pm.stats.removed(KindEmptyCols, 0, len(cols.dropped))
	}
	return nil
}
