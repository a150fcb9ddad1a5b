package presolve

import "fmt"

// removeFixedAction records a column whose value was substituted into its
// rows. The column itself stays behind empty and is dropped at finalize,
// which is where its objective contribution is accounted for.
type removeFixedAction struct {
	link
	col   int
	value float64
	cup   float64 // upper bound before snapping onto value
	rows  []int
	vals  []float64
}

func (a *removeFixedAction) kind() ActionKind { return KindFixed }

func (a *removeFixedAction) String() string {
	return fmt.Sprintf("fixed col %d at %g (%d rows)", a.col, a.value, len(a.rows))
}

func (a *removeFixedAction) postsolve(p *postsolveMatrix) {
	j, v := a.col, a.value
	for k, i := range a.rows {
		av := a.vals[k]
		p.insert(j, i, av)
		p.rlo[i] = shift(p.rlo[i], av*v)
		p.rup[i] = shift(p.rup[i], av*v)
		p.acts[i] += av * v
	}
	p.cup[j] = a.cup
	p.x[j] = v
	p.d[j] = p.reducedCost(j)
	p.colStat[j] = statusByValue(v, p.clo[j], p.cup[j], p.cfg.tol)
}

// removeFixed empties each column in cols, moving a_ij*x_j into the row
// bounds. Every column must have clo == cup within tolerance.
func removeFixed(pm *presolveMatrix, cols []int) {
	for _, j := range cols {
		v := pm.clo[j]
		rows, vals := pm.colEntries(j)
		for k, i := range rows {
			pm.rlo[i] = shift(pm.rlo[i], -vals[k]*v)
			pm.rup[i] = shift(pm.rup[i], -vals[k]*v)
			pm.markRow(i)
		}
		a := &removeFixedAction{col: j, value: v, cup: pm.cup[j], rows: rows, vals: vals}
		pm.cup[j] = v
		pm.removeColumn(j)
		pm.push(a)
		pm.stats.removed(KindFixed, 0, 1)
	}
}

// fixedColumns removes every scheduled column whose bounds coincide.
func fixedColumns(pm *presolveMatrix, cols []int) {
	var fixed []int
	for _, j := range cols {
		if pm.colGone[j] || pm.colLen(j) == 0 || pm.colTouchesProhibited(j) {
			continue
		}
		if pm.isFixed(j) {
			fixed = append(fixed, j)
		}
	}
	removeFixed(pm, fixed)
}

// makeFixedAction records that a column was pinned at one of its bounds.
// It is always followed on the chain by the removeFixedAction that
// substitutes the pinned value.
type makeFixedAction struct {
	link
	col      int
	atUpper  bool
	released float64 // the bound given up when fixing
}

func (a *makeFixedAction) kind() ActionKind { return KindMakeFixed }

func (a *makeFixedAction) String() string {
	side := "lower"
	if a.atUpper {
		side = "upper"
	}
	return fmt.Sprintf("make fixed col %d at %s", a.col, side)
}

func (a *makeFixedAction) postsolve(p *postsolveMatrix) {
	j := a.col
	if a.atUpper {
		p.clo[j] = a.released
	} else {
		p.cup[j] = a.released
	}
	switch st := statusByValue(p.x[j], p.clo[j], p.cup[j], p.cfg.tol); {
	case st == BasisStatusFixed:
		p.colStat[j] = st
	case a.atUpper:
		p.colStat[j] = BasisStatusUpper
	default:
		p.colStat[j] = BasisStatusLower
	}
}

// makeFixed pins column j at its upper or lower bound, which must be
// finite, and substitutes it out.
func makeFixed(pm *presolveMatrix, j int, atUpper bool) {
	a := &makeFixedAction{col: j, atUpper: atUpper}
	if atUpper {
		a.released = pm.clo[j]
		pm.clo[j] = pm.cup[j]
	} else {
		a.released = pm.cup[j]
		pm.cup[j] = pm.clo[j]
	}
	pm.push(a)
	removeFixed(pm, []int{j})
}
