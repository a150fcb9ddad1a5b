package presolve

import (
	"fmt"
)

// Postsolve maps a solution of p.Model back onto the original model. The
// reduced solution must carry ColValues; duals and basis statuses are
// optional and are derived from the values when missing. Solutions without
// values (infeasible, unbounded, ...) are passed through with their status.
func (p *Presolved) Postsolve(reduced *Solution) (*Solution, error) {
	if reduced == nil {
		return nil, newErrorMsg("Postsolve", "nil solution")
	}
	switch reduced.Status {
	case ModelStatusOptimal, ModelStatusModelEmpty, ModelStatusNotSet:
	default:
		return &Solution{Status: reduced.Status}, nil
	}
	if err := p.checkReduced(reduced); err != nil {
		return nil, err
	}

	pm := newPostsolveMatrix(p.cfg, p.rows, p.cols, p.start, p.index, p.value, p.arena)
	pm.cost = append([]float64(nil), p.cost...)
	pm.clo = append([]float64(nil), p.clo...)
	pm.cup = append([]float64(nil), p.cup...)
	pm.rlo = append([]float64(nil), p.rlo...)
	pm.rup = append([]float64(nil), p.rup...)
	pm.x = append(make([]float64, 0, p.cols), reduced.ColValues...)
	pm.y = make([]float64, p.rows)
	if len(reduced.RowDuals) == p.rows {
		copy(pm.y, reduced.RowDuals)
	}
	if p.maximize {
		for i := range pm.y {
			pm.y[i] = -pm.y[i]
		}
	}
	pm.acts = make([]float64, p.rows)
	pm.d = make([]float64, p.cols)
	for j := 0; j < p.cols; j++ {
		for k := pm.head[j]; k >= 0; k = pm.link[k] {
			pm.acts[pm.row[k]] += pm.val[k] * pm.x[j]
		}
		pm.d[j] = pm.reducedCost(j)
	}

	pm.colStat = make([]BasisStatus, p.cols)
	if len(reduced.ColBasis) == p.cols {
		copy(pm.colStat, reduced.ColBasis)
	} else {
		for j := range pm.colStat {
			pm.colStat[j] = statusFromValue(pm.x[j], pm.clo[j], pm.cup[j], p.cfg.tol)
		}
	}
	pm.rowStat = make([]BasisStatus, p.rows)
	if len(reduced.RowBasis) == p.rows {
		copy(pm.rowStat, reduced.RowBasis)
	} else {
		for i := range pm.rowStat {
			pm.rowStat[i] = statusFromValue(pm.acts[i], pm.rlo[i], pm.rup[i], p.cfg.tol)
		}
	}

	for a := p.chain; a != nil; a = a.next() {
		a.postsolve(pm)
		if p.cfg.debug >= DebugFull {
			pm.checkConsistency(a.String())
		}
	}
	if pm.nrows != p.origRows || pm.ncols != p.origCols {
		inconsistent("Postsolve", "restored %dx%d, original model is %dx%d", pm.nrows, pm.ncols, p.origRows, p.origCols)
	}
	if p.cfg.debug >= DebugCheap {
		pm.checkConsistency("Postsolve")
	}

	sol := &Solution{
		Status:    ModelStatusOptimal,
		ColValues: pm.x,
		ColDuals:  pm.d,
		RowValues: pm.acts,
		RowDuals:  pm.y,
		ColBasis:  pm.colStat,
		RowBasis:  pm.rowStat,
	}
	sol.PrimalInfeasibility = sumPrimalInfeasibilities(pm.x, pm.clo, pm.cup, pm.acts, pm.rlo, pm.rup)
	sol.DualInfeasibility = sumDualInfeasibilities(pm.x, pm.d, pm.clo, pm.cup, p.cfg.tol) +
		sumDualInfeasibilities(pm.acts, pm.y, pm.rlo, pm.rup, p.cfg.tol)
	sol.Objective = objectiveValue(p.origCost, pm.x, p.origOffset)
	if p.maximize {
		sol.Objective = -sol.Objective
		negate(sol.ColDuals)
		negate(sol.RowDuals)
	}

	if log := p.cfg.logger; log.enable(LogSummary) {
		log.log("postsolve: objective %g, primal infeasibility %g, dual infeasibility %g\n",
			sol.Objective, sol.PrimalInfeasibility, sol.DualInfeasibility)
		if n := sol.BasicCount(); n != p.origRows && log.enable(LogPass) {
			log.log("postsolve: basis has %d basic entries for %d rows\n", n, p.origRows)
		}
	}
	return sol, nil
}

// Accept reports whether a postsolved solution is within the accept
// tolerance in both primal and dual infeasibility.
func (p *Presolved) Accept(sol *Solution) bool {
	return sol != nil && sol.PrimalInfeasibility <= p.cfg.acceptTol && sol.DualInfeasibility <= p.cfg.acceptTol
}

func (p *Presolved) checkReduced(s *Solution) error {
	if len(s.ColValues) != p.cols {
		return newErrorMsg("Postsolve", fmt.Sprintf("solution has %d column values, reduced model has %d columns", len(s.ColValues), p.cols))
	}
	if n := len(s.RowDuals); n != 0 && n != p.rows {
		return newErrorMsg("Postsolve", fmt.Sprintf("solution has %d row duals, reduced model has %d rows", n, p.rows))
	}
	if n := len(s.ColBasis); n != 0 && n != p.cols {
		return newErrorMsg("Postsolve", fmt.Sprintf("solution has %d column statuses, reduced model has %d columns", n, p.cols))
	}
	if n := len(s.RowBasis); n != 0 && n != p.rows {
		return newErrorMsg("Postsolve", fmt.Sprintf("solution has %d row statuses, reduced model has %d rows", n, p.rows))
	}
	return nil
}

// statusFromValue guesses a basis status for a value: nonbasic at a bound it
// sits on, basic strictly inside its range, free at zero without bounds.
func statusFromValue(v, lo, up, tol float64) BasisStatus {
	s := statusByValue(v, lo, up, tol)
	if s == BasisStatusFree && (!isInf(lo) || !isInf(up) || v != 0) {
		return BasisStatusBasic
	}
	return s
}

func negate(v []float64) {
	for k := range v {
		v[k] = -v[k]
	}
}
