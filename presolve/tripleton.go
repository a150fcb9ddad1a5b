package presolve

import "math"

// impliedFreeBy reports whether the bounds of column j are implied by row
// i alone, so that dropping them cannot change the feasible set.
func impliedFreeBy(pm *presolveMatrix, i, j int, a float64, act activity) bool {
	lo, up := pm.impliedBounds(i, j, a, act)
	tol := pm.cfg.tol
	okLo := isInf(pm.clo[j]) || (!isInf(lo) && lo >= pm.clo[j]-tol)
	okUp := isInf(pm.cup[j]) || (!isInf(up) && up <= pm.cup[j]+tol)
	return okLo && okUp
}

// tripletons eliminates a column from every scheduled equality row with
// exactly three entries, provided the column's bounds are implied by the
// other two and the substitution does not add nonzeros.
func tripletons(pm *presolveMatrix, rows []int) error {
	for _, i := range rows {
		if pm.rowGone[i] || pm.rowLen(i) != 3 || !pm.isEquality(i) || pm.rowTouchesProhibited(i) {
			continue
		}
		act := pm.rowActivity(i)
		idx, val := pm.rowEntries(i)
		best, bestAbs := -1, 0.0
		for k, j := range idx {
			a := val[k]
			if pm.integer[j] || math.Abs(a) < zeroTolerance || pm.colTouchesProhibited(j) {
				continue
			}
			if !impliedFreeBy(pm, i, j, a, act) {
				continue
			}
			if _, net := substitutionFill(pm, i, j); net > 0 {
				continue
			}
			if math.Abs(a) > bestAbs {
				best, bestAbs = j, math.Abs(a)
			}
		}
		if best < 0 {
			continue
		}
		a, err := eliminate(pm, KindTripleton, i, best, pm.rlo[i])
		if err != nil {
			return err
		}
		pm.push(a)
		pm.stats.removed(KindTripleton, 1, 1)
	}
	return nil
}
