package presolve

import "math"

func isIntegral(v, tol float64) bool {
	return math.Abs(v-math.Round(v)) <= tol
}

// integralSubstitution reports whether substituting integer column j out of
// equality row i keeps the remaining columns integral: every other column
// must be integer and every ratio a_il/a_ij and rhs/a_ij a whole number.
func integralSubstitution(pm *presolveMatrix, i, j int, a, rhs float64) bool {
	tol := pm.cfg.tol
	if !isIntegral(rhs/a, tol) {
		return false
	}
	idx, val := pm.rows.entries(i)
	for k, l := range idx {
		if l == j {
			continue
		}
		if !pm.integer[l] || !isIntegral(val[k]/a, tol) {
			return false
		}
	}
	return true
}

// setPartitioning reports whether row i looks like a set-partitioning
// constraint (sum of binaries equal to one). Such rows are left alone.
func setPartitioning(pm *presolveMatrix, i int) bool {
	if !pm.isEquality(i) || math.Abs(pm.rlo[i]-1) > pm.cfg.tol {
		return false
	}
	idx, val := pm.rows.entries(i)
	for k, l := range idx {
		if math.Abs(math.Abs(val[k])-1) > pm.cfg.tol || pm.clo[l] != 0 || pm.cup[l] != 1 {
			return false
		}
	}
	return true
}

// impliedFree substitutes out scheduled columns whose bounds are implied by
// one of their rows. Column singletons may use an inequality row, which is
// first pinned at the bound the objective drives it to. Longer columns, up
// to maxLen entries, need an equality row and must not add nonzeros.
func impliedFree(pm *presolveMatrix, cols []int, maxLen int) error {
	if maxLen < 1 {
		maxLen = 1
	}
	for _, j := range cols {
		n := pm.colLen(j)
		if pm.colGone[j] || n == 0 || n > maxLen || pm.colTouchesProhibited(j) {
			continue
		}
		rows, vals := pm.colEntries(j)
		for k, i := range rows {
			a := vals[k]
			if pm.rowGone[i] || pm.rowLen(i) < 2 || math.Abs(a) < zeroTolerance || pm.rowTouchesProhibited(i) {
				continue
			}
			eq := pm.isEquality(i)
			if n > 1 && !eq {
				continue
			}
			if setPartitioning(pm, i) || !impliedFreeBy(pm, i, j, a, pm.rowActivity(i)) {
				continue
			}

			var rhs float64
			c := pm.cost[j]
			switch {
			case eq:
				rhs = pm.rlo[i]
			case c == 0 && !isInf(pm.rlo[i]):
				rhs = pm.rlo[i]
			case c == 0:
				rhs = pm.rup[i]
			case c/a > 0 && !isInf(pm.rlo[i]):
				rhs = pm.rlo[i]
			case c/a < 0 && !isInf(pm.rup[i]):
				rhs = pm.rup[i]
			default:
				continue
			}
			if pm.integer[j] && (!eq || !integralSubstitution(pm, i, j, a, rhs)) {
				continue
			}
			if n > 1 {
				if _, net := substitutionFill(pm, i, j); net > 0 {
					continue
				}
			}

			act, err := eliminate(pm, KindImpliedFree, i, j, rhs)
			if err != nil {
				return err
			}
			pm.push(act)
			pm.stats.removed(KindImpliedFree, 1, 1)
			break
		}
	}
	return nil
}
