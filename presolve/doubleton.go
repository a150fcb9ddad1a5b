package presolve

import (
	"fmt"
	"math"
)

// elimRange returns the range of x = (rhs - b*y)/a as y moves over [lo, up].
func elimRange(rhs, a, b, lo, up float64) (float64, float64) {
	at := func(v float64) float64 {
		if isInf(v) {
			return scaled(-b/a, v)
		}
		return (rhs - b*v) / a
	}
	t1, t2 := at(lo), at(up)
	return math.Min(t1, t2), math.Max(t1, t2)
}

// doubletons eliminates one column of every scheduled equality row with
// exactly two entries. The column with the larger coefficient is
// substituted out and the other inherits the bounds it implies.
func doubletons(pm *presolveMatrix, rows []int) error {
	tol := pm.cfg.tol
	for _, i := range rows {
		if pm.rowGone[i] || pm.rowLen(i) != 2 || !pm.isEquality(i) || pm.rowTouchesProhibited(i) {
			continue
		}
		idx, val := pm.rows.entries(i)
		x, y := idx[0], idx[1]
		ax, ay := val[0], val[1]
		if pm.integer[x] || pm.integer[y] || math.Abs(ax) < zeroTolerance || math.Abs(ay) < zeroTolerance {
			continue
		}
		// Divide by the larger coefficient; on ties remove the shorter
		// column, then the higher index.
		swap := math.Abs(ax) > math.Abs(ay)
		if math.Abs(ax) == math.Abs(ay) {
			lx, ly := pm.colLen(x), pm.colLen(y)
			swap = lx < ly || (lx == ly && x > y)
		}
		if swap {
			x, y, ax, ay = y, x, ay, ax
		}
		// Substitution rewrites every other row holding y.
		if pm.colTouchesProhibited(y) {
			continue
		}
		rhs := pm.rlo[i]

		lo, up := elimRange(rhs, ax, ay, pm.clo[y], pm.cup[y])
		newLo, newUp := math.Max(pm.clo[x], lo), math.Min(pm.cup[x], up)
		if newLo > newUp+tol {
			if pm.cfg.ignoreInfeasible {
				continue
			}
			return fmt.Errorf("%w: doubleton row %d leaves column %d the range [%g, %g]", ErrInfeasible, i, x, newLo, newUp)
		}
		if newUp < newLo {
			newUp = newLo
		}
		keepLo, keepUp := pm.clo[x], pm.cup[x]
		lowerFrom := lo > keepLo || (isInf(keepLo) && !isInf(lo))
		upperFrom := up < keepUp || (isInf(keepUp) && !isInf(up))

		pm.clo[x], pm.cup[x] = newLo, newUp
		a, err := eliminate(pm, KindDoubleton, i, y, rhs)
		if err != nil {
			pm.clo[x], pm.cup[x] = keepLo, keepUp
			return err
		}
		a.keep, a.keepLo, a.keepUp = x, keepLo, keepUp
		a.lowerFromElim, a.upperFromElim = lowerFrom, upperFrom
		pm.push(a)
		pm.stats.removed(KindDoubleton, 1, 1)

		if pm.isFixed(x) && pm.colLen(x) > 0 && !pm.colTouchesProhibited(x) {
			removeFixed(pm, []int{x})
		}
	}
	return nil
}
