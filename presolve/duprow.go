package presolve

import (
	"fmt"
	"math"
)

// dupRowAction records row dropped, equal to ratio times row kept. The
// kept row took the intersection of both rows' bounds.
type dupRowAction struct {
	link
	kept, dropped  int
	ratio          float64
	keptLo, keptUp float64
	loFrom, upFrom bool // the kept row's new bound came from the dropped row
	cols           []int
	vals           []float64
}

func (a *dupRowAction) kind() ActionKind { return KindDupRow }

func (a *dupRowAction) String() string {
	return fmt.Sprintf("drop row %d duplicating %d (ratio %g)", a.dropped, a.kept, a.ratio)
}

func (a *dupRowAction) postsolve(p *postsolveMatrix) {
	i, k, r := a.kept, a.dropped, a.ratio
	p.rlo[i], p.rup[i] = a.keptLo, a.keptUp
	for n, j := range a.cols {
		p.insert(j, k, a.vals[n])
	}
	p.acts[k] = r * p.acts[i]
	p.y[k] = 0
	p.rowStat[k] = BasisStatusBasic

	st := p.rowStat[i]
	if st == BasisStatusBasic || st == BasisStatusFree {
		return
	}
	side := nonbasicSide(st, p.y[i])
	if side == BasisStatusLower && !a.loFrom || side == BasisStatusUpper && !a.upFrom {
		p.rowStat[i] = side
		return
	}
	// The binding bound belongs to the dropped row, which takes the dual.
	p.y[k] = p.y[i] / r
	p.y[i] = 0
	p.rowStat[i] = BasisStatusBasic
	if (side == BasisStatusLower) == (r > 0) {
		p.rowStat[k] = BasisStatusLower
	} else {
		p.rowStat[k] = BasisStatusUpper
	}
}

// duplicateRows drops rows that are multiples of an earlier row, moving
// their bounds onto it.
func duplicateRows(pm *presolveMatrix) error {
	type entry struct {
		row int
		idx []int
		val []float64
	}
	buckets := make(map[uint64][]*entry)
	var keys []uint64
	for i := 0; i < pm.nrows; i++ {
		if pm.rowGone[i] || pm.rowLen(i) == 0 || pm.rowTouchesProhibited(i) {
			continue
		}
		idx, val := pm.rows.entries(i)
		e := &entry{row: i}
		e.idx, e.val = sortedEntries(idx, val)
		key := vectorKey(e.idx, e.val)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], e)
	}

	tol := pm.cfg.tol
	for _, key := range keys {
		bucket := buckets[key]
		for a := 0; a < len(bucket); a++ {
			ei := bucket[a]
			if pm.rowGone[ei.row] {
				continue
			}
			for b := a + 1; b < len(bucket); b++ {
				ek := bucket[b]
				i, k := ei.row, ek.row
				if pm.rowGone[k] {
					continue
				}
				rho, ok := proportional(ei.idx, ei.val, ek.idx, ek.val, tol)
				if !ok {
					continue
				}
				// rlo_k <= rho*(A_i x) <= rup_k, restated for A_i x
				lo, up := scaled(1/rho, pm.rlo[k]), scaled(1/rho, pm.rup[k])
				if rho < 0 {
					lo, up = up, lo
				}
				newLo, newUp := math.Max(pm.rlo[i], lo), math.Min(pm.rup[i], up)
				if newLo > newUp+tol {
					if pm.cfg.ignoreInfeasible {
						continue
					}
					return fmt.Errorf("%w: rows %d and %d are proportional with disjoint bounds", ErrInfeasible, i, k)
				}
				if newUp < newLo {
					newUp = newLo
				}
				act := &dupRowAction{
					kept: i, dropped: k, ratio: rho,
					keptLo: pm.rlo[i], keptUp: pm.rup[i],
					loFrom: newLo > pm.rlo[i],
					upFrom: newUp < pm.rup[i],
					cols:   append([]int(nil), ek.idx...),
					vals:   append([]float64(nil), ek.val...),
				}
				pm.rlo[i], pm.rup[i] = newLo, newUp
				pm.markRow(k)
				pm.removeRow(k)
				pm.rowGone[k] = true
				pm.markRow(i)
				pm.push(act)
				pm.stats.removed(KindDupRow, 1, 0)
			}
		}
	}
	return nil
}
