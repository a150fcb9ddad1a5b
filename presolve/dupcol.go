package presolve

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// sortedEntries returns copies of a vector's entries ordered by index.
func sortedEntries(idx []int, val []float64) ([]int, []float64) {
	order := make([]int, len(idx))
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(a, b int) bool { return idx[order[a]] < idx[order[b]] })
	si := make([]int, len(idx))
	sv := make([]float64, len(idx))
	for n, k := range order {
		si[n], sv[n] = idx[k], val[k]
	}
	return si, sv
}

// vectorKey hashes a sorted vector's pattern and its values scaled by the
// first entry, so that proportional vectors share a key.
func vectorKey(idx []int, val []float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for k, i := range idx {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h.Write(buf[:])
		r := math.Round(val[k] / val[0] * 1e6)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// proportional returns rho with b = rho*a when two sorted vectors share a
// pattern and are multiples of each other.
func proportional(ai []int, av []float64, bi []int, bv []float64, tol float64) (float64, bool) {
	if len(ai) != len(bi) || len(ai) == 0 {
		return 0, false
	}
	rho := bv[0] / av[0]
	for k := range ai {
		if ai[k] != bi[k] || math.Abs(bv[k]-rho*av[k]) > tol*(1+math.Abs(bv[k])) {
			return 0, false
		}
	}
	return rho, true
}

// dupColAction records column merged, equal to ratio times column kept,
// folded into kept. The kept column's value is split between the two in
// postsolve.
type dupColAction struct {
	link
	kept, merged int
	ratio        float64
	jlo, jup     float64 // kept column bounds before the merge
	rows         []int
	vals         []float64 // entries of the merged column
}

func (a *dupColAction) kind() ActionKind { return KindDupCol }

func (a *dupColAction) String() string {
	return fmt.Sprintf("merge col %d into %d (ratio %g)", a.merged, a.kept, a.ratio)
}

func (a *dupColAction) postsolve(p *postsolveMatrix) {
	j, k, r := a.kept, a.merged, a.ratio
	tol := p.cfg.tol
	z := p.x[j]
	st := p.colStat[j]
	klo, kup := p.clo[k], p.cup[k]
	p.clo[j], p.cup[j] = a.jlo, a.jup
	for n, i := range a.rows {
		p.insert(k, i, a.vals[n])
	}

	fits := func(v, lo, up float64) bool { return v >= lo-tol && v <= up+tol }
	var xj, xk float64
	kAtBound := true
	switch {
	case !isInf(klo) && fits(z-r*klo, a.jlo, a.jup):
		xk = klo
	case !isInf(kup) && fits(z-r*kup, a.jlo, a.jup):
		xk = kup
	default:
		kAtBound = false
		switch {
		case !isInf(a.jlo) && fits((z-a.jlo)/r, klo, kup):
			xk = (z - a.jlo) / r
		case !isInf(a.jup) && fits((z-a.jup)/r, klo, kup):
			xk = (z - a.jup) / r
		default:
			xk = math.Max(klo, math.Min(kup, 0))
		}
	}
	xj = z - r*xk
	p.x[j], p.x[k] = xj, xk
	p.d[j] = p.reducedCost(j)
	p.d[k] = p.reducedCost(k)

	bound, other := k, j
	if !kAtBound {
		bound, other = j, k
	}
	p.colStat[bound] = statusByValue(p.x[bound], p.clo[bound], p.cup[bound], tol)
	if st == BasisStatusBasic {
		p.colStat[other] = BasisStatusBasic
		return
	}
	p.colStat[other] = statusByValue(p.x[other], p.clo[other], p.cup[other], tol)
}

// duplicateColumns looks for pairs of continuous columns where one is a
// multiple of the other. With matching costs the pair is merged into one
// column; otherwise the cheaper direction of trading one for the other may
// pin one of them at a bound.
func duplicateColumns(pm *presolveMatrix) error {
	type entry struct {
		col int
		idx []int
		val []float64
	}
	buckets := make(map[uint64][]*entry)
	var keys []uint64
	for j := 0; j < pm.ncols; j++ {
		if pm.colGone[j] || pm.colLen(j) == 0 || pm.integer[j] || pm.colTouchesProhibited(j) {
			continue
		}
		idx, val := pm.cols.entries(j)
		e := &entry{col: j}
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
			ej := bucket[a]
			for b := a + 1; b < len(bucket); b++ {
				ek := bucket[b]
				j, k := ej.col, ek.col
				if pm.colLen(j) == 0 || pm.colLen(k) == 0 || pm.isFixed(j) || pm.isFixed(k) {
					continue
				}
				rho, ok := proportional(ej.idx, ej.val, ek.idx, ek.val, tol)
				if !ok {
					continue
				}
				delta := pm.cost[k] - rho*pm.cost[j]
				if math.Abs(delta) <= pm.cfg.dualTol {
					mergeColumns(pm, j, k, rho, ek.idx, ek.val)
					continue
				}
				if err := dominatedPair(pm, j, k, rho, delta); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// mergeColumns folds column k = rho*column j into j. x_j + rho*x_k takes
// the place of x_j, so j's bounds widen by rho times k's.
func mergeColumns(pm *presolveMatrix, j, k int, rho float64, rows []int, vals []float64) {
	a := &dupColAction{
		kept: j, merged: k, ratio: rho,
		jlo: pm.clo[j], jup: pm.cup[j],
		rows: append([]int(nil), rows...),
		vals: append([]float64(nil), vals...),
	}
	klo, kup := pm.clo[k], pm.cup[k]
	if rho < 0 {
		klo, kup = kup, klo
	}
	pm.clo[j] = widen(pm.clo[j], scaled(rho, klo))
	pm.cup[j] = widen(pm.cup[j], scaled(rho, kup))
	pm.markCol(k)
	pm.removeColumn(k)
	pm.colGone[k] = true
	pm.markCol(j)
	pm.push(a)
	pm.stats.removed(KindDupCol, 0, 1)
}

// widen adds d to a bound, where either being infinite makes the result
// infinite in the bound's direction.
func widen(bound, d float64) float64 {
	if isInf(bound) {
		return bound
	}
	if isInf(d) {
		return d
	}
	return bound + d
}

// dominatedPair handles column k = rho*column j with c_k != rho*c_j.
// Moving x_k by t and x_j by -rho*t leaves every row unchanged and moves
// the objective by delta*t, so the pair can be pushed in the improving
// direction until one of them reaches a bound.
func dominatedPair(pm *presolveMatrix, j, k int, rho, delta float64) error {
	kUp := delta < 0
	jUp := (rho > 0) != kUp
	kBound, jBound := pm.clo[k], pm.clo[j]
	if kUp {
		kBound = pm.cup[k]
	}
	if jUp {
		jBound = pm.cup[j]
	}
	switch {
	case isInf(jBound) && isInf(kBound):
		return fmt.Errorf("%w: columns %d and %d form an improving ray", ErrUnboundedOrInfeasible, j, k)
	case isInf(jBound):
		makeFixed(pm, k, kUp)
	case isInf(kBound):
		makeFixed(pm, j, jUp)
	}
	return nil
}
