package presolve

import "gonum.org/v1/gonum/floats"

// sumPrimalInfeasibilities adds up how far columns and rows lie outside
// their bounds.
func sumPrimalInfeasibilities(x, clo, cup, acts, rlo, rup []float64) float64 {
	sum := 0.0
	for j, v := range x {
		sum += boundViolation(v, clo[j], cup[j])
	}
	for i, v := range acts {
		sum += boundViolation(v, rlo[i], rup[i])
	}
	return sum
}

func boundViolation(v, lo, up float64) float64 {
	switch {
	case !isInf(lo) && v < lo:
		return lo - v
	case !isInf(up) && v > up:
		return v - up
	}
	return 0
}

// sumDualInfeasibilities adds up how much the duals of values v violate
// optimality for a minimization: a value strictly above its lower bound
// needs a non-positive dual, one strictly below its upper bound a
// non-negative one.
func sumDualInfeasibilities(v, dual, lo, up []float64, tol float64) float64 {
	sum := 0.0
	for k, d := range dual {
		aboveLo := isInf(lo[k]) || v[k]-lo[k] > tol
		belowUp := isInf(up[k]) || up[k]-v[k] > tol
		if aboveLo && d > 0 {
			sum += d
		}
		if belowUp && d < 0 {
			sum -= d
		}
	}
	return sum
}

// objectiveValue returns c·x + offset.
func objectiveValue(c, x []float64, offset float64) float64 {
	if len(c) == 0 {
		return offset
	}
	return floats.Dot(c, x) + offset
}
