package presolve

import (
	"math"
	"math/rand"
)

// RandomFeasibleModel builds a small LP that is feasible by construction:
// a random point inside the column bounds satisfies every row. Columns mix
// boxed, one-sided, free and fixed bounds; some rows and columns are
// duplicated with a scale factor.
func RandomFeasibleModel(rng *rand.Rand) *Model {
	n := 2 + rng.Intn(5)
	rows := 1 + rng.Intn(4)

	m := &Model{}
	point := make([]float64, 0, n+1)
	for j := 0; j < n; j++ {
		lo, up := randomBounds(rng)
		m.ColLower = append(m.ColLower, lo)
		m.ColUpper = append(m.ColUpper, up)
		m.ColCosts = append(m.ColCosts, float64(rng.Intn(7)-3))
		point = append(point, pointIn(rng, lo, up))
	}

	a := make([][]float64, rows)
	for i := range a {
		a[i] = make([]float64, n)
		for j := range a[i] {
			if rng.Float64() < 0.6 {
				a[i][j] = float64(rng.Intn(9) - 4)
			}
		}
	}

	// a scaled copy of a column, resting at zero in the feasible point
	if rng.Intn(3) == 0 {
		j := rng.Intn(n)
		scale := float64(1 + rng.Intn(2))
		for i := range a {
			a[i] = append(a[i], scale*a[i][j])
		}
		m.ColLower = append(m.ColLower, 0)
		m.ColUpper = append(m.ColUpper, 3)
		m.ColCosts = append(m.ColCosts, scale*m.ColCosts[j]+float64(rng.Intn(3)-1))
		point = append(point, 0)
	}

	for i := range a {
		act := 0.0
		for j, v := range a[i] {
			act += v * point[j]
		}
		lo, up := act, act
		switch rng.Intn(4) {
		case 1:
			lo, up = act-2*rng.Float64(), math.Inf(1)
		case 2:
			lo, up = math.Inf(-1), act+2*rng.Float64()
		case 3:
			lo, up = act-2*rng.Float64(), act+2*rng.Float64()
		}
		m.AddDenseRow(lo, a[i], up)

		// a scaled copy of an inequality, with looser bounds
		if lo != up && rng.Intn(3) == 0 {
			dup := make([]float64, len(a[i]))
			for j, v := range a[i] {
				dup[j] = 2 * v
			}
			m.AddDenseRow(2*lo-rng.Float64(), dup, 2*up+rng.Float64())
		}
	}
	return m
}

func randomBounds(rng *rand.Rand) (float64, float64) {
	lo := float64(rng.Intn(5) - 2)
	switch rng.Intn(6) {
	case 0:
		return lo, math.Inf(1)
	case 1:
		return math.Inf(-1), lo
	case 2:
		return math.Inf(-1), math.Inf(1)
	case 3:
		return lo, lo
	}
	return lo, lo + float64(1+rng.Intn(4))
}

func pointIn(rng *rand.Rand, lo, up float64) float64 {
	switch {
	case math.IsInf(lo, -1) && math.IsInf(up, 1):
		return 4*rng.Float64() - 2
	case math.IsInf(up, 1):
		return lo + 3*rng.Float64()
	case math.IsInf(lo, -1):
		return up - 3*rng.Float64()
	}
	return lo + rng.Float64()*(up-lo)
}
