package presolve

import (
	"math"
	"sort"
)

// Infinity is the magnitude at and above which bounds are treated as infinite.
const Infinity = 1e30

// Inf returns positive infinity, suitable for unbounded variable bounds.
func Inf() float64 {
	return math.Inf(1)
}

// NegInf returns negative infinity, suitable for unbounded variable bounds.
func NegInf() float64 {
	return math.Inf(-1)
}

// normBound maps values beyond ±Infinity onto ±Inf.
func normBound(v float64) float64 {
	switch {
	case v >= Infinity:
		return math.Inf(1)
	case v <= -Infinity:
		return math.Inf(-1)
	}
	return v
}

func isInf(v float64) bool {
	return math.IsInf(v, 0)
}

// nonzerosToCSC converts a slice of Nonzero elements to compressed sparse
// column format with numCol+1 start offsets. Duplicate entries keep the last
// value.
func nonzerosToCSC(nz []Nonzero, numRow, numCol int) (start, index []int, value []float64, err error) {
	sorted := make([]Nonzero, len(nz))
	copy(sorted, nz)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Col != sorted[j].Col {
			return sorted[i].Col < sorted[j].Col
		}
		return sorted[i].Row < sorted[j].Row
	})

	// Validate and deduplicate
	filtered := make([]Nonzero, 0, len(sorted))
	for _, n := range sorted {
		if n.Row < 0 || n.Col < 0 || n.Row >= numRow || n.Col >= numCol {
			return nil, nil, nil, newErrorMsg("nonzerosToCSC", "row or column index out of range")
		}
		if math.IsNaN(n.Val) || math.IsInf(n.Val, 0) {
			return nil, nil, nil, newErrorMsg("nonzerosToCSC", "coefficient is not finite")
		}
		if len(filtered) > 0 && filtered[len(filtered)-1].Row == n.Row && filtered[len(filtered)-1].Col == n.Col {
			filtered[len(filtered)-1].Val = n.Val
		} else {
			filtered = append(filtered, n)
		}
	}

	start = make([]int, numCol+1)
	index = make([]int, len(filtered))
	value = make([]float64, len(filtered))
	for i, n := range filtered {
		start[n.Col+1]++
		index[i] = n.Row
		value[i] = n.Val
	}
	for j := 0; j < numCol; j++ {
		start[j+1] += start[j]
	}
	return start, index, value, nil
}

// expandSlice expands a slice to length n if it's empty, filling with fillValue.
// Returns a copy of the original slice if it already has length n.
// Returns an error if the slice has a non-zero length that differs from n.
func expandSlice(n int, slice []float64, fillValue float64) ([]float64, error) {
	if len(slice) == n {
		result := make([]float64, n)
		copy(result, slice)
		return result, nil
	}
	if len(slice) == 0 {
		result := make([]float64, n)
		for i := range result {
			result[i] = fillValue
		}
		return result, nil
	}
	return nil, newErrorMsg("expandSlice", "inconsistent slice length")
}

// maxRowCol finds the maximum row and column indices from a slice of nonzeros.
func maxRowCol(nz []Nonzero) (maxRow, maxCol int) {
	maxRow, maxCol = -1, -1
	for _, n := range nz {
		if n.Row > maxRow {
			maxRow = n.Row
		}
		if n.Col > maxCol {
			maxCol = n.Col
		}
	}
	return maxRow, maxCol
}

// shift adds d to a finite bound and leaves infinite bounds alone.
func shift(bound, d float64) float64 {
	if isInf(bound) {
		return bound
	}
	return bound + d
}

// scaled returns a*b where an infinite b keeps its infinity with the sign of
// the product. a must be finite and non-zero.
func scaled(a, b float64) float64 {
	if isInf(b) {
		if (a > 0) == (b > 0) {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return a * b
}

// sameValue reports whether two possibly infinite values agree within tol.
func sameValue(a, b, tol float64) bool {
	if isInf(a) || isInf(b) {
		return a == b
	}
	return math.Abs(a-b) <= tol
}
