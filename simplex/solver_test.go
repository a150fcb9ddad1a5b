package simplex

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolsthoorn/gopresolve/presolve"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

//	Min    f  =  x_0 +  x_1 + 3
//	s.t.                x_1 <= 7
//	       5 <=  x_0 + 2x_1 <= 15
//	       6 <= 3x_0 + 2x_1
//	0 <= x_0 <= 4; 1 <= x_1
func lpModel(maximize bool) *presolve.Model {
	return &presolve.Model{
		Maximize: maximize,
		Offset:   3.0,
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 1.0},
		ColUpper: []float64{4.0, 1e30},
		ConstMatrix: []presolve.Nonzero{
			{Row: 0, Col: 1, Val: 1.0},
			{Row: 1, Col: 0, Val: 1.0},
			{Row: 1, Col: 1, Val: 2.0},
			{Row: 2, Col: 0, Val: 3.0},
			{Row: 2, Col: 1, Val: 2.0},
		},
		RowLower: []float64{-1e30, 5.0, 6.0},
		RowUpper: []float64{7.0, 15.0, 1e30},
	}
}

func TestSolveLP(t *testing.T) {
	sol, err := NewSolver().Solve(lpModel(false))
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !sol.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", sol.Status)
	}

	if !almostEqual(sol.ColValues[0], 0.5, 1e-6) {
		t.Errorf("x0 = %f, expected 0.5", sol.ColValues[0])
	}
	if !almostEqual(sol.ColValues[1], 2.25, 1e-6) {
		t.Errorf("x1 = %f, expected 2.25", sol.ColValues[1])
	}
	if !almostEqual(sol.Objective, 5.75, 1e-6) {
		t.Errorf("Objective = %f, expected 5.75", sol.Objective)
	}

	assert.InDeltaSlice(t, []float64{0, 0.25, 0.25}, sol.RowDuals, 1e-6)
	assert.InDeltaSlice(t, []float64{0, 0}, sol.ColDuals, 1e-6)
	assert.InDeltaSlice(t, []float64{2.25, 5, 6}, sol.RowValues, 1e-6)
	assert.Equal(t, []presolve.BasisStatus{presolve.BasisStatusBasic, presolve.BasisStatusBasic}, sol.ColBasis)
	assert.Equal(t, []presolve.BasisStatus{
		presolve.BasisStatusBasic, presolve.BasisStatusLower, presolve.BasisStatusLower,
	}, sol.RowBasis)
}

func TestSolveLPMaximize(t *testing.T) {
	sol, err := NewSolver().Solve(lpModel(true))
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())

	if !almostEqual(sol.ColValues[0], 4.0, 1e-6) {
		t.Errorf("x0 = %f, expected 4.0", sol.ColValues[0])
	}
	if !almostEqual(sol.ColValues[1], 5.5, 1e-6) {
		t.Errorf("x1 = %f, expected 5.5", sol.ColValues[1])
	}
	if !almostEqual(sol.Objective, 12.5, 1e-6) {
		t.Errorf("Objective = %f, expected 12.5", sol.Objective)
	}
	assert.Equal(t, presolve.BasisStatusUpper, sol.ColBasis[0])
	assert.Equal(t, presolve.BasisStatusUpper, sol.RowBasis[1])
}

func TestSolveFreeColumn(t *testing.T) {
	// min x s.t. x >= 2, x free
	m := &presolve.Model{ColCosts: []float64{1}}
	m.AddGeRow([]float64{1}, 2)

	sol, err := NewSolver().Solve(m)
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())
	assert.InDelta(t, 2.0, sol.ColValues[0], 1e-9)
	assert.InDelta(t, 1.0, sol.RowDuals[0], 1e-9)
	assert.InDelta(t, 0.0, sol.ColDuals[0], 1e-9)
	assert.Equal(t, presolve.BasisStatusBasic, sol.ColBasis[0])
	assert.Equal(t, presolve.BasisStatusLower, sol.RowBasis[0])
}

func TestSolveInfeasible(t *testing.T) {
	m := &presolve.Model{
		ColCosts: []float64{1.0},
		ColLower: []float64{0.0},
		ColUpper: []float64{10.0},
	}
	m.AddGeRow([]float64{1.0}, 5.0)
	m.AddLeRow([]float64{1.0}, 3.0)

	sol, err := NewSolver().Solve(m)
	require.NoError(t, err)
	assert.Equal(t, presolve.ModelStatusInfeasible, sol.Status)
}

func TestSolveConstantRowInfeasible(t *testing.T) {
	m := &presolve.Model{
		ColCosts: []float64{1, 1},
		ColLower: []float64{2, 0},
		ColUpper: []float64{2, 1},
	}
	m.AddGeRow([]float64{1, 0}, 3)
	m.AddGeRow([]float64{0, 1}, 0)

	sol, err := NewSolver().Solve(m)
	require.NoError(t, err)
	assert.True(t, sol.IsInfeasible())
}

func TestSolveUnbounded(t *testing.T) {
	m := &presolve.Model{ColCosts: []float64{-1}, ColLower: []float64{0}}
	m.AddGeRow([]float64{1}, 1)

	sol, err := NewSolver().Solve(m)
	require.NoError(t, err)
	assert.True(t, sol.IsUnbounded())

	// an unconstrained column is caught before the simplex runs
	m = &presolve.Model{ColCosts: []float64{-1}, ColLower: []float64{0}}
	sol, err = NewSolver().Solve(m)
	require.NoError(t, err)
	assert.Equal(t, presolve.ModelStatusUnbounded, sol.Status)
}

func TestSolveEmpty(t *testing.T) {
	sol, err := NewSolver().Solve(&presolve.Model{Offset: 2})
	require.NoError(t, err)
	assert.True(t, sol.IsOptimal())
	assert.Equal(t, 2.0, sol.Objective)
	assert.Empty(t, sol.ColValues)
}

func TestPassModel(t *testing.T) {
	s := NewSolver()
	_, err := s.Run()
	assert.True(t, errors.Is(err, ErrNoModel))

	inf := math.Inf(1)
	err = s.PassModel(2, 1,
		[]float64{1, 2}, []float64{0, 0}, []float64{inf, inf},
		[]float64{1}, []float64{inf},
		[]int{0, 1, 2}, []int{0, 0}, []float64{1, 1},
		false, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumCol())
	assert.Equal(t, 1, s.NumRow())
	assert.Equal(t, 2, s.NumNonzero())

	sol, err := s.Run()
	require.NoError(t, err)
	require.True(t, sol.IsOptimal())
	assert.InDeltaSlice(t, []float64{1, 0}, sol.ColValues, 1e-9)

	s.Clear()
	assert.Equal(t, 0, s.NumCol())
	_, err = s.Run()
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestPassModelValidation(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name   string
		numCol int
		numRow int
		start  []int
		index  []int
		value  []float64
		cost   []float64
	}{
		{"negative", -1, 0, []int{0}, nil, nil, nil},
		{"cost length", 1, 0, []int{0, 0}, nil, nil, []float64{1, 2}},
		{"start length", 1, 0, []int{0}, nil, nil, []float64{1}},
		{"start decreasing", 2, 1, []int{0, 2, 1}, []int{0}, []float64{1}, []float64{1, 1}},
		{"row out of range", 1, 1, []int{0, 1}, []int{3}, []float64{1}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := max(tt.numCol, 0)
			lo, up := make([]float64, n), make([]float64, n)
			for j := range up {
				up[j] = inf
			}
			m := max(tt.numRow, 0)
			rlo, rup := make([]float64, m), make([]float64, m)
			err := NewSolver().PassModel(tt.numCol, tt.numRow, tt.cost, lo, up, rlo, rup,
				tt.start, tt.index, tt.value, false, 0)
			assert.Error(t, err)
		})
	}
}

func TestSolveRejectsBadModel(t *testing.T) {
	m := &presolve.Model{ColCosts: []float64{1, 2}, ColLower: []float64{0}}
	_, err := NewSolver().Solve(m)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	inf := math.Inf(1)
	assert.Equal(t, presolve.BasisStatusLower, classify(0, 0, 1, 1, 1e-9))
	assert.Equal(t, presolve.BasisStatusUpper, classify(1, 0, 1, -1, 1e-9))
	assert.Equal(t, presolve.BasisStatusBasic, classify(0.5, 0, 1, 0, 1e-9))
	assert.Equal(t, presolve.BasisStatusFree, classify(0, -inf, inf, 0, 1e-9))
	// fixed values follow the dual
	assert.Equal(t, presolve.BasisStatusUpper, classify(2, 2, 2, -1, 1e-9))
	assert.Equal(t, presolve.BasisStatusLower, classify(2, 2, 2, 1, 1e-9))
}
