package presolve_test

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolsthoorn/gopresolve/presolve"
	"github.com/bartolsthoorn/gopresolve/simplex"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// TestLP tests a basic linear programming problem.
//
//	Min    f  =  x_0 +  x_1 + 3
//	s.t.                x_1 <= 7
//	       5 <=  x_0 + 2x_1 <= 15
//	       6 <= 3x_0 + 2x_1
//	0 <= x_0 <= 4; 1 <= x_1
func TestLP(t *testing.T) {
	model := presolve.Model{
		Offset:   3.0,
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 1.0},
		ColUpper: []float64{4.0, 1e30},
		ConstMatrix: []presolve.Nonzero{
			{0, 1, 1.0},
			{1, 0, 1.0},
			{1, 1, 2.0},
			{2, 0, 3.0},
			{2, 1, 2.0},
		},
		RowLower: []float64{-1e30, 5.0, 6.0},
		RowUpper: []float64{7.0, 15.0, 1e30},
	}

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", sol.Status)
	}

	if !almostEqual(sol.ColValues[0], 0.5, 0.01) {
		t.Errorf("x0 = %f, expected 0.5", sol.ColValues[0])
	}
	if !almostEqual(sol.ColValues[1], 2.25, 0.01) {
		t.Errorf("x1 = %f, expected 2.25", sol.ColValues[1])
	}
	if !almostEqual(sol.Objective, 5.75, 0.01) {
		t.Errorf("Objective = %f, expected 5.75", sol.Objective)
	}

	// both lower-bounded rows bind with a marginal cost of 1/4
	require.Len(t, sol.RowDuals, 3)
	assert.InDelta(t, 0.0, sol.RowDuals[0], 1e-6)
	assert.InDelta(t, 0.25, sol.RowDuals[1], 1e-6)
	assert.InDelta(t, 0.25, sol.RowDuals[2], 1e-6)
}

// TestLPMaximize tests a maximization LP problem.
func TestLPMaximize(t *testing.T) {
	model := presolve.Model{
		Maximize: true,
		Offset:   3.0,
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 1.0},
		ColUpper: []float64{4.0, 1e30},
		ConstMatrix: []presolve.Nonzero{
			{0, 1, 1.0},
			{1, 0, 1.0},
			{1, 1, 2.0},
			{2, 0, 3.0},
			{2, 1, 2.0},
		},
		RowLower: []float64{-1e30, 5.0, 6.0},
		RowUpper: []float64{7.0, 15.0, 1e30},
	}

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", sol.Status)
	}

	if !almostEqual(sol.ColValues[0], 4.0, 0.01) {
		t.Errorf("x0 = %f, expected 4.0", sol.ColValues[0])
	}
	if !almostEqual(sol.ColValues[1], 5.5, 0.01) {
		t.Errorf("x1 = %f, expected 5.5", sol.ColValues[1])
	}
	if !almostEqual(sol.Objective, 12.5, 0.01) {
		t.Errorf("Objective = %f, expected 12.5", sol.Objective)
	}
}

// TestAddDenseRow tests the AddDenseRow convenience method.
func TestAddDenseRow(t *testing.T) {
	model := presolve.Model{
		Offset:   3.0,
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 1.0},
		ColUpper: []float64{4.0, 1.0e30},
	}
	model.AddDenseRow(-1.0e30, []float64{0.0, 1.0}, 7.0)
	model.AddDenseRow(5.0, []float64{1.0, 2.0}, 15.0)
	model.AddDenseRow(6.0, []float64{3.0, 2.0}, 1.0e30)

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", sol.Status)
	}

	if !almostEqual(sol.ColValues[0], 0.5, 0.01) {
		t.Errorf("x0 = %f, expected 0.5", sol.ColValues[0])
	}
	if !almostEqual(sol.ColValues[1], 2.25, 0.01) {
		t.Errorf("x1 = %f, expected 2.25", sol.ColValues[1])
	}
}

// TestMatchesDirectSolve compares the presolved route with solving the
// original model directly. The optimum is degenerate, so only the objective
// and feasibility are compared.
//
//	Min    2a + 3b + c + d
//	s.t.   a + b     >= 2
//	           b + c  = 3
//	               c + d <= 4
//	                  2d <= 3
//	0 <= a, b, c, d <= 10
func TestMatchesDirectSolve(t *testing.T) {
	model := presolve.Model{
		ColCosts: []float64{2, 3, 1, 1},
		ColLower: []float64{0, 0, 0, 0},
		ColUpper: []float64{10, 10, 10, 10},
	}
	model.AddGeRow([]float64{1, 1, 0, 0}, 2)
	model.AddEqRow([]float64{0, 1, 1, 0}, 3)
	model.AddLeRow([]float64{0, 0, 1, 1}, 4)
	model.AddLeRow([]float64{0, 0, 0, 2}, 3)

	direct, err := simplex.NewSolver().Solve(&model)
	require.NoError(t, err)
	require.True(t, direct.IsOptimal())

	p, err := presolve.Presolve(&model, presolve.WithDebugLevel(presolve.DebugFull))
	require.NoError(t, err)
	assert.Less(t, p.Model.NumConstraints(), model.NumConstraints())

	var reduced *presolve.Solution
	if p.Model.NumVars() == 0 && p.Model.NumConstraints() == 0 {
		reduced = &presolve.Solution{Status: presolve.ModelStatusModelEmpty}
	} else {
		reduced, err = simplex.NewSolver().Solve(p.Model)
		require.NoError(t, err)
		require.True(t, reduced.IsOptimal())
	}
	sol, err := p.Postsolve(reduced)
	require.NoError(t, err)

	assert.InDelta(t, 7.0, direct.Objective, 1e-6)
	assert.InDelta(t, direct.Objective, sol.Objective, 1e-6)
	assert.InDelta(t, 0.0, sol.PrimalInfeasibility, 1e-6)
	require.Len(t, sol.ColValues, 4)
	assert.InDelta(t, 3.0, sol.ColValues[1]+sol.ColValues[2], 1e-6)
	assert.GreaterOrEqual(t, sol.ColValues[0]+sol.ColValues[1], 2-1e-6)
}

// TestEmptyModel tests that an empty model returns optimal.
func TestEmptyModel(t *testing.T) {
	model := presolve.Model{}

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsOptimal() {
		t.Fatalf("Expected optimal for empty model, got %s", sol.Status)
	}
}

// TestInfeasible tests detection of infeasible models.
func TestInfeasible(t *testing.T) {
	model := presolve.Model{
		ColCosts: []float64{1.0},
		ColLower: []float64{0.0},
		ColUpper: []float64{10.0},
	}
	// x >= 5
	model.AddDenseRow(5.0, []float64{1.0}, math.Inf(1))
	// x <= 3
	model.AddDenseRow(math.Inf(-1), []float64{1.0}, 3.0)

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsInfeasible() {
		t.Errorf("Expected infeasible, got %s", sol.Status)
	}
}

// TestUnbounded tests detection of unbounded models.
func TestUnbounded(t *testing.T) {
	model := presolve.Model{
		ColCosts: []float64{-1.0},
		ColLower: []float64{0.0},
	}
	// x >= 1
	model.AddGeRow([]float64{1.0}, 1.0)

	sol, err := model.Solve(simplex.NewSolver())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if !sol.IsUnbounded() {
		t.Errorf("Expected unbounded, got %s", sol.Status)
	}
}

// TestRandomRoundTrip solves seeded random models both directly and through
// presolve. The two objectives must agree, and the restored solution must be
// feasible with a complete basis whenever the reduced one is.
func TestRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	solved := 0
	for n := 0; n < 200; n++ {
		model := presolve.RandomFeasibleModel(rng)

		direct, err := simplex.NewSolver().Solve(model)
		if err != nil {
			continue
		}
		p, err := presolve.Presolve(model, presolve.WithDebugLevel(presolve.DebugCheap))
		if !direct.IsOptimal() {
			if err == nil {
				if sol, err := model.Solve(simplex.NewSolver()); err == nil {
					assert.False(t, sol.IsOptimal(), "model %d: direct %s", n, direct.Status)
				}
			}
			continue
		}
		require.NoError(t, err, "model %d", n)

		reduced := &presolve.Solution{Status: presolve.ModelStatusModelEmpty}
		if p.Model.NumVars() > 0 || p.Model.NumConstraints() > 0 {
			reduced, err = simplex.NewSolver().Solve(p.Model)
			if err != nil {
				t.Logf("model %d: reduced solve: %v", n, err)
				continue
			}
			require.True(t, reduced.IsOptimal(), "model %d: reduced %s", n, reduced.Status)
		}
		sol, err := p.Postsolve(reduced)
		require.NoError(t, err, "model %d", n)
		solved++

		assert.InDelta(t, direct.Objective, sol.Objective, 1e-6, "model %d", n)
		assert.LessOrEqual(t, sol.PrimalInfeasibility, 1e-6, "model %d", n)
		assert.LessOrEqual(t, sol.DualInfeasibility, 1e-6, "model %d", n)
		assert.True(t, p.Accept(sol), "model %d", n)
		if reduced.BasicCount() == p.Model.NumConstraints() {
			assert.Equal(t, model.NumConstraints(), sol.BasicCount(), "model %d", n)
		}
	}
	assert.Greater(t, solved, 20)
}

// countingSolver returns a wrong answer on its first call and then defers
// to the simplex solver.
type countingSolver struct {
	calls int
}

func (s *countingSolver) Solve(m *presolve.Model) (*presolve.Solution, error) {
	s.calls++
	if s.calls == 1 {
		return &presolve.Solution{
			Status:    presolve.ModelStatusOptimal,
			ColValues: make([]float64, m.NumVars()),
		}, nil
	}
	return simplex.NewSolver().Solve(m)
}

// TestSolveFallsBackToOriginal checks that a restored solution outside the
// accept tolerance triggers a solve of the original model.
func TestSolveFallsBackToOriginal(t *testing.T) {
	model := presolve.Model{
		Offset:   3.0,
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 1.0},
		ColUpper: []float64{4.0, 1e30},
	}
	model.AddLeRow([]float64{0, 1}, 7)
	model.AddDenseRow(5, []float64{1, 2}, 15)
	model.AddGeRow([]float64{3, 2}, 6)

	var buf bytes.Buffer
	s := &countingSolver{}
	sol, err := model.Solve(s,
		presolve.WithTransforms(0),
		presolve.WithLogger(&presolve.Logger{Level: presolve.LogSummary, Msg: &buf}),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
	require.True(t, sol.IsOptimal())
	assert.InDeltaSlice(t, []float64{0.5, 2.25}, sol.ColValues, 1e-6)
	assert.InDelta(t, 5.75, sol.Objective, 1e-6)
	assert.Contains(t, buf.String(), "solving the original model")

	// an accepted solution is returned after a single call
	s = &countingSolver{calls: 1}
	_, err = model.Solve(s, presolve.WithTransforms(0))
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
}

// Benchmarks

func BenchmarkLPSolve(b *testing.B) {
	model := presolve.Model{
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 0.0},
		ColUpper: []float64{10.0, 10.0},
	}
	model.AddDenseRow(1.0, []float64{1.0, 1.0}, 5.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := model.Solve(simplex.NewSolver())
		if err != nil {
			b.Fatal(err)
		}
	}
}
