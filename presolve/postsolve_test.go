package presolve

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostsolvePassesThroughStatus(t *testing.T) {
	m := &Model{ColCosts: []float64{1, 1}, ColLower: []float64{0, 0}}
	m.AddGeRow([]float64{1, 1}, 1)
	m.AddGeRow([]float64{1, 2}, 1)
	p, err := Presolve(m, WithTransforms(0))
	require.NoError(t, err)

	sol, err := p.Postsolve(&Solution{Status: ModelStatusInfeasible})
	require.NoError(t, err)
	assert.Equal(t, ModelStatusInfeasible, sol.Status)
	assert.Nil(t, sol.ColValues)
}

func TestPostsolveRejectsWrongDimensions(t *testing.T) {
	m := &Model{ColCosts: []float64{1, 1}, ColLower: []float64{0, 0}}
	m.AddGeRow([]float64{1, 1}, 1)
	m.AddGeRow([]float64{1, 2}, 1)
	p, err := Presolve(m, WithTransforms(0))
	require.NoError(t, err)
	require.Equal(t, 2, p.Model.NumVars())

	_, err = p.Postsolve(&Solution{Status: ModelStatusOptimal, ColValues: []float64{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModel))

	_, err = p.Postsolve(&Solution{Status: ModelStatusOptimal, ColValues: []float64{1, 0}, RowDuals: []float64{1}})
	assert.ErrorIs(t, err, ErrModel)

	_, err = p.Postsolve(nil)
	assert.ErrorIs(t, err, ErrModel)
}

func TestPostsolveDerivesMissingData(t *testing.T) {
	m := &Model{ColCosts: []float64{1, 1}, ColLower: []float64{0, 0}}
	m.AddGeRow([]float64{1, 1}, 1)
	m.AddGeRow([]float64{1, 2}, 1)
	p, err := Presolve(m, WithTransforms(0))
	require.NoError(t, err)

	sol, err := p.Postsolve(&Solution{Status: ModelStatusOptimal, ColValues: []float64{1, 0}})
	require.NoError(t, err)
	assertValues(t, []float64{1, 1}, sol.RowValues)
	assertValues(t, []float64{1, 1}, sol.ColDuals)
	assert.Equal(t, []BasisStatus{BasisStatusBasic, BasisStatusLower}, sol.ColBasis)
	assert.Equal(t, []BasisStatus{BasisStatusLower, BasisStatusLower}, sol.RowBasis)
	// zero duals leave x0 above its bound with a positive reduced cost
	assert.InDelta(t, 1.0, sol.DualInfeasibility, 1e-12)
	assert.False(t, p.Accept(sol))
}

func TestPostsolveMaximize(t *testing.T) {
	m := &Model{
		Maximize: true,
		Offset:   1,
		ColCosts: []float64{2},
		ColLower: []float64{0},
		ColUpper: []float64{3},
	}
	m.AddLeRow([]float64{1}, 2)

	p, err := Presolve(m)
	require.NoError(t, err)
	require.Equal(t, 0, p.Model.NumVars())

	sol, err := p.Postsolve(&Solution{Status: ModelStatusModelEmpty})
	require.NoError(t, err)
	assertValues(t, []float64{2}, sol.ColValues)
	assert.InDelta(t, 5.0, sol.Objective, 1e-9)
	// the row is binding with a positive marginal value
	assertValues(t, []float64{2}, sol.RowDuals)
	assert.Equal(t, BasisStatusUpper, sol.RowBasis[0])
}

func TestReducedModelKeepsSense(t *testing.T) {
	m := &Model{
		Maximize: true,
		Offset:   2,
		ColCosts: []float64{1, 3, 5},
		ColLower: []float64{0, 0, 4},
		ColUpper: []float64{10, 10, 4},
	}
	m.AddLeRow([]float64{1, 1, 1}, 9)
	m.AddLeRow([]float64{1, 2, 0}, 8)

	p, err := Presolve(m, WithTransforms(TransformFixed))
	require.NoError(t, err)
	assert.True(t, p.Model.Maximize)
	assert.Equal(t, []float64{1, 3}, p.Model.ColCosts)
	assert.InDelta(t, 22.0, p.Model.Offset, 1e-12)
	assert.Equal(t, []float64{5, 8}, p.Model.RowUpper)
}

func TestPostsolveArenaUnderrunPanics(t *testing.T) {
	cfg := defaultConfig()
	pm := newPostsolveMatrix(cfg, 1, 1, []int{0, 1}, []int{0}, []float64{1}, 1)
	pm.checkConsistency("load")
	require.Panics(t, func() { pm.insert(0, 0, 2) })
}

func TestPostsolveMatrixReusesSlots(t *testing.T) {
	cfg := defaultConfig()
	cfg.debug = DebugCheap
	pm := newPostsolveMatrix(cfg, 2, 1, []int{0, 1}, []int{0}, []float64{1}, 2)
	pm.insert(0, 1, 3)
	assert.Equal(t, 3.0, pm.coef(0, 1))
	assert.Equal(t, 3.0, pm.remove(0, 1))
	pm.setCoef(0, 1, 4)
	assert.Equal(t, 4.0, pm.coef(0, 1))
	pm.setCoef(0, 0, 0)
	assert.Equal(t, 0.0, pm.coef(0, 0))
	assert.Equal(t, 1, pm.count[0])
	pm.checkConsistency("reuse")

	require.Panics(t, func() { pm.insert(0, 1, 5) })
}

func TestSumInfeasibilities(t *testing.T) {
	inf := math.Inf(1)
	p := sumPrimalInfeasibilities(
		[]float64{-1, 5}, []float64{0, 0}, []float64{inf, 4},
		[]float64{3}, []float64{math.Inf(-1)}, []float64{2},
	)
	assert.InDelta(t, 3.0, p, 1e-12)
	assert.Zero(t, sumPrimalInfeasibilities(nil, nil, nil, nil, nil, nil))
	assert.Equal(t, 2.0, objectiveValue([]float64{1, 2}, []float64{4, -1}, 0))
	assert.Equal(t, 1.5, objectiveValue(nil, nil, 1.5))

	d := sumDualInfeasibilities(
		[]float64{0, 2, 4}, []float64{-1, 0.5, -2},
		[]float64{0, 0, 0}, []float64{4, 4, 4}, 1e-9,
	)
	// x0 at its lower bound needs d >= 0; x1 inside needs d = 0; x2 at its
	// upper bound needs d <= 0
	assert.InDelta(t, 1.5, d, 1e-12)
}
