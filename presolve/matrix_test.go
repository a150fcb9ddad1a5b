package presolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// newTestMatrix loads m into a presolve matrix with the given options.
func newTestMatrix(t *testing.T, m *Model, opts ...Option) *presolveMatrix {
	t.Helper()
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	require.NoError(t, cfg.validate())
	lp, err := newLPData(m)
	require.NoError(t, err)
	return newPresolveMatrix(lp, cfg)
}

//	row 0:  x0 + 2x1        <= 4
//	row 1:        3x1 + 4x2 >= 1
func twoRowModel() *Model {
	m := &Model{
		ColCosts: []float64{1, 1, 1},
		ColLower: []float64{0, 0, 0},
		ColUpper: []float64{1, 1, 1},
	}
	m.AddLeRow([]float64{1, 2, 0}, 4)
	m.AddGeRow([]float64{0, 3, 4}, 1)
	return m
}

func TestPresolveMatrixViews(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel())
	require.Equal(t, 2, pm.nrows)
	require.Equal(t, 3, pm.ncols)
	assert.Equal(t, 4, pm.nnz())
	assert.Equal(t, 2, pm.rowLen(0))
	assert.Equal(t, 2, pm.colLen(1))

	v, ok := pm.coef(1, 2)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
	_, ok = pm.coef(0, 2)
	assert.False(t, ok)

	pm.checkConsistency("load")
}

func TestPresolveMatrixEdits(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel())

	pm.removeEntry(0, 1)
	_, ok := pm.coef(0, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, pm.colLen(1))

	require.NoError(t, pm.setEntry(0, 2, 5))
	v, ok := pm.coef(0, 2)
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	require.NoError(t, pm.setEntry(1, 2, 6))
	v, _ = pm.coef(1, 2)
	assert.Equal(t, 6.0, v)
	pm.checkConsistency("edits")

	pm.removeRow(1)
	assert.Equal(t, 0, pm.rowLen(1))
	assert.Equal(t, 0, pm.colLen(1))
	assert.Equal(t, 1, pm.colLen(2))

	pm.removeColumn(2)
	assert.Equal(t, 1, pm.rowLen(0))
	assert.Equal(t, 1, pm.nnz())
	pm.checkConsistency("removals")
}

func TestPresolveMatrixDetectsOneSidedEntry(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel())
	require.True(t, pm.rows.remove(0, 0))
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*InconsistencyError)
		assert.True(t, ok)
	}()
	pm.removeEntry(0, 0)
}

func TestRowActivityAndImpliedBounds(t *testing.T) {
	m := &Model{
		ColLower: []float64{0, math.Inf(-1)},
		ColUpper: []float64{2, 3},
	}
	// 1 <= x0 - x1 <= 5
	m.AddDenseRow(1, []float64{1, -1}, 5)
	pm := newTestMatrix(t, m)

	act := pm.rowActivity(0)
	assert.Equal(t, -3.0, act.lo())
	assert.True(t, math.IsInf(act.hi(), 1))
	assert.Equal(t, 1, act.ninfMax)

	// x1 = x0 - r with r in [1, 5] and x0 in [0, 2]
	lo, up := pm.impliedBounds(0, 1, -1, act)
	assert.Equal(t, -5.0, lo)
	assert.Equal(t, 1.0, up)

	// x0 = r + x1 is bounded above by 5 + 3 only
	lo, up = pm.impliedBounds(0, 0, 1, act)
	assert.True(t, math.IsInf(lo, -1))
	assert.Equal(t, 8.0, up)
}

func TestRenumber(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel())
	pm.removeRow(0)
	pm.removeColumn(0)
	pm.renumber([]bool{false, true}, []bool{false, true, true})

	require.Equal(t, 1, pm.nrows)
	require.Equal(t, 2, pm.ncols)
	assert.Equal(t, []float64{1}, pm.rlo)
	v, ok := pm.coef(0, 1)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
	pm.checkConsistency("renumber")
}

func TestReserveGrowsBothViews(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel(), WithAllocRatio(1), WithMaxAllocRatio(20))
	require.NoError(t, pm.reserve(10))
	assert.GreaterOrEqual(t, len(pm.cols.minor), pm.nnz()+20)
	assert.GreaterOrEqual(t, len(pm.rows.minor), pm.nnz()+20)
	pm.checkConsistency("reserve")
}

func TestReserveOutOfSpace(t *testing.T) {
	pm := newTestMatrix(t, twoRowModel(), WithAllocRatio(1), WithMaxAllocRatio(1))
	assert.ErrorIs(t, pm.reserve(10), ErrOutOfSpace)
}

func TestWorklist(t *testing.T) {
	w := newWorklist(3, 2, []bool{false, true, false}, []bool{false, false})
	assert.Equal(t, []int{0, 2}, w.rows())
	assert.Equal(t, []int{0, 1}, w.cols())

	w.addRow(2)
	w.addRow(2)
	w.addRow(1) // prohibited
	w.addCol(1)
	w.advance()
	assert.Equal(t, []int{2}, w.rows())
	assert.Equal(t, []int{1}, w.cols())

	w.advance()
	assert.True(t, w.empty())

	w.initAll()
	assert.Equal(t, []int{0, 2}, w.rows())
}
