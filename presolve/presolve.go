package presolve

import (
	"errors"
	"fmt"
	"math"
)

// State is the phase a presolve run has reached.
type State int

const (
	// StateScanning means reductions are still being applied.
	StateScanning State = iota
	// StateConverged means no pass changed the problem any more.
	StateConverged
	// StateFeasible means a reduced model was produced.
	StateFeasible
	// StateInfeasible means the model was proven infeasible.
	StateInfeasible
	// StateUnbounded means the model was proven unbounded, or unbounded
	// or infeasible.
	StateUnbounded
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateScanning:
		return "Scanning"
	case StateConverged:
		return "Converged"
	case StateFeasible:
		return "Feasible"
	case StateInfeasible:
		return "Infeasible"
	case StateUnbounded:
		return "Unbounded"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// dualTries bounds the dual-reduction rounds of one outer pass.
const dualTries = 5

// lpData is a model in the canonical minimization form presolve works on.
type lpData struct {
	numRow, numCol int
	aStart, aIndex []int
	aValue         []float64
	colCost        []float64
	colLower       []float64
	colUpper       []float64
	rowLower       []float64
	rowUpper       []float64
	offset         float64
	varTypes       []VariableType
}

// newLPData copies m into canonical form: vectors at full length, values
// beyond ±Infinity made infinite and a maximization turned into a
// minimization.
func newLPData(m *Model) (*lpData, error) {
	if m == nil {
		return nil, newErrorMsg("Presolve", "nil model")
	}
	numCol := m.NumVars()
	numRow := m.NumConstraints()

	colCosts, err := expandSlice(numCol, m.ColCosts, 0.0)
	if err != nil {
		return nil, newErrorMsg("Presolve", "inconsistent ColCosts length")
	}
	colLower, err := expandSlice(numCol, m.ColLower, math.Inf(-1))
	if err != nil {
		return nil, newErrorMsg("Presolve", "inconsistent ColLower length")
	}
	colUpper, err := expandSlice(numCol, m.ColUpper, math.Inf(1))
	if err != nil {
		return nil, newErrorMsg("Presolve", "inconsistent ColUpper length")
	}
	rowLower, err := expandSlice(numRow, m.RowLower, math.Inf(-1))
	if err != nil {
		return nil, newErrorMsg("Presolve", "inconsistent RowLower length")
	}
	rowUpper, err := expandSlice(numRow, m.RowUpper, math.Inf(1))
	if err != nil {
		return nil, newErrorMsg("Presolve", "inconsistent RowUpper length")
	}

	aStart, aIndex, aValue, err := nonzerosToCSC(m.ConstMatrix, numRow, numCol)
	if err != nil {
		return nil, err
	}

	varTypes := make([]VariableType, numCol)
	copy(varTypes, m.VarTypes)

	for j := range colCosts {
		if math.IsNaN(colCosts[j]) || math.Abs(colCosts[j]) >= Infinity {
			return nil, newErrorMsg("Presolve", fmt.Sprintf("cost of column %d is not finite", j))
		}
		colLower[j], colUpper[j] = normBound(colLower[j]), normBound(colUpper[j])
		if math.IsNaN(colLower[j]) || math.IsNaN(colUpper[j]) {
			return nil, newErrorMsg("Presolve", fmt.Sprintf("bounds of column %d are NaN", j))
		}
	}
	for i := range rowLower {
		rowLower[i], rowUpper[i] = normBound(rowLower[i]), normBound(rowUpper[i])
		if math.IsNaN(rowLower[i]) || math.IsNaN(rowUpper[i]) {
			return nil, newErrorMsg("Presolve", fmt.Sprintf("bounds of row %d are NaN", i))
		}
	}

	offset := m.Offset
	if m.Maximize {
		for j := range colCosts {
			colCosts[j] = -colCosts[j]
		}
		offset = -offset
	}

	return &lpData{
		numRow:   numRow,
		numCol:   numCol,
		aStart:   aStart,
		aIndex:   aIndex,
		aValue:   aValue,
		colCost:  colCosts,
		colLower: colLower,
		colUpper: colUpper,
		rowLower: rowLower,
		rowUpper: rowUpper,
		offset:   offset,
		varTypes: varTypes,
	}, nil
}

// Presolved is a reduced model together with what is needed to map its
// solution back onto the model it came from.
type Presolved struct {
	// Model is the reduced problem, in the original objective sense.
	Model *Model
	// Stats counts what each reduction did.
	Stats *Stats
	// State is StateFeasible for every value returned by Presolve.
	State State

	cfg      *config
	chain    action
	maximize bool

	origRows, origCols int
	origCost           []float64 // canonical costs of the original model
	origOffset         float64
	arena              int // postsolve coefficient arena size

	// reduced problem in canonical form
	rows, cols   int
	start, index []int
	value        []float64
	cost         []float64
	clo, cup     []float64
	rlo, rup     []float64
}

// Presolve reduces m. The model is not modified. On failure the returned
// error is an *Error whose Status tells whether the model was proven
// infeasible, unbounded or unbounded-or-infeasible; errors.Is also matches
// ErrInfeasible, ErrUnbounded and ErrOutOfSpace.
func Presolve(m *Model, opts ...Option) (*Presolved, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, newError("Presolve", err)
	}
	lp, err := newLPData(m)
	if err != nil {
		return nil, newError("Presolve", err)
	}
	origCost := append([]float64(nil), lp.colCost...)

	pm := newPresolveMatrix(lp, cfg)
	pm.stats.Rows, pm.stats.Cols, pm.stats.Nonzeros = lp.numRow, lp.numCol, len(lp.aValue)

	d := &driver{pm: pm, cfg: cfg, log: cfg.logger}
	if err := d.run(); err != nil {
		if cfg.logger.enable(LogSummary) {
			cfg.logger.log("presolve: %s after %d passes: %v\n", d.state, pm.stats.Passes, err)
		}
		return nil, newError("Presolve", err)
	}

	p := d.result(m.Maximize)
	p.origRows, p.origCols = lp.numRow, lp.numCol
	p.origCost, p.origOffset = origCost, lp.offset
	p.arena = max(len(lp.aValue), pm.peakNNZ) + lp.numRow + lp.numCol + 1
	if cfg.logger.enable(LogSummary) {
		cfg.logger.log("presolve: %s\n", p.Stats)
	}
	return p, nil
}

// driver runs the reduction passes over one presolve matrix.
type driver struct {
	pm    *presolveMatrix
	cfg   *config
	log   *Logger
	state State
}

// step runs one transform if it is enabled and checks the matrix afterwards
// at the configured debug level.
func (d *driver) step(t Transform, where string, f func() error) error {
	if !d.cfg.enabled(t) {
		return nil
	}
	if err := f(); err != nil {
		return err
	}
	d.pm.debugCheck(where)
	return nil
}

func (d *driver) fail(err error) error {
	switch {
	case errors.Is(err, ErrUnbounded):
		d.state = StateUnbounded
	case errors.Is(err, ErrInfeasible):
		d.state = StateInfeasible
	}
	return err
}

func (d *driver) run() error {
	pm := d.pm
	d.state = StateScanning
	if err := d.checkBounds(); err != nil {
		return d.fail(err)
	}

	// Cheap cleanup before the main loop.
	if err := d.step(TransformFixed, "fixed", func() error {
		fixedColumns(pm, pm.work.cols())
		return nil
	}); err != nil {
		return d.fail(err)
	}
	dropZeros(pm)
	if err := dropEmpty(pm); err != nil {
		return d.fail(err)
	}

	lastEmpty, stalls := -1, 0
	for pass := 0; pass < d.cfg.passes; pass++ {
		mark := pm.chain
		pm.stats.Passes++

		pm.work.initAll()
		if err := d.inner(); err != nil {
			return d.fail(err)
		}
		pm.work.initAll()
		if err := d.outer(); err != nil {
			return d.fail(err)
		}

		empty := 0
		for i := 0; i < pm.nrows; i++ {
			if pm.rowLen(i) == 0 {
				empty++
			}
		}
		if d.log.enable(LogPass) {
			d.log.log("presolve: pass %d: %d empty rows, %d nonzeros, %d actions\n",
				pass+1, empty, pm.nnz(), chainLength(pm.chain))
		}
		if pm.chain == mark {
			break
		}
		if empty == lastEmpty {
			stalls++
			if stalls >= 2 {
				break
			}
		} else {
			stalls = 0
		}
		lastEmpty = empty
	}
	d.state = StateConverged

	dropZeros(pm)
	if err := dropEmpty(pm); err != nil {
		return d.fail(err)
	}
	pm.debugCheck("finalize")
	d.state = StateFeasible
	return nil
}

// checkBounds rejects crossed bounds and snaps bounds crossed by less than
// the tolerance.
func (d *driver) checkBounds() error {
	pm := d.pm
	tol := d.cfg.tol
	for j := 0; j < pm.ncols; j++ {
		if pm.clo[j] > pm.cup[j] {
			if pm.clo[j] > pm.cup[j]+tol && !d.cfg.ignoreInfeasible {
				return fmt.Errorf("%w: column %d has bounds [%g, %g]", ErrInfeasible, j, pm.clo[j], pm.cup[j])
			}
			pm.cup[j] = pm.clo[j]
		}
	}
	for i := 0; i < pm.nrows; i++ {
		if pm.rlo[i] > pm.rup[i] {
			if pm.rlo[i] > pm.rup[i]+tol && !d.cfg.ignoreInfeasible {
				return fmt.Errorf("%w: row %d has bounds [%g, %g]", ErrInfeasible, i, pm.rlo[i], pm.rup[i])
			}
			pm.rup[i] = pm.rlo[i]
		}
	}
	return nil
}

// inner applies the cheap reductions to the rows and columns that changed
// until a round leaves the problem untouched.
func (d *driver) inner() error {
	pm := d.pm
	for round := 0; !pm.work.empty(); round++ {
		mark := pm.chain
		rows, cols := pm.work.rows(), pm.work.cols()

		if err := d.step(TransformSingletonRow, "singleton", func() error {
			return rowSingletons(pm, rows)
		}); err != nil {
			return err
		}
		if round == 0 {
			if err := d.step(TransformDual, "dual", func() error {
				return dualReductions(pm)
			}); err != nil {
				return err
			}
		}
		if err := d.step(TransformDoubleton, "doubleton", func() error {
			return doubletons(pm, rows)
		}); err != nil {
			return err
		}
		if err := d.step(TransformTripleton, "tripleton", func() error {
			return tripletons(pm, rows)
		}); err != nil {
			return err
		}
		if err := d.step(TransformTighten, "tighten", func() error {
			tightenColumns(pm, cols)
			return nil
		}); err != nil {
			return err
		}
		if err := d.step(TransformForcing, "forcing", func() error {
			return forcingRows(pm, rows)
		}); err != nil {
			return err
		}
		if round%5 == 0 {
			if err := d.step(TransformImpliedFree, "implied free", func() error {
				return impliedFree(pm, cols, d.cfg.substitutionFill)
			}); err != nil {
				return err
			}
		}
		if err := d.step(TransformFixed, "fixed", func() error {
			fixedColumns(pm, cols)
			return nil
		}); err != nil {
			return err
		}

		pm.work.advance()
		if pm.chain == mark {
			break
		}
	}
	return nil
}

// outer applies the expensive reductions once over the whole problem.
func (d *driver) outer() error {
	pm := d.pm
	cols := pm.work.cols()
	if d.cfg.enabled(TransformDual) {
		for try := 0; try < dualTries; try++ {
			mark := pm.chain
			if err := d.step(TransformDual, "dual", func() error {
				return dualReductions(pm)
			}); err != nil {
				return err
			}
			if err := d.step(TransformImpliedFree, "implied free", func() error {
				return impliedFree(pm, cols, 1)
			}); err != nil {
				return err
			}
			if pm.chain == mark {
				break
			}
		}
	}
	if err := d.step(TransformDupCol, "duplicate columns", func() error {
		return duplicateColumns(pm)
	}); err != nil {
		return err
	}
	return d.step(TransformDupRow, "duplicate rows", func() error {
		return duplicateRows(pm)
	})
}

// result packages the finalized matrix as a reduced model.
func (d *driver) result(maximize bool) *Presolved {
	pm := d.pm
	p := &Presolved{
		Stats:    pm.stats,
		State:    d.state,
		cfg:      d.cfg,
		chain:    pm.chain,
		maximize: maximize,
		rows:     pm.nrows,
		cols:     pm.ncols,
		start:    make([]int, pm.ncols+1),
		cost:     append([]float64(nil), pm.cost...),
		clo:      append([]float64(nil), pm.clo...),
		cup:      append([]float64(nil), pm.cup...),
		rlo:      append([]float64(nil), pm.rlo...),
		rup:      append([]float64(nil), pm.rup...),
	}

	m := &Model{
		Maximize: maximize,
		Offset:   pm.offset,
		ColCosts: append([]float64(nil), pm.cost...),
		ColLower: append([]float64(nil), pm.clo...),
		ColUpper: append([]float64(nil), pm.cup...),
		RowLower: append([]float64(nil), pm.rlo...),
		RowUpper: append([]float64(nil), pm.rup...),
	}
	for j := 0; j < pm.ncols; j++ {
		idx, val := sortedEntries(pm.cols.entries(j))
		for k, i := range idx {
			p.index = append(p.index, i)
			p.value = append(p.value, val[k])
			m.ConstMatrix = append(m.ConstMatrix, Nonzero{Row: i, Col: j, Val: val[k]})
		}
		p.start[j+1] = len(p.index)
	}
	if maximize {
		m.Offset = -m.Offset
		for j := range m.ColCosts {
			m.ColCosts[j] = -m.ColCosts[j]
		}
	}
	for _, vt := range pm.types {
		if vt != Continuous {
			m.VarTypes = append([]VariableType(nil), pm.types...)
			break
		}
	}
	p.Model = m

	p.Stats.ReducedRows, p.Stats.ReducedCols, p.Stats.ReducedNonzeros = pm.nrows, pm.ncols, pm.nnz()
	return p
}
