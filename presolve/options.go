package presolve

import "fmt"

// Transform selects individual reductions. Combine with bitwise or.
type Transform uint32

const (
	// TransformFixed removes columns whose bounds coincide.
	TransformFixed Transform = 1 << iota
	// TransformSingletonRow turns single-entry rows into column bounds.
	TransformSingletonRow
	// TransformDoubleton eliminates a column through a two-entry equality.
	TransformDoubleton
	// TransformTripleton eliminates a column through a three-entry equality.
	TransformTripleton
	// TransformForcing removes rows whose activity range pins or cannot
	// violate their bounds.
	TransformForcing
	// TransformImpliedFree substitutes out columns whose bounds are implied
	// by a constraint.
	TransformImpliedFree
	// TransformDual fixes columns and tightens rows from dual-bound arguments.
	TransformDual
	// TransformTighten fixes zero-cost columns that only relax their rows.
	TransformTighten
	// TransformDupCol merges or fixes proportional columns.
	TransformDupCol
	// TransformDupRow drops proportional rows.
	TransformDupRow

	// TransformAll enables every reduction.
	TransformAll = TransformFixed | TransformSingletonRow | TransformDoubleton |
		TransformTripleton | TransformForcing | TransformImpliedFree |
		TransformDual | TransformTighten | TransformDupCol | TransformDupRow
)

// DebugLevel selects how much self-checking presolve performs.
type DebugLevel int

const (
	// DebugOff performs no extra checks.
	DebugOff DebugLevel = iota
	// DebugCheap performs constant-time checks around each operation.
	DebugCheap
	// DebugFull verifies both matrix views after every reduction.
	DebugFull
)

// Defaults.
const (
	DefaultPasses           = 5
	DefaultSubstitutionFill = 3
	DefaultTolerance        = 1e-7
	DefaultDualTolerance    = 1e-7
	DefaultAllocRatio       = 2.0
	DefaultMaxAllocRatio    = 8.0
	DefaultAcceptTolerance  = 1e-6

	// zeroTolerance is the magnitude below which a coefficient is dropped.
	zeroTolerance = 1e-12
	// compactionLimit is the number of compactions after which the arena
	// grows instead of compacting again.
	compactionLimit = 8
)

// Option configures presolve behavior.
type Option func(*config)

type config struct {
	passes           int
	integrality      bool
	prohibitedRows   []int
	prohibitedCols   []int
	substitutionFill int
	tol              float64
	dualTol          float64
	acceptTol        float64
	allocRatio       float64
	maxAllocRatio    float64
	debug            DebugLevel
	logger           *Logger
	transforms       Transform
	ignoreInfeasible bool
}

func defaultConfig() *config {
	return &config{
		passes:           DefaultPasses,
		integrality:      true,
		substitutionFill: DefaultSubstitutionFill,
		tol:              DefaultTolerance,
		dualTol:          DefaultDualTolerance,
		acceptTol:        DefaultAcceptTolerance,
		allocRatio:       DefaultAllocRatio,
		maxAllocRatio:    DefaultMaxAllocRatio,
		transforms:       TransformAll,
		logger:           &Logger{Level: LogNoop},
	}
}

func (c *config) validate() error {
	switch {
	case c.passes < 0:
		return fmt.Errorf("%w: passes must be non-negative, got %d", ErrModel, c.passes)
	case c.substitutionFill < 0:
		return fmt.Errorf("%w: substitution fill must be non-negative, got %d", ErrModel, c.substitutionFill)
	case !(c.tol > 0) || !(c.dualTol > 0) || !(c.acceptTol > 0):
		return fmt.Errorf("%w: tolerances must be positive", ErrModel)
	case c.allocRatio < 1:
		return fmt.Errorf("%w: allocation ratio must be at least 1, got %g", ErrModel, c.allocRatio)
	}
	if c.maxAllocRatio < c.allocRatio {
		c.maxAllocRatio = c.allocRatio
	}
	if c.logger == nil {
		c.logger = &Logger{Level: LogNoop}
	}
	return nil
}

func (c *config) enabled(t Transform) bool {
	return c.transforms&t != 0
}

// WithPasses sets the maximum number of outer presolve passes.
func WithPasses(n int) Option {
	return func(c *config) {
		c.passes = n
	}
}

// WithIntegrality controls whether integer columns are preserved as such.
// When disabled, the model is presolved as its LP relaxation.
func WithIntegrality(keep bool) Option {
	return func(c *config) {
		c.integrality = keep
	}
}

// WithProhibitedRows excludes the given rows from every reduction.
func WithProhibitedRows(rows ...int) Option {
	return func(c *config) {
		c.prohibitedRows = append(c.prohibitedRows, rows...)
	}
}

// WithProhibitedCols excludes the given columns from every reduction.
func WithProhibitedCols(cols ...int) Option {
	return func(c *config) {
		c.prohibitedCols = append(c.prohibitedCols, cols...)
	}
}

// WithSubstitutionFill sets the largest column length eligible for
// substitution through an equality row. Zero restricts implied-free
// substitution to column singletons.
func WithSubstitutionFill(n int) Option {
	return func(c *config) {
		c.substitutionFill = n
	}
}

// WithTolerance sets the primal feasibility tolerance.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		c.tol = tol
	}
}

// WithDualTolerance sets the dual feasibility tolerance.
func WithDualTolerance(tol float64) Option {
	return func(c *config) {
		c.dualTol = tol
	}
}

// WithAcceptTolerance sets the infeasibility sum above which Model.Solve
// re-solves the original model.
func WithAcceptTolerance(tol float64) Option {
	return func(c *config) {
		c.acceptTol = tol
	}
}

// WithAllocRatio sets the initial coefficient arena size as a multiple of
// the number of nonzeros.
func WithAllocRatio(ratio float64) Option {
	return func(c *config) {
		c.allocRatio = ratio
	}
}

// WithMaxAllocRatio caps arena growth as a multiple of the number of
// nonzeros. Exceeding it fails with ErrOutOfSpace.
func WithMaxAllocRatio(ratio float64) Option {
	return func(c *config) {
		c.maxAllocRatio = ratio
	}
}

// WithDebugLevel enables internal consistency checking.
func WithDebugLevel(level DebugLevel) Option {
	return func(c *config) {
		c.debug = level
	}
}

// WithLogger directs progress messages to l.
func WithLogger(l *Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithTransforms restricts presolve to the given reductions.
func WithTransforms(t Transform) Option {
	return func(c *config) {
		c.transforms = t
	}
}

// WithIgnoreInfeasible makes presolve skip reductions that would prove
// infeasibility instead of failing, leaving the verdict to the solver.
func WithIgnoreInfeasible(ignore bool) Option {
	return func(c *config) {
		c.ignoreInfeasible = ignore
	}
}
