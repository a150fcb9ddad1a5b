// Package presolve reduces linear programs before they are handed to a solver
// and maps the solver's answer back onto the original problem.
//
// Presolve applies a sequence of reductions (fixed columns, singleton rows,
// doubleton and tripleton equalities, forcing and redundant rows, implied
// free columns, dual-bound fixing, duplicate rows and columns). Every
// reduction records a small undo node. Postsolve walks those nodes in reverse
// order and rebuilds a primal solution, duals, reduced costs and a basis for
// the original model.
//
// # Example
//
//	model := presolve.Model{
//		ColCosts: []float64{1.0, 1.0},
//		ColLower: []float64{0.0, 0.0},
//		ColUpper: []float64{0.5, 0.5},
//	}
//	model.AddEqRow([]float64{1.0, 1.0}, 1.0) // x + y = 1
//
//	p, err := presolve.Presolve(&model)
//	if err != nil {
//		log.Fatal(err)
//	}
//	reduced, err := simplex.NewSolver().Solve(p.Model)
//	if err != nil {
//		log.Fatal(err)
//	}
//	solution, err := p.Postsolve(reduced)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Optimal values:", solution.ColValues)
//
// A Presolved value is not safe for concurrent use.
package presolve

import (
	"errors"
	"fmt"
)

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// VariableType specifies whether a variable is continuous, integer, etc.
type VariableType int

const (
	// Continuous indicates a continuous variable (default).
	Continuous VariableType = iota
	// Integer indicates an integer variable.
	Integer
	// SemiContinuous indicates a semi-continuous variable.
	SemiContinuous
	// SemiInteger indicates a semi-integer variable.
	SemiInteger
	// ImplicitInteger indicates an implicit integer variable.
	ImplicitInteger
)

// String returns a human-readable representation of the variable type.
func (v VariableType) String() string {
	switch v {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case SemiContinuous:
		return "SemiContinuous"
	case SemiInteger:
		return "SemiInteger"
	case ImplicitInteger:
		return "ImplicitInteger"
	default:
		return "Unknown"
	}
}

// integral reports whether values of this type must be whole numbers.
func (v VariableType) integral() bool {
	return v == Integer || v == SemiInteger || v == ImplicitInteger
}

// semi reports whether the variable may also take the value zero outside its
// bounds. Presolve never touches such columns.
func (v VariableType) semi() bool {
	return v == SemiContinuous || v == SemiInteger
}

// ModelStatus represents the status of a presolved or solved model.
type ModelStatus int

const (
	// ModelStatusNotSet indicates the model status has not been set.
	ModelStatusNotSet ModelStatus = iota
	// ModelStatusModelError indicates an error in the model.
	ModelStatusModelError
	// ModelStatusPresolveError indicates an error during presolve.
	ModelStatusPresolveError
	// ModelStatusSolveError indicates an error during solve.
	ModelStatusSolveError
	// ModelStatusPostsolveError indicates an error during postsolve.
	ModelStatusPostsolveError
	// ModelStatusModelEmpty indicates the model is empty.
	ModelStatusModelEmpty
	// ModelStatusOptimal indicates an optimal solution was found.
	ModelStatusOptimal
	// ModelStatusInfeasible indicates the model is infeasible.
	ModelStatusInfeasible
	// ModelStatusUnboundedOrInfeasible indicates the model is unbounded or infeasible.
	ModelStatusUnboundedOrInfeasible
	// ModelStatusUnbounded indicates the model is unbounded.
	ModelStatusUnbounded
	// ModelStatusUnknown indicates an unknown status.
	ModelStatusUnknown
)

// String returns a human-readable representation of the model status.
func (s ModelStatus) String() string {
	names := []string{
		"NotSet", "ModelError", "PresolveError", "SolveError",
		"PostsolveError", "ModelEmpty", "Optimal", "Infeasible",
		"UnboundedOrInfeasible", "Unbounded", "Unknown",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// IsOptimal returns true if the model was solved to optimality.
func (s ModelStatus) IsOptimal() bool {
	return s == ModelStatusOptimal
}

// HasSolution returns true if the model has a valid solution.
func (s ModelStatus) HasSolution() bool {
	return s == ModelStatusOptimal
}

// BasisStatus represents the basis status of a variable or constraint.
type BasisStatus int

const (
	// BasisStatusLower indicates the variable is at its lower bound.
	BasisStatusLower BasisStatus = iota
	// BasisStatusBasic indicates the variable is basic.
	BasisStatusBasic
	// BasisStatusUpper indicates the variable is at its upper bound.
	BasisStatusUpper
	// BasisStatusFree indicates a nonbasic variable strictly between its
	// bounds (usually a free variable at zero).
	BasisStatusFree
	// BasisStatusFixed indicates a nonbasic variable whose bounds coincide.
	BasisStatusFixed
)

// String returns a human-readable representation of the basis status.
func (s BasisStatus) String() string {
	switch s {
	case BasisStatusLower:
		return "Lower"
	case BasisStatusBasic:
		return "Basic"
	case BasisStatusUpper:
		return "Upper"
	case BasisStatusFree:
		return "Free"
	case BasisStatusFixed:
		return "Fixed"
	default:
		return "Unknown"
	}
}

// Nonzero represents a non-zero entry in a sparse matrix.
// Row and Col are zero-indexed.
type Nonzero struct {
	Row int
	Col int
	Val float64
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

var (
	// ErrInfeasible is returned when presolve proves the model has no
	// feasible point.
	ErrInfeasible = errors.New("presolve: problem is infeasible")
	// ErrUnbounded is returned when presolve proves the objective can
	// decrease without limit.
	ErrUnbounded = errors.New("presolve: problem is unbounded")
	// ErrOutOfSpace is returned when the coefficient arena cannot grow any
	// further. Retrying with a larger WithMaxAllocRatio may succeed.
	ErrOutOfSpace = errors.New("presolve: out of coefficient space")
	// ErrModel is returned for malformed input models.
	ErrModel = errors.New("presolve: invalid model")
	// ErrUnboundedOrInfeasible is returned when presolve proves the dual has
	// no feasible point. It matches both ErrUnbounded and ErrInfeasible.
	ErrUnboundedOrInfeasible error = eitherError{}
)

type eitherError struct{}

func (eitherError) Error() string { return "presolve: problem is unbounded or infeasible" }

func (eitherError) Is(target error) bool {
	return target == ErrUnbounded || target == ErrInfeasible
}

// Error represents a presolve failure with context about which operation failed.
type Error struct {
	Op     string      // Operation that failed (e.g., "Presolve", "Postsolve")
	Status ModelStatus // Model status implied by the failure
	Msg    string      // Additional context
	Err    error       // Underlying sentinel, if any
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("presolve: %s failed: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("presolve: %s failed with status %s", e.Op, e.Status)
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps a sentinel error for op, deriving the model status from it.
// Returns nil if err is nil.
func newError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	status := ModelStatusPresolveError
	switch {
	case errors.Is(err, ErrUnboundedOrInfeasible):
		status = ModelStatusUnboundedOrInfeasible
	case errors.Is(err, ErrInfeasible):
		status = ModelStatusInfeasible
	case errors.Is(err, ErrUnbounded):
		status = ModelStatusUnbounded
	case errors.Is(err, ErrModel):
		status = ModelStatusModelError
	}
	return &Error{Op: op, Status: status, Msg: err.Error(), Err: err}
}

// newErrorMsg creates a new model Error with an additional message.
func newErrorMsg(op, msg string) error {
	return &Error{Op: op, Status: ModelStatusModelError, Msg: msg, Err: ErrModel}
}

// InconsistencyError is the panic value raised when presolve or postsolve
// finds its own data structures corrupted. It signals a bug, not a property
// of the model.
type InconsistencyError struct {
	Where string
	Msg   string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("presolve: internal inconsistency in %s: %s", e.Where, e.Msg)
}

func inconsistent(where, format string, a ...any) {
	panic(&InconsistencyError{Where: where, Msg: fmt.Sprintf(format, a...)})
}
