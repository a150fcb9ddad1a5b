package presolve

import "fmt"

// ActionKind identifies the reduction that produced an undo record.
type ActionKind int

const (
	// KindFixed removes a column whose bounds coincide.
	KindFixed ActionKind = iota
	// KindMakeFixed pins a column at one of its bounds.
	KindMakeFixed
	// KindDropZeros deletes negligible coefficients.
	KindDropZeros
	// KindEmptyRows deletes rows without coefficients.
	KindEmptyRows
	// KindEmptyCols deletes columns without coefficients.
	KindEmptyCols
	// KindRowSingleton turns a one-entry row into column bounds.
	KindRowSingleton
	// KindDoubleton eliminates a column through a two-entry equality.
	KindDoubleton
	// KindTripleton eliminates a column through a three-entry equality.
	KindTripleton
	// KindForcing pins every column of a row at the bound its activity forces.
	KindForcing
	// KindUseless deletes a row that can never be violated.
	KindUseless
	// KindImpliedFree substitutes out a column whose bounds a row implies.
	KindImpliedFree
	// KindDualRow turns an inequality into an equality from dual bounds.
	KindDualRow
	// KindTighten removes a zero-cost column together with the rows it can
	// always satisfy.
	KindTighten
	// KindDupCol merges two proportional columns.
	KindDupCol
	// KindDupRow deletes a row proportional to another.
	KindDupRow
	numKinds
)

// String returns a human-readable representation of the action kind.
func (k ActionKind) String() string {
	names := [...]string{
		"Fixed", "MakeFixed", "DropZeros", "EmptyRows", "EmptyCols",
		"RowSingleton", "Doubleton", "Tripleton", "Forcing", "Useless",
		"ImpliedFree", "DualRow", "Tighten", "DupCol", "DupRow",
	}
	if k >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// action is one node of the undo chain. Nodes are prepended as presolve
// applies reductions and are never modified afterwards; postsolve visits
// them from the most recent to the oldest.
type action interface {
	fmt.Stringer
	kind() ActionKind
	postsolve(p *postsolveMatrix)
	next() action
	setNext(a action)
}

type link struct {
	nx action
}

func (l *link) next() action { return l.nx }

func (l *link) setNext(a action) { l.nx = a }

// chainLength counts the nodes reachable from a.
func chainLength(a action) int {
	n := 0
	for ; a != nil; a = a.next() {
		n++
	}
	return n
}

// KindStats counts what one kind of reduction did.
type KindStats struct {
	Applied int // undo records created
	Rows    int // rows removed
	Cols    int // columns removed
}

// Stats summarizes a presolve run.
type Stats struct {
	Rows, Cols, Nonzeros                      int // original model
	ReducedRows, ReducedCols, ReducedNonzeros int
	Passes                                    int
	Kinds                                     map[ActionKind]KindStats
}

func newStats() *Stats {
	return &Stats{Kinds: make(map[ActionKind]KindStats)}
}

func (s *Stats) applied(k ActionKind) {
	ks := s.Kinds[k]
	ks.Applied++
	s.Kinds[k] = ks
}

func (s *Stats) removed(k ActionKind, rows, cols int) {
	ks := s.Kinds[k]
	ks.Rows += rows
	ks.Cols += cols
	s.Kinds[k] = ks
}

// String renders the non-zero per-kind counters.
func (s *Stats) String() string {
	out := fmt.Sprintf("rows %d->%d cols %d->%d nonzeros %d->%d passes %d",
		s.Rows, s.ReducedRows, s.Cols, s.ReducedCols, s.Nonzeros, s.ReducedNonzeros, s.Passes)
	for k := ActionKind(0); k < numKinds; k++ {
		if ks, ok := s.Kinds[k]; ok && ks.Applied > 0 {
			out += fmt.Sprintf(" %s=%d", k, ks.Applied)
		}
	}
	return out
}
