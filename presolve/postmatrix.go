package presolve

// postsolveMatrix holds the problem and solution while the undo chain is
// replayed. Columns are singly linked lists threaded through one arena;
// released slots go onto a free stack and are reused by later inserts.
type postsolveMatrix struct {
	cfg *config

	nrows, ncols int

	head  []int // first arena slot of each column, -1 if empty
	count []int
	row   []int
	val   []float64
	link  []int // next slot in the same column, -1 terminates
	free  []int

	cost     []float64
	clo, cup []float64
	rlo, rup []float64

	x, d    []float64 // column values and reduced costs
	acts, y []float64 // row activities and duals

	colStat, rowStat []BasisStatus
}

// newPostsolveMatrix builds the column lists for the reduced matrix given in
// compressed column form, in an arena of the given capacity.
func newPostsolveMatrix(cfg *config, nrows, ncols int, start, index []int, value []float64, capacity int) *postsolveMatrix {
	nnz := 0
	if ncols > 0 {
		nnz = start[ncols]
	}
	if capacity < nnz {
		capacity = nnz
	}
	p := &postsolveMatrix{
		cfg:   cfg,
		nrows: nrows,
		ncols: ncols,
		head:  make([]int, ncols),
		count: make([]int, ncols),
		row:   make([]int, capacity),
		val:   make([]float64, capacity),
		link:  make([]int, capacity),
		free:  make([]int, 0, capacity),
	}
	for k := capacity - 1; k >= nnz; k-- {
		p.free = append(p.free, k)
	}
	for j := 0; j < ncols; j++ {
		p.head[j] = -1
		// Link in reverse so each list keeps the stored row order.
		for k := start[j+1] - 1; k >= start[j]; k-- {
			p.row[k] = index[k]
			p.val[k] = value[k]
			p.link[k] = p.head[j]
			p.head[j] = k
			p.count[j]++
		}
	}
	return p
}

func (p *postsolveMatrix) alloc() int {
	n := len(p.free)
	if n == 0 {
		inconsistent("postsolve", "coefficient arena exhausted")
	}
	k := p.free[n-1]
	p.free = p.free[:n-1]
	return k
}

// find returns the arena slot holding a_ij and its predecessor in column j.
func (p *postsolveMatrix) find(j, i int) (k, prev int) {
	prev = -1
	for k = p.head[j]; k >= 0; k = p.link[k] {
		if p.row[k] == i {
			return k, prev
		}
		prev = k
	}
	return -1, -1
}

// insert adds a_ij to column j. The entry must not be present.
func (p *postsolveMatrix) insert(j, i int, a float64) {
	if p.cfg.debug >= DebugCheap {
		if k, _ := p.find(j, i); k >= 0 {
			inconsistent("postsolve", "a(%d,%d) inserted twice", i, j)
		}
	}
	k := p.alloc()
	p.row[k] = i
	p.val[k] = a
	p.link[k] = p.head[j]
	p.head[j] = k
	p.count[j]++
}

// remove deletes a_ij from column j and returns its value.
func (p *postsolveMatrix) remove(j, i int) float64 {
	k, prev := p.find(j, i)
	if k < 0 {
		inconsistent("postsolve", "a(%d,%d) missing", i, j)
	}
	if prev < 0 {
		p.head[j] = p.link[k]
	} else {
		p.link[prev] = p.link[k]
	}
	p.count[j]--
	p.free = append(p.free, k)
	return p.val[k]
}

// setCoef stores a_ij = a, inserting or deleting the entry as needed.
func (p *postsolveMatrix) setCoef(j, i int, a float64) {
	k, _ := p.find(j, i)
	switch {
	case k >= 0 && a == 0:
		p.remove(j, i)
	case k >= 0:
		p.val[k] = a
	case a != 0:
		p.insert(j, i, a)
	}
}

// coef returns a_ij, or zero when absent.
func (p *postsolveMatrix) coef(j, i int) float64 {
	if k, _ := p.find(j, i); k >= 0 {
		return p.val[k]
	}
	return 0
}

// colDot returns the sum of a_ij*y_i over column j.
func (p *postsolveMatrix) colDot(j int) float64 {
	s := 0.0
	for k := p.head[j]; k >= 0; k = p.link[k] {
		s += p.val[k] * p.y[p.row[k]]
	}
	return s
}

// reducedCost recomputes d_j from the current duals.
func (p *postsolveMatrix) reducedCost(j int) float64 {
	return p.cost[j] - p.colDot(j)
}

// statusByValue classifies a nonbasic value against its bounds.
func statusByValue(v, lo, up, tol float64) BasisStatus {
	atLo := !isInf(lo) && v-lo <= tol
	atUp := !isInf(up) && up-v <= tol
	switch {
	case atLo && atUp:
		return BasisStatusFixed
	case atLo:
		return BasisStatusLower
	case atUp:
		return BasisStatusUpper
	}
	return BasisStatusFree
}

// nonbasicSide resolves a Fixed status into Lower or Upper using the sign of
// the reduced cost or dual.
func nonbasicSide(s BasisStatus, dual float64) BasisStatus {
	if s != BasisStatusFixed {
		return s
	}
	if dual >= 0 {
		return BasisStatusLower
	}
	return BasisStatusUpper
}

// spreadIndex maps positions of a compacted vector back onto n original
// slots, skipping the slots listed (ascending) in dropped.
func spreadIndex(n int, dropped []int) []int {
	m := make([]int, 0, n-len(dropped))
	d := 0
	for k := 0; k < n; k++ {
		if d < len(dropped) && dropped[d] == k {
			d++
			continue
		}
		m = append(m, k)
	}
	return m
}

func spreadFloats(v []float64, n int, m []int) []float64 {
	out := make([]float64, n)
	for k, orig := range m {
		out[orig] = v[k]
	}
	return out
}

func spreadInts(v []int, n int, m []int, fill int) []int {
	out := make([]int, n)
	for k := range out {
		out[k] = fill
	}
	for k, orig := range m {
		out[orig] = v[k]
	}
	return out
}

func spreadStatus(v []BasisStatus, n int, m []int) []BasisStatus {
	out := make([]BasisStatus, n)
	for k, orig := range m {
		out[orig] = v[k]
	}
	return out
}

// expandCols restores n columns, leaving the dropped ones empty.
func (p *postsolveMatrix) expandCols(n int, dropped []int) {
	m := spreadIndex(n, dropped)
	p.head = spreadInts(p.head, n, m, -1)
	p.count = spreadInts(p.count, n, m, 0)
	p.cost = spreadFloats(p.cost, n, m)
	p.clo = spreadFloats(p.clo, n, m)
	p.cup = spreadFloats(p.cup, n, m)
	p.x = spreadFloats(p.x, n, m)
	p.d = spreadFloats(p.d, n, m)
	p.colStat = spreadStatus(p.colStat, n, m)
	p.ncols = n
}

// expandRows restores n rows, leaving the dropped ones empty, and renames
// the row indices stored in the column lists.
func (p *postsolveMatrix) expandRows(n int, dropped []int) {
	m := spreadIndex(n, dropped)
	for j := 0; j < p.ncols; j++ {
		for k := p.head[j]; k >= 0; k = p.link[k] {
			p.row[k] = m[p.row[k]]
		}
	}
	p.rlo = spreadFloats(p.rlo, n, m)
	p.rup = spreadFloats(p.rup, n, m)
	p.acts = spreadFloats(p.acts, n, m)
	p.y = spreadFloats(p.y, n, m)
	p.rowStat = spreadStatus(p.rowStat, n, m)
	p.nrows = n
}

// checkConsistency verifies list lengths and arena accounting.
func (p *postsolveMatrix) checkConsistency(where string) {
	used := 0
	for j := 0; j < p.ncols; j++ {
		n := 0
		for k := p.head[j]; k >= 0; k = p.link[k] {
			if p.row[k] < 0 || p.row[k] >= p.nrows {
				inconsistent(where, "column %d references row %d", j, p.row[k])
			}
			n++
			if n > len(p.row) {
				inconsistent(where, "column %d list has a cycle", j)
			}
		}
		if n != p.count[j] {
			inconsistent(where, "column %d holds %d entries, count says %d", j, n, p.count[j])
		}
		used += n
	}
	if used+len(p.free) != len(p.row) {
		inconsistent(where, "%d used and %d free slots in an arena of %d", used, len(p.free), len(p.row))
	}
}
