package presolve

import "math"

// presolveMatrix is the working copy of the model during presolve. The
// constraint matrix is kept twice, column-major and row-major, and the two
// views are always updated together.
type presolveMatrix struct {
	cfg *config
	log *Logger

	nrows, ncols int
	cols         *majorStore // minor indices are rows
	rows         *majorStore // minor indices are columns

	cost     []float64
	clo, cup []float64
	rlo, rup []float64
	integer  []bool
	types    []VariableType
	offset   float64

	// rows and columns consumed by a reduction; finalize drops them without
	// feasibility checks or objective contributions
	rowGone, colGone []bool

	rowProhibited, colProhibited []bool
	anyProhibited                bool

	work  *worklist
	chain action
	stats *Stats

	peakNNZ int
}

func newPresolveMatrix(lp *lpData, cfg *config) *presolveMatrix {
	nnz := len(lp.aValue)
	capacity := int(math.Ceil(cfg.allocRatio*float64(nnz))) + 1
	maxCap := int(math.Ceil(cfg.maxAllocRatio*float64(nnz))) + 1

	rStart, rIndex, rValue := transpose(lp.numRow, lp.numCol, lp.aStart, lp.aIndex, lp.aValue)

	pm := &presolveMatrix{
		cfg:           cfg,
		log:           cfg.logger,
		nrows:         lp.numRow,
		ncols:         lp.numCol,
		cols:          newMajorStore("column", lp.numCol, lp.aStart, lp.aIndex, lp.aValue, capacity, maxCap),
		rows:          newMajorStore("row", lp.numRow, rStart, rIndex, rValue, capacity, maxCap),
		cost:          lp.colCost,
		clo:           lp.colLower,
		cup:           lp.colUpper,
		rlo:           lp.rowLower,
		rup:           lp.rowUpper,
		integer:       make([]bool, lp.numCol),
		types:         make([]VariableType, lp.numCol),
		offset:        lp.offset,
		rowGone:       make([]bool, lp.numRow),
		colGone:       make([]bool, lp.numCol),
		rowProhibited: make([]bool, lp.numRow),
		colProhibited: make([]bool, lp.numCol),
		stats:         newStats(),
		peakNNZ:       nnz,
	}
	for j, vt := range lp.varTypes {
		pm.types[j] = vt
		if vt.semi() {
			pm.colProhibited[j] = true
		}
		if cfg.integrality && vt.integral() {
			pm.integer[j] = true
		}
	}
	for _, i := range cfg.prohibitedRows {
		if i >= 0 && i < pm.nrows {
			pm.rowProhibited[i] = true
		}
	}
	for _, j := range cfg.prohibitedCols {
		if j >= 0 && j < pm.ncols {
			pm.colProhibited[j] = true
		}
	}
	for _, p := range pm.rowProhibited {
		pm.anyProhibited = pm.anyProhibited || p
	}
	for _, p := range pm.colProhibited {
		pm.anyProhibited = pm.anyProhibited || p
	}
	pm.work = newWorklist(pm.nrows, pm.ncols, pm.rowProhibited, pm.colProhibited)
	return pm
}

// transpose converts compressed column storage into compressed row storage.
func transpose(numRow, numCol int, start, index []int, value []float64) ([]int, []int, []float64) {
	nnz := 0
	if numCol > 0 {
		nnz = start[numCol]
	}
	rStart := make([]int, numRow+1)
	for p := 0; p < nnz; p++ {
		rStart[index[p]+1]++
	}
	for i := 0; i < numRow; i++ {
		rStart[i+1] += rStart[i]
	}
	fill := make([]int, numRow)
	copy(fill, rStart[:numRow])
	rIndex := make([]int, nnz)
	rValue := make([]float64, nnz)
	for j := 0; j < numCol; j++ {
		for p := start[j]; p < start[j+1]; p++ {
			i := index[p]
			rIndex[fill[i]] = j
			rValue[fill[i]] = value[p]
			fill[i]++
		}
	}
	return rStart, rIndex, rValue
}

func (pm *presolveMatrix) nnz() int { return pm.cols.nnz }

func (pm *presolveMatrix) rowLen(i int) int { return pm.rows.length[i] }

func (pm *presolveMatrix) colLen(j int) int { return pm.cols.length[j] }

// rowEntries returns copies of the column indices and values of row i.
func (pm *presolveMatrix) rowEntries(i int) ([]int, []float64) {
	idx, val := pm.rows.entries(i)
	return append([]int(nil), idx...), append([]float64(nil), val...)
}

// colEntries returns copies of the row indices and values of column j.
func (pm *presolveMatrix) colEntries(j int) ([]int, []float64) {
	idx, val := pm.cols.entries(j)
	return append([]int(nil), idx...), append([]float64(nil), val...)
}

// coef returns a_ij and whether it is stored.
func (pm *presolveMatrix) coef(i, j int) (float64, bool) {
	if pm.rows.length[i] < pm.cols.length[j] {
		if p := pm.rows.find(i, j); p >= 0 {
			return pm.rows.value[p], true
		}
		return 0, false
	}
	if p := pm.cols.find(j, i); p >= 0 {
		return pm.cols.value[p], true
	}
	return 0, false
}

// removeEntry deletes a_ij from both views.
func (pm *presolveMatrix) removeEntry(i, j int) {
	okc := pm.cols.remove(j, i)
	okr := pm.rows.remove(i, j)
	if okc != okr {
		inconsistent("removeEntry", "a(%d,%d) present in only one view", i, j)
	}
}

// setEntry stores a_ij = v in both views, inserting it when absent.
func (pm *presolveMatrix) setEntry(i, j int, v float64) error {
	pc := pm.cols.find(j, i)
	pr := pm.rows.find(i, j)
	if (pc < 0) != (pr < 0) {
		inconsistent("setEntry", "a(%d,%d) present in only one view", i, j)
	}
	if pc >= 0 {
		pm.cols.value[pc] = v
		pm.rows.value[pr] = v
		return nil
	}
	if err := pm.cols.appendEntry(j, i, v); err != nil {
		return err
	}
	if err := pm.rows.appendEntry(i, j, v); err != nil {
		pm.cols.remove(j, i)
		return err
	}
	if n := pm.nnz(); n > pm.peakNNZ {
		pm.peakNNZ = n
	}
	return nil
}

// removeRow deletes every entry of row i from both views.
func (pm *presolveMatrix) removeRow(i int) {
	idx, _ := pm.rows.entries(i)
	for _, j := range idx {
		if !pm.cols.remove(j, i) {
			inconsistent("removeRow", "a(%d,%d) missing from column view", i, j)
		}
	}
	pm.rows.clear(i)
}

// removeColumn deletes every entry of column j from both views.
func (pm *presolveMatrix) removeColumn(j int) {
	idx, _ := pm.cols.entries(j)
	for _, i := range idx {
		if !pm.rows.remove(i, j) {
			inconsistent("removeColumn", "a(%d,%d) missing from row view", i, j)
		}
	}
	pm.cols.clear(j)
}

// reserve makes sure extra entries can be inserted into either view without
// running out of space midway through a reduction.
func (pm *presolveMatrix) reserve(extra int) error {
	if extra <= 0 {
		return nil
	}
	for _, s := range []*majorStore{pm.cols, pm.rows} {
		free := len(s.minor) - s.nnz
		if free >= 4*extra+64 {
			continue
		}
		longest := 0
		for _, l := range s.length {
			if l > longest {
				longest = l
			}
		}
		need := s.nnz + 2*extra + longest + 1
		if len(s.minor) >= need {
			continue
		}
		s.compact()
		if !s.grow(need) || len(s.minor) < need {
			return ErrOutOfSpace
		}
	}
	return nil
}

// markRow schedules row i and every column in it for the next round.
func (pm *presolveMatrix) markRow(i int) {
	pm.work.addRow(i)
	idx, _ := pm.rows.entries(i)
	for _, j := range idx {
		pm.work.addCol(j)
	}
}

// markCol schedules column j and every row it touches for the next round.
func (pm *presolveMatrix) markCol(j int) {
	pm.work.addCol(j)
	idx, _ := pm.cols.entries(j)
	for _, i := range idx {
		pm.work.addRow(i)
	}
}

// push prepends a to the undo chain.
func (pm *presolveMatrix) push(a action) {
	a.setNext(pm.chain)
	pm.chain = a
	pm.stats.applied(a.kind())
	if pm.log.enable(LogTrace) {
		pm.log.log("presolve: %s\n", a)
	}
}

func (pm *presolveMatrix) isFixed(j int) bool {
	return pm.cup[j]-pm.clo[j] <= pm.cfg.tol
}

func (pm *presolveMatrix) isEquality(i int) bool {
	return !isInf(pm.rlo[i]) && pm.rup[i]-pm.rlo[i] <= pm.cfg.tol
}

// rowTouchesProhibited reports whether row i or any column in it is
// excluded from reductions.
func (pm *presolveMatrix) rowTouchesProhibited(i int) bool {
	if pm.rowProhibited[i] {
		return true
	}
	if !pm.anyProhibited {
		return false
	}
	idx, _ := pm.rows.entries(i)
	for _, j := range idx {
		if pm.colProhibited[j] {
			return true
		}
	}
	return false
}

// colTouchesProhibited reports whether column j or any row it meets is
// excluded from reductions.
func (pm *presolveMatrix) colTouchesProhibited(j int) bool {
	if pm.colProhibited[j] {
		return true
	}
	if !pm.anyProhibited {
		return false
	}
	idx, _ := pm.cols.entries(j)
	for _, i := range idx {
		if pm.rowProhibited[i] {
			return true
		}
	}
	return false
}

// activity summarizes the range of a row's activity over the column box.
// Infinite contributions are counted separately so that the finite part can
// be reused when one column is left out.
type activity struct {
	min, max         float64
	ninfMin, ninfMax int
}

func (a activity) lo() float64 {
	if a.ninfMin > 0 {
		return math.Inf(-1)
	}
	return a.min
}

func (a activity) hi() float64 {
	if a.ninfMax > 0 {
		return math.Inf(1)
	}
	return a.max
}

// rowActivity computes the implied activity range of row i.
func (pm *presolveMatrix) rowActivity(i int) activity {
	var act activity
	idx, val := pm.rows.entries(i)
	for k, j := range idx {
		a := val[k]
		lo, up := pm.clo[j], pm.cup[j]
		if a < 0 {
			lo, up = up, lo
		}
		if isInf(lo) {
			act.ninfMin++
		} else {
			act.min += a * lo
		}
		if isInf(up) {
			act.ninfMax++
		} else {
			act.max += a * up
		}
	}
	return act
}

// impliedBounds returns the bounds on x_j implied by row i with every other
// column held within its box. act must be rowActivity(i) and a = a_ij.
func (pm *presolveMatrix) impliedBounds(i, j int, a float64, act activity) (lo, up float64) {
	clo, cup := pm.clo[j], pm.cup[j]
	cmin, cmax := clo, cup
	if a < 0 {
		cmin, cmax = cup, clo
	}
	// activity of the other columns
	othersMin, othersMax := math.Inf(-1), math.Inf(1)
	switch {
	case act.ninfMin == 0:
		othersMin = act.min - a*cmin
	case act.ninfMin == 1 && isInf(cmin):
		othersMin = act.min
	}
	switch {
	case act.ninfMax == 0:
		othersMax = act.max - a*cmax
	case act.ninfMax == 1 && isInf(cmax):
		othersMax = act.max
	}
	// a*x_j in [rlo - othersMax, rup - othersMin]
	axlo := math.Inf(-1)
	if !isInf(pm.rlo[i]) && !isInf(othersMax) {
		axlo = pm.rlo[i] - othersMax
	}
	axup := math.Inf(1)
	if !isInf(pm.rup[i]) && !isInf(othersMin) {
		axup = pm.rup[i] - othersMin
	}
	if a > 0 {
		return scaled(1/a, axlo), scaled(1/a, axup)
	}
	return scaled(1/a, axup), scaled(1/a, axlo)
}

// checkConsistency verifies both views describe the same matrix. It panics
// on any mismatch.
func (pm *presolveMatrix) checkConsistency(where string) {
	pm.cols.check()
	pm.rows.check()
	if pm.cols.nnz != pm.rows.nnz {
		inconsistent(where, "column view has %d nonzeros, row view %d", pm.cols.nnz, pm.rows.nnz)
	}
	for j := 0; j < pm.ncols; j++ {
		idx, val := pm.cols.entries(j)
		for k, i := range idx {
			p := pm.rows.find(i, j)
			if p < 0 || pm.rows.value[p] != val[k] {
				inconsistent(where, "a(%d,%d) differs between views", i, j)
			}
		}
		if math.IsNaN(pm.clo[j]) || math.IsNaN(pm.cup[j]) || math.IsNaN(pm.cost[j]) {
			inconsistent(where, "column %d has NaN data", j)
		}
	}
	for i := 0; i < pm.nrows; i++ {
		if math.IsNaN(pm.rlo[i]) || math.IsNaN(pm.rup[i]) {
			inconsistent(where, "row %d has NaN bounds", i)
		}
	}
}

// debugCheck runs the consistency checks the configured debug level asks for.
func (pm *presolveMatrix) debugCheck(where string) {
	switch pm.cfg.debug {
	case DebugCheap:
		if pm.cols.nnz != pm.rows.nnz {
			inconsistent(where, "column view has %d nonzeros, row view %d", pm.cols.nnz, pm.rows.nnz)
		}
	case DebugFull:
		pm.checkConsistency(where)
	}
}

// renumber physically removes rows and columns whose keep flag is false.
// Removed vectors must already be empty. Both views are rebuilt in index
// order and the worklist is reset.
func (pm *presolveMatrix) renumber(keepRow, keepCol []bool) {
	rowMap := make([]int, pm.nrows)
	nr := 0
	for i := range rowMap {
		rowMap[i] = -1
		if keepRow[i] {
			rowMap[i] = nr
			nr++
		}
	}
	colMap := make([]int, pm.ncols)
	nc := 0
	for j := range colMap {
		colMap[j] = -1
		if keepCol[j] {
			colMap[j] = nc
			nc++
		}
	}

	start := make([]int, nc+1)
	index := make([]int, 0, pm.nnz())
	value := make([]float64, 0, pm.nnz())
	for j := 0; j < pm.ncols; j++ {
		if colMap[j] < 0 {
			if pm.cols.length[j] != 0 {
				inconsistent("renumber", "dropping non-empty column %d", j)
			}
			continue
		}
		idx, val := pm.cols.entries(j)
		for k, i := range idx {
			if rowMap[i] < 0 {
				inconsistent("renumber", "dropping non-empty row %d", i)
			}
			index = append(index, rowMap[i])
			value = append(value, val[k])
		}
		start[colMap[j]+1] = len(index)
	}
	rStart, rIndex, rValue := transpose(nr, nc, start, index, value)

	capacity := len(pm.cols.minor)
	maxCap := pm.cols.maxCap
	pm.cols = newMajorStore("column", nc, start, index, value, capacity, maxCap)
	pm.rows = newMajorStore("row", nr, rStart, rIndex, rValue, capacity, maxCap)

	pm.cost = compact(pm.cost, colMap)
	pm.clo = compact(pm.clo, colMap)
	pm.cup = compact(pm.cup, colMap)
	pm.integer = compact(pm.integer, colMap)
	pm.types = compact(pm.types, colMap)
	pm.colGone = compact(pm.colGone, colMap)
	pm.colProhibited = compact(pm.colProhibited, colMap)
	pm.rlo = compact(pm.rlo, rowMap)
	pm.rup = compact(pm.rup, rowMap)
	pm.rowGone = compact(pm.rowGone, rowMap)
	pm.rowProhibited = compact(pm.rowProhibited, rowMap)
	pm.nrows, pm.ncols = nr, nc
	pm.work = newWorklist(nr, nc, pm.rowProhibited, pm.colProhibited)
}

// compact keeps the entries whose map slot is non-negative, in place.
func compact[T any](v []T, m []int) []T {
	out := v[:0]
	for k, x := range v {
		if m[k] >= 0 {
			out = append(out, x)
		}
	}
	return out
}
