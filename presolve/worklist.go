package presolve

// worklist tracks which rows and columns reductions should look at. Changes
// made during a round are queued for the next round; advance swaps them in.
type worklist struct {
	rowsToDo, colsToDo           []int
	nextRows, nextCols           []int
	rowChanged, colChanged       []bool
	rowProhibited, colProhibited []bool
}

func newWorklist(nrows, ncols int, rowProhibited, colProhibited []bool) *worklist {
	w := &worklist{
		rowChanged:    make([]bool, nrows),
		colChanged:    make([]bool, ncols),
		rowProhibited: rowProhibited,
		colProhibited: colProhibited,
	}
	w.initAll()
	return w
}

// initAll puts every permitted row and column on the current frontier.
func (w *worklist) initAll() {
	w.rowsToDo = w.rowsToDo[:0]
	for i := range w.rowChanged {
		w.rowChanged[i] = false
		if !w.rowProhibited[i] {
			w.rowsToDo = append(w.rowsToDo, i)
		}
	}
	w.colsToDo = w.colsToDo[:0]
	for j := range w.colChanged {
		w.colChanged[j] = false
		if !w.colProhibited[j] {
			w.colsToDo = append(w.colsToDo, j)
		}
	}
	w.nextRows = w.nextRows[:0]
	w.nextCols = w.nextCols[:0]
}

// addRow queues row i for the next round unless it is already queued or
// prohibited.
func (w *worklist) addRow(i int) {
	if w.rowChanged[i] || w.rowProhibited[i] {
		return
	}
	w.rowChanged[i] = true
	w.nextRows = append(w.nextRows, i)
}

// addCol queues column j for the next round unless it is already queued or
// prohibited.
func (w *worklist) addCol(j int) {
	if w.colChanged[j] || w.colProhibited[j] {
		return
	}
	w.colChanged[j] = true
	w.nextCols = append(w.nextCols, j)
}

// advance makes the queued rows and columns the current frontier.
func (w *worklist) advance() {
	w.rowsToDo, w.nextRows = w.nextRows, w.rowsToDo[:0]
	w.colsToDo, w.nextCols = w.nextCols, w.colsToDo[:0]
	for _, i := range w.rowsToDo {
		w.rowChanged[i] = false
	}
	for _, j := range w.colsToDo {
		w.colChanged[j] = false
	}
}

// rows returns a snapshot of the current row frontier.
func (w *worklist) rows() []int {
	return append([]int(nil), w.rowsToDo...)
}

// cols returns a snapshot of the current column frontier.
func (w *worklist) cols() []int {
	return append([]int(nil), w.colsToDo...)
}

func (w *worklist) empty() bool {
	return len(w.rowsToDo) == 0 && len(w.colsToDo) == 0
}
