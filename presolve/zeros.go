package presolve

import (
	"fmt"
	"math"
)

// dropZerosAction records coefficients too small to keep.
type dropZerosAction struct {
	link
	entries []Nonzero
}

func (a *dropZerosAction) kind() ActionKind { return KindDropZeros }

func (a *dropZerosAction) String() string {
	return fmt.Sprintf("drop %d zero coefficients", len(a.entries))
}

func (a *dropZerosAction) postsolve(p *postsolveMatrix) {
	for _, e := range a.entries {
		p.insert(e.Col, e.Row, e.Val)
		p.acts[e.Row] += e.Val * p.x[e.Col]
		p.d[e.Col] -= e.Val * p.y[e.Row]
	}
}

// dropZeros deletes every coefficient whose magnitude is below the zero
// tolerance. Prohibited rows and columns keep theirs.
func dropZeros(pm *presolveMatrix) {
	a := &dropZerosAction{}
	for j := 0; j < pm.ncols; j++ {
		if pm.colProhibited[j] {
			continue
		}
		rows, vals := pm.cols.entries(j)
		for k, i := range rows {
			if math.Abs(vals[k]) < zeroTolerance && !pm.rowProhibited[i] {
				a.entries = append(a.entries, Nonzero{Row: i, Col: j, Val: vals[k]})
			}
		}
	}
	if len(a.entries) == 0 {
		return
	}
	for _, e := range a.entries {
		pm.removeEntry(e.Row, e.Col)
		pm.markRow(e.Row)
		pm.markCol(e.Col)
	}
	pm.push(a)
}
