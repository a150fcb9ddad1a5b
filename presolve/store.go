package presolve

import "fmt"

// majorStore holds one orientation of a sparse matrix: column-major when the
// majors are columns, row-major when they are rows. Every major vector owns
// a contiguous segment of the shared minor and value arrays. Segments are
// chained in storage order so a vector can use the spare room up to the
// start of its successor; the last segment extends to the end of the arena.
//
// Slices returned by entries alias the arena and are invalidated by any
// call that may move segments (ensureRoom, appendEntry, compact).
type majorStore struct {
	name   string
	start  []int
	length []int
	minor  []int
	value  []float64

	// storage-order links; -1 terminates
	prev, next []int
	head, tail int

	nnz         int
	maxCap      int
	compactions int
	grows       int
}

// newMajorStore lays the n majors out back to back in index order using
// compressed start offsets (n+1 entries). The arena has room for capacity
// entries and may grow up to maxCap.
func newMajorStore(name string, n int, start, index []int, value []float64, capacity, maxCap int) *majorStore {
	nnz := 0
	if n > 0 {
		nnz = start[n]
	}
	if capacity < nnz {
		capacity = nnz
	}
	if maxCap < capacity {
		maxCap = capacity
	}
	s := &majorStore{
		name:   name,
		start:  make([]int, n),
		length: make([]int, n),
		minor:  make([]int, capacity),
		value:  make([]float64, capacity),
		prev:   make([]int, n),
		next:   make([]int, n),
		head:   -1,
		tail:   -1,
		nnz:    nnz,
		maxCap: maxCap,
	}
	copy(s.minor, index[:nnz])
	copy(s.value, value[:nnz])
	for k := 0; k < n; k++ {
		s.start[k] = start[k]
		s.length[k] = start[k+1] - start[k]
		s.prev[k] = k - 1
		s.next[k] = k + 1
	}
	if n > 0 {
		s.next[n-1] = -1
		s.head, s.tail = 0, n-1
	}
	return s
}

func (s *majorStore) size() int { return len(s.start) }

// capacity returns the number of slots segment k may fill without moving.
func (s *majorStore) capacity(k int) int {
	if nx := s.next[k]; nx >= 0 {
		return s.start[nx] - s.start[k]
	}
	return len(s.minor) - s.start[k]
}

// end returns the first arena slot after the last segment's entries.
func (s *majorStore) end() int {
	if s.tail < 0 {
		return 0
	}
	return s.start[s.tail] + s.length[s.tail]
}

// entries returns views of the minor indices and values of major k.
func (s *majorStore) entries(k int) ([]int, []float64) {
	b, e := s.start[k], s.start[k]+s.length[k]
	return s.minor[b:e:e], s.value[b:e:e]
}

// find returns the arena position of minor m in major k, or -1.
func (s *majorStore) find(k, m int) int {
	b, e := s.start[k], s.start[k]+s.length[k]
	for p := b; p < e; p++ {
		if s.minor[p] == m {
			return p
		}
	}
	return -1
}

// removeAt deletes the entry at arena position p of major k by moving the
// segment's last entry into its place.
func (s *majorStore) removeAt(k, p int) {
	last := s.start[k] + s.length[k] - 1
	s.minor[p] = s.minor[last]
	s.value[p] = s.value[last]
	s.length[k]--
	s.nnz--
}

// remove deletes minor m from major k and reports whether it was present.
func (s *majorStore) remove(k, m int) bool {
	p := s.find(k, m)
	if p < 0 {
		return false
	}
	s.removeAt(k, p)
	return true
}

// clear drops every entry of major k.
func (s *majorStore) clear(k int) {
	s.nnz -= s.length[k]
	s.length[k] = 0
}

// appendEntry adds (m, v) to major k. The caller guarantees m is absent.
func (s *majorStore) appendEntry(k, m int, v float64) error {
	if err := s.ensureRoom(k, 1); err != nil {
		return err
	}
	p := s.start[k] + s.length[k]
	s.minor[p] = m
	s.value[p] = v
	s.length[k]++
	s.nnz++
	return nil
}

// ensureRoom makes room for extra more entries in major k, relocating the
// segment to the end of the arena, compacting, or growing as needed.
func (s *majorStore) ensureRoom(k, extra int) error {
	if s.capacity(k)-s.length[k] >= extra {
		return nil
	}
	// Leave some headroom so a growing vector does not move on every insert.
	need := s.length[k] + extra + extra + s.length[k]/4
	for attempt := 0; ; attempt++ {
		if k == s.tail {
			if len(s.minor)-s.start[k] >= s.length[k]+extra {
				return nil
			}
		} else if len(s.minor)-s.end() >= need {
			s.moveToEnd(k)
			return nil
		}
		switch attempt {
		case 0:
			if s.compactions >= compactionLimit {
				if s.grow(len(s.minor) + len(s.minor)/2 + need) {
					continue
				}
			}
			s.compact()
		case 1:
			if !s.grow(len(s.minor) + need) {
				// Growing failed; a tight fit without headroom is still fine.
				if k != s.tail && len(s.minor)-s.end() >= s.length[k]+extra {
					s.moveToEnd(k)
					return nil
				}
				return fmt.Errorf("%w: %s store needs %d slots, limit is %d",
					ErrOutOfSpace, s.name, s.nnz+extra, s.maxCap)
			}
		default:
			if k != s.tail && len(s.minor)-s.end() >= s.length[k]+extra {
				s.moveToEnd(k)
				return nil
			}
			return fmt.Errorf("%w: %s store exhausted", ErrOutOfSpace, s.name)
		}
	}
}

// moveToEnd relocates segment k behind the current last segment.
func (s *majorStore) moveToEnd(k int) {
	if k == s.tail {
		return
	}
	dst := s.end()
	src := s.start[k]
	copy(s.minor[dst:dst+s.length[k]], s.minor[src:src+s.length[k]])
	copy(s.value[dst:dst+s.length[k]], s.value[src:src+s.length[k]])
	s.start[k] = dst

	// unlink
	if p := s.prev[k]; p >= 0 {
		s.next[p] = s.next[k]
	} else {
		s.head = s.next[k]
	}
	s.prev[s.next[k]] = s.prev[k]

	// append
	s.prev[k] = s.tail
	s.next[k] = -1
	s.next[s.tail] = k
	s.tail = k
}

// compact packs all segments to the front of the arena in storage order,
// leaving every free slot at the end.
func (s *majorStore) compact() {
	pos := 0
	for k := s.head; k >= 0; k = s.next[k] {
		if s.start[k] != pos {
			copy(s.minor[pos:pos+s.length[k]], s.minor[s.start[k]:s.start[k]+s.length[k]])
			copy(s.value[pos:pos+s.length[k]], s.value[s.start[k]:s.start[k]+s.length[k]])
			s.start[k] = pos
		}
		pos += s.length[k]
	}
	s.compactions++
}

// grow enlarges the arena to n slots, capped at maxCap. It reports whether
// the arena actually got larger.
func (s *majorStore) grow(n int) bool {
	if n > s.maxCap {
		n = s.maxCap
	}
	if n <= len(s.minor) {
		return false
	}
	minor := make([]int, n)
	value := make([]float64, n)
	copy(minor, s.minor)
	copy(value, s.value)
	s.minor, s.value = minor, value
	s.compactions = 0
	s.grows++
	return true
}

// check verifies segment layout. It panics on corruption.
func (s *majorStore) check() {
	seen := 0
	last := -1
	end := 0
	count := 0
	for k := s.head; k >= 0; k = s.next[k] {
		if s.prev[k] != last {
			inconsistent(s.name, "broken storage links at %d", k)
		}
		if s.start[k] < end {
			inconsistent(s.name, "segment %d overlaps its predecessor", k)
		}
		end = s.start[k] + s.length[k]
		if end > len(s.minor) {
			inconsistent(s.name, "segment %d runs past the arena", k)
		}
		count += s.length[k]
		last = k
		seen++
		if seen > len(s.start) {
			inconsistent(s.name, "storage order has a cycle")
		}
	}
	if seen != len(s.start) || last != s.tail {
		inconsistent(s.name, "storage order covers %d of %d vectors", seen, len(s.start))
	}
	if count != s.nnz {
		inconsistent(s.name, "nonzero count %d, segments hold %d", s.nnz, count)
	}
}
