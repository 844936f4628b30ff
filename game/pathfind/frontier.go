package pathfind

import (
	"sort"

	"github.com/zyedidia/generic/heap"
)

// frontierEntry is one queued position. seq is the position's insertion
// order into the frontier; estimate is the estimated total cost at the time
// the entry was pushed.
type frontierEntry struct {
	pos      Position
	estimate int
	seq      uint64
}

// frontier is the set of positions pending expansion, ordered by lowest
// estimate and, among equal estimates, latest insertion.
//
// Updating the estimate of a queued position pushes a second entry; stale
// entries are discarded on pop.
type frontier struct {
	entries *heap.Heap[frontierEntry]
	queued  map[Position]uint64
	nextSeq uint64
}

func newFrontier() *frontier {
	return &frontier{
		entries: heap.New[frontierEntry](func(a, b frontierEntry) bool {
			if a.estimate != b.estimate {
				return a.estimate < b.estimate
			}
			return a.seq > b.seq
		}),
		queued: make(map[Position]uint64),
	}
}

// push queues p with the given estimate. A position already queued keeps its
// original insertion order.
func (f *frontier) push(p Position, estimate int) {
	seq, ok := f.queued[p]
	if !ok {
		f.nextSeq++
		seq = f.nextSeq
		f.queued[p] = seq
	}
	f.entries.Push(frontierEntry{pos: p, estimate: estimate, seq: seq})
}

// pop removes and returns the best queued position. current reports the
// latest estimate recorded for a position and is used to skip stale entries.
func (f *frontier) pop(current func(Position) int) (Position, bool) {
	for {
		e, ok := f.entries.Pop()
		if !ok {
			return Position{}, false
		}
		seq, queued := f.queued[e.pos]
		if !queued || seq != e.seq || current(e.pos) != e.estimate {
			continue
		}
		delete(f.queued, e.pos)
		return e.pos, true
	}
}

// positions returns the queued positions in insertion order.
func (f *frontier) positions() []Position {
	out := make([]Position, 0, len(f.queued))
	for p := range f.queued {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return f.queued[out[i]] < f.queued[out[j]]
	})
	return out
}
