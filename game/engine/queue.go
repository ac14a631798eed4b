package engine

import "github.com/wricardo/mcp-training/tactics/game/grid"

type queueEntry struct {
	vector grid.Vector
	parent grid.Vector
	cost   float64
	seq    uint32
}

// frontier is a binary min-heap ordered by cost, then insertion sequence.
// Entries are stored by value so pushes do not allocate once the backing
// slice has grown.
type frontier struct {
	entries []queueEntry
	seq     uint32
}

func newFrontier(capacity int) *frontier {
	return &frontier{entries: make([]queueEntry, 0, capacity)}
}

func (f *frontier) Len() int {
	return len(f.entries)
}

func (f *frontier) less(i, j int) bool {
	a, b := &f.entries[i], &f.entries[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.seq < b.seq
}

func (f *frontier) Push(v, parent grid.Vector, cost float64) {
	f.entries = append(f.entries, queueEntry{vector: v, parent: parent, cost: cost, seq: f.seq})
	f.seq++
	i := len(f.entries) - 1
	for i > 0 {
		p := (i - 1) / 2
		if !f.less(i, p) {
			break
		}
		f.entries[i], f.entries[p] = f.entries[p], f.entries[i]
		i = p
	}
}

func (f *frontier) Pop() queueEntry {
	top := f.entries[0]
	last := len(f.entries) - 1
	f.entries[0] = f.entries[last]
	f.entries = f.entries[:last]

	i := 0
	n := len(f.entries)
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		smallest := l
		if r := l + 1; r < n && f.less(r, l) {
			smallest = r
		}
		if !f.less(smallest, i) {
			break
		}
		f.entries[i], f.entries[smallest] = f.entries[smallest], f.entries[i]
		i = smallest
	}
	return top
}
