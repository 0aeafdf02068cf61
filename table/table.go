package table

import (
	"container/heap"
	"errors"
	"sort"
)

// Reserved is the id every pool keeps active. It stands for "draw a new
// table" or "draw a new dish" and is never handed out or released.
const Reserved = uint32(0)

var (
	ErrReserved = errors.New("table: id 0 is reserved")
	ErrInUse    = errors.New("table: id already active")
	ErrNotInUse = errors.New("table: id not active")
)

// Pool hands out dense ids for tables of one document or for the global
// dishes. The next id is always the lowest positive integer that is not
// active, so freed ids are recycled before the pool grows.
type Pool struct {
	// active ids in ascending order, Reserved first
	active []uint32
	// released ids below next
	free freeHeap
	// every id >= next has never been handed out
	next uint32
}

func NewPool() *Pool {
	return &Pool{
		active: []uint32{Reserved},
		next:   1,
	}
}

// Alloc activates and returns the lowest unused positive id.
func (p *Pool) Alloc() uint32 {
	var id uint32
	if p.free.Len() > 0 {
		id = heap.Pop(&p.free).(uint32)
	} else {
		id = p.next
		p.next += 1
	}
	p.insert(id)
	return id
}

// Claim activates a specific id, used when rebuilding a state from
// explicit assignments.
func (p *Pool) Claim(id uint32) error {
	if id == Reserved {
		return ErrReserved
	}
	if p.Contains(id) {
		return ErrInUse
	}
	if id >= p.next {
		for fid := p.next; fid < id; fid += 1 {
			heap.Push(&p.free, fid)
		}
		p.next = id + 1
	} else {
		for i, fid := range p.free {
			if fid == id {
				heap.Remove(&p.free, i)
				break
			}
		}
	}
	p.insert(id)
	return nil
}

// Release deactivates id so that it can be handed out again.
func (p *Pool) Release(id uint32) error {
	if id == Reserved {
		return ErrReserved
	}
	idx := p.search(id)
	if idx >= len(p.active) || p.active[idx] != id {
		return ErrNotInUse
	}
	p.active = append(p.active[:idx], p.active[idx+1:]...)
	heap.Push(&p.free, id)
	return nil
}

func (p *Pool) Contains(id uint32) bool {
	idx := p.search(id)
	return idx < len(p.active) && p.active[idx] == id
}

// Active returns a copy of the active ids in ascending order, Reserved first.
func (p *Pool) Active() []uint32 {
	ids := make([]uint32, len(p.active))
	copy(ids, p.active)
	return ids
}

// number of active ids, Reserved included
func (p *Pool) Len() int {
	return len(p.active)
}

// Cap is one past the largest id ever handed out; backing arrays indexed
// by id need at least this length.
func (p *Pool) Cap() uint32 {
	return p.next
}

func (p *Pool) search(id uint32) int {
	return sort.Search(len(p.active), func(i int) bool { return p.active[i] >= id })
}

func (p *Pool) insert(id uint32) {
	idx := p.search(id)
	p.active = append(p.active, 0)
	copy(p.active[idx+1:], p.active[idx:])
	p.active[idx] = id
}

// min-heap of released ids
type freeHeap []uint32

func (h freeHeap) Len() int           { return len(h) }
func (h freeHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h freeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *freeHeap) Push(x any) {
	*h = append(*h, x.(uint32))
}

func (h *freeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
