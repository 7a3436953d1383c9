package simplify

import (
	"container/heap"

	"github.com/binzume/meshproc/surface"
)

// vertexQueue is a min-heap of vertices keyed by "v:prio". Each vertex stores its heap
// index in "v:heap" so it can be updated or removed in place.
type vertexQueue struct {
	items []surface.Vertex
	prio  *surface.Property[surface.Vertex, float64]
	pos   *surface.Property[surface.Vertex, int]
}

func newVertexQueue(prio *surface.Property[surface.Vertex, float64], pos *surface.Property[surface.Vertex, int], capacity int) *vertexQueue {
	return &vertexQueue{items: make([]surface.Vertex, 0, capacity), prio: prio, pos: pos}
}

// heap.Interface

func (q *vertexQueue) Len() int { return len(q.items) }

func (q *vertexQueue) Less(i, j int) bool {
	return q.prio.Get(q.items[i]) < q.prio.Get(q.items[j])
}

func (q *vertexQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.pos.Set(q.items[i], i)
	q.pos.Set(q.items[j], j)
}

func (q *vertexQueue) Push(x any) {
	v := x.(surface.Vertex)
	q.pos.Set(v, len(q.items))
	q.items = append(q.items, v)
}

func (q *vertexQueue) Pop() any {
	n := len(q.items) - 1
	v := q.items[n]
	q.items = q.items[:n]
	q.pos.Set(v, -1)
	return v
}

func (q *vertexQueue) empty() bool { return len(q.items) == 0 }

func (q *vertexQueue) resetPosition(v surface.Vertex) { q.pos.Set(v, -1) }

func (q *vertexQueue) isStored(v surface.Vertex) bool { return q.pos.Get(v) != -1 }

func (q *vertexQueue) insert(v surface.Vertex) { heap.Push(q, v) }

func (q *vertexQueue) update(v surface.Vertex) { heap.Fix(q, q.pos.Get(v)) }

func (q *vertexQueue) remove(v surface.Vertex) { heap.Remove(q, q.pos.Get(v)) }

func (q *vertexQueue) popFront() surface.Vertex { return heap.Pop(q).(surface.Vertex) }
