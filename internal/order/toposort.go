package order

import (
	"container/heap"
)

// indexHeap is a min-heap of node indices
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoSort orders the graph with Kahn's algorithm. Among the nodes that are ready,
// the one with the smallest input index always goes first, so the same input gives
// the same order. When nodes remain, one cycle among them is returned as an error.
func topoSort(g *graph) ([]int, error) {
	n := g.size()
	inDegree := make([]int, n)
	for _, outs := range g.out {
		for _, v := range outs {
			inDegree[v]++
		}
	}

	ready := &indexHeap{}
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	order := make([]int, 0, n)
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		order = append(order, u)
		for _, v := range g.out[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}

	if len(order) == n {
		return order, nil
	}

	remaining := make([]bool, n)
	for i, d := range inDegree {
		remaining[i] = d > 0
	}
	cycle := findCycle(g, remaining)
	if len(cycle) == 0 {
		return nil, unexpected("%d changes could not be ordered but no cycle was found", n-len(order))
	}
	return nil, newCycleError(g, cycle)
}

// findCycle runs a depth-first search over the remaining nodes and returns the
// first loop it closes, in walking order.
func findCycle(g *graph, remaining []bool) []int {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]int, len(remaining))
	var stack []int

	var visit func(u int) []int
	visit = func(u int) []int {
		state[u] = onStack
		stack = append(stack, u)
		for _, v := range g.out[u] {
			if !remaining[v] {
				continue
			}
			switch state[v] {
			case onStack:
				for i, w := range stack {
					if w == v {
						return append([]int(nil), stack[i:]...)
					}
				}
			case unvisited:
				if cycle := visit(v); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[u] = done
		return nil
	}

	for u := range remaining {
		if remaining[u] && state[u] == unvisited {
			if cycle := visit(u); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func newCycleError(g *graph, cycle []int) *CycleError {
	err := &CycleError{
		Cycle:   make([]string, len(cycle)),
		Indices: cycle,
		Edges:   make([]CycleEdge, len(cycle)),
	}
	for i, u := range cycle {
		v := cycle[(i+1)%len(cycle)]
		err.Cycle[i] = g.keys[u]
		c, _ := g.edge(u, v)
		err.Edges[i] = CycleEdge{From: g.keys[u], To: g.keys[v], Category: c.Category, Reason: c.Reason}
	}
	return err
}
