// README: Directed weighted location graph with Dijkstra shortest paths.
package graph

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrDuplicateNode = errors.New("node id already registered")
	ErrUnknownNode   = errors.New("unknown node id")
	ErrInvalidWeight = errors.New("edge weight and time must be non-negative")
)

type Node struct {
	ID   int
	Name string
}

type edge struct {
	to     int
	weight float64
	time   float64
}

// Network is a directed weighted graph of named locations. It is built once at
// startup and is read-only afterwards; ShortestPath never mutates it, so
// concurrent queries need no locking.
type Network struct {
	nodes map[int]Node
	adj   map[int][]edge
	order []int // node ids in registration order
}

func NewNetwork() *Network {
	return &Network{
		nodes: make(map[int]Node),
		adj:   make(map[int][]edge),
	}
}

func (g *Network) AddNode(id int, name string) error {
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, id)
	}
	g.nodes[id] = Node{ID: id, Name: name}
	g.order = append(g.order, id)
	return nil
}

// AddEdge registers a directed edge. Weight is a generalized cost, time is
// travel minutes. Inserting the same (from, to) pair twice replaces the
// earlier edge.
func (g *Network) AddEdge(from, to int, weight, time float64) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	if weight < 0 || time < 0 {
		return fmt.Errorf("%w: %v/%v", ErrInvalidWeight, weight, time)
	}
	for i, e := range g.adj[from] {
		if e.to == to {
			g.adj[from][i] = edge{to: to, weight: weight, time: time}
			return nil
		}
	}
	g.adj[from] = append(g.adj[from], edge{to: to, weight: weight, time: time})
	return nil
}

func (g *Network) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// FindNode resolves a location name to a node id by case-insensitive substring
// match against registered names, in registration order. The first match wins;
// ambiguous names resolve to whichever location was registered first.
func (g *Network) FindNode(name string) (int, bool) {
	q := strings.ToLower(name)
	for _, id := range g.order {
		if strings.Contains(strings.ToLower(g.nodes[id].Name), q) {
			return id, true
		}
	}
	return 0, false
}

type pqItem struct {
	node int
	dist float64
	seq  int // push order, breaks ties on dist
}

type minQueue []pqItem

func (q minQueue) Len() int { return len(q) }
func (q minQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q minQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x any)   { *q = append(*q, x.(pqItem)) }
func (q *minQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath computes the minimum-total-weight path from start to end using
// Dijkstra's algorithm over a binary-heap frontier. It returns the node
// sequence and the total weight; an unreachable end yields (nil, +Inf), and
// start == end yields a single-node path with weight 0. The search stops once
// end is popped from the frontier. Ties on accumulated weight are broken by
// push order, so results are deterministic for a fixed edge-insertion order.
func (g *Network) ShortestPath(start, end int) ([]int, float64) {
	if _, ok := g.nodes[start]; !ok {
		return nil, math.Inf(1)
	}
	if _, ok := g.nodes[end]; !ok {
		return nil, math.Inf(1)
	}

	dist := make(map[int]float64, len(g.nodes))
	prev := make(map[int]int, len(g.nodes))
	for id := range g.nodes {
		dist[id] = math.Inf(1)
	}
	dist[start] = 0

	seq := 0
	pq := &minQueue{{node: start, dist: 0, seq: seq}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if cur.dist > dist[cur.node] {
			continue // stale entry
		}
		if cur.node == end {
			break
		}
		for _, e := range g.adj[cur.node] {
			alt := cur.dist + e.weight
			if alt < dist[e.to] {
				dist[e.to] = alt
				prev[e.to] = cur.node
				seq++
				heap.Push(pq, pqItem{node: e.to, dist: alt, seq: seq})
			}
		}
	}

	if math.IsInf(dist[end], 1) {
		return nil, math.Inf(1)
	}

	path := []int{end}
	for cur := end; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[end]
}

// PathTravelTime sums travel minutes along a path previously returned by
// ShortestPath. Unknown hops contribute zero.
func (g *Network) PathTravelTime(path []int) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		for _, e := range g.adj[path[i]] {
			if e.to == path[i+1] {
				total += e.time
				break
			}
		}
	}
	return total
}
