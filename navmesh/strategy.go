package navmesh

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStrategy is returned by ParseStrategy for unregistered names
var ErrUnknownStrategy = errors.New("navmesh: unknown strategy")

// Strategy finds a route between two nodes of a graph. It returns the node
// ids from start to goal inclusive, or false when goal cannot be reached.
type Strategy interface {
	Name() string
	FindPath(graph Graph, start, goal int) ([]int, bool)
}

var strategies = map[string]Strategy{
	AStar{}.Name():        AStar{},
	Dijkstra{}.Name():     Dijkstra{},
	BestFirst{}.Name():    BestFirst{},
	BreadthFirst{}.Name(): BreadthFirst{},
}

// ParseStrategy returns the strategy registered under name
func ParseStrategy(name string) (Strategy, error) {
	if s, ok := strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Strategies lists the registered strategy names in sorted order
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AStar is shortest-path search guided by straight-line distance to the goal
type AStar struct{}

func (AStar) Name() string { return "astar" }

func (AStar) FindPath(graph Graph, start, goal int) ([]int, bool) {
	return prioritySearch(graph, start, goal, 1, 1)
}

// Dijkstra is uninformed shortest-path search
type Dijkstra struct{}

func (Dijkstra) Name() string { return "dijkstra" }

func (Dijkstra) FindPath(graph Graph, start, goal int) ([]int, bool) {
	return prioritySearch(graph, start, goal, 1, 0)
}

// BestFirst greedily expands the node closest to the goal. Routes are not
// guaranteed to be shortest.
type BestFirst struct{}

func (BestFirst) Name() string { return "best-first" }

func (BestFirst) FindPath(graph Graph, start, goal int) ([]int, bool) {
	return prioritySearch(graph, start, goal, 0, 1)
}

// BreadthFirst returns the route with the fewest waypoints
type BreadthFirst struct{}

func (BreadthFirst) Name() string { return "breadth-first" }

func (BreadthFirst) FindPath(graph Graph, start, goal int) ([]int, bool) {
	parent := map[int]int{start: start}
	queue := []int{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == goal {
			return reconstructPath(parent, goal, start), true
		}

		for _, edge := range graph.Neighbors(current) {
			if _, seen := parent[edge.To]; seen {
				continue
			}
			parent[edge.To] = current
			queue = append(queue, edge.To)
		}
	}

	return nil, false
}

// node represents a node in the priority search
type node struct {
	id     int
	g      float64 // Cost from start to this node
	h      float64 // Heuristic cost from this node to goal
	f      float64 // Queue priority
	parent *node
	index  int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by f
type priorityQueue []*node

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*node)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

// prioritySearch expands nodes in order of gWeight*g + hWeight*h
func prioritySearch(graph Graph, start, goal int, gWeight, hWeight float64) ([]int, bool) {
	goalPoint := graph.Point(goal)

	openSet := &priorityQueue{}
	heap.Init(openSet)

	h := graph.Point(start).Distance(goalPoint)
	startNode := &node{id: start, h: h, f: hWeight * h}
	heap.Push(openSet, startNode)

	closedSet := make(map[int]bool)
	openSetMap := map[int]*node{start: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*node)
		delete(openSetMap, current.id)

		if current.id == goal {
			path := []int{}
			for n := current; n != nil; n = n.parent {
				path = append(path, n.id)
			}
			reverse(path)
			return path, true
		}

		closedSet[current.id] = true

		for _, edge := range graph.Neighbors(current.id) {
			if closedSet[edge.To] {
				continue
			}

			tentativeG := current.g + edge.Cost

			neighbor, exists := openSetMap[edge.To]
			if !exists {
				h := graph.Point(edge.To).Distance(goalPoint)
				neighbor = &node{
					id:     edge.To,
					g:      tentativeG,
					h:      h,
					f:      gWeight*tentativeG + hWeight*h,
					parent: current,
				}
				heap.Push(openSet, neighbor)
				openSetMap[edge.To] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbor
				neighbor.g = tentativeG
				neighbor.f = gWeight*tentativeG + hWeight*neighbor.h
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	return nil, false
}

func reconstructPath(parent map[int]int, current, start int) []int {
	path := []int{current}
	for current != start {
		current = parent[current]
		path = append(path, current)
	}
	reverse(path)
	return path
}

func reverse(path []int) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}
