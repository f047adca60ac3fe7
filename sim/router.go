package sim

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Router answers shortest-path queries inside one robot domain.
//
// Cells are domain-relative. The graph is 4-connected over exactly the
// domain's cells and all-pairs distances are computed once in NewRouter;
// the domain never changes, so a Router is never invalidated.
type Router struct {
	rows, cols int
	graph      *simple.UndirectedGraph
	paths      path.AllShortest
}

// NewRouter builds the grid graph for a rows x cols domain and solves
// all-pairs shortest paths over it.
func NewRouter(rows, cols int) *Router {
	r := &Router{
		rows:  rows,
		cols:  cols,
		graph: simple.NewUndirectedGraph(),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r.graph.AddNode(simple.Node(r.nodeID(Cell{Row: row, Col: col})))
		}
	}
	// Right and bottom neighbours are enough for an undirected grid.
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			u := simple.Node(r.nodeID(Cell{Row: row, Col: col}))
			if col+1 < cols {
				r.graph.SetEdge(r.graph.NewEdge(u, simple.Node(r.nodeID(Cell{Row: row, Col: col + 1}))))
			}
			if row+1 < rows {
				r.graph.SetEdge(r.graph.NewEdge(u, simple.Node(r.nodeID(Cell{Row: row + 1, Col: col}))))
			}
		}
	}
	r.paths = path.DijkstraAllPaths(r.graph)
	return r
}

// Rows returns the domain height the router was built for.
func (r *Router) Rows() int { return r.rows }

// Cols returns the domain width the router was built for.
func (r *Router) Cols() int { return r.cols }

// NumEdges returns the number of undirected edges in the domain graph.
func (r *Router) NumEdges() int {
	return r.graph.Edges().Len()
}

func (r *Router) nodeID(c Cell) int64 {
	return int64(c.Row*r.cols + c.Col)
}

func (r *Router) inBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < r.rows && c.Col >= 0 && c.Col < r.cols
}

// Distance returns the number of unit moves on a shortest path from one
// local cell to another. ok is false when either cell is outside the domain.
func (r *Router) Distance(from, to Cell) (int, bool) {
	if !r.inBounds(from) || !r.inBounds(to) {
		return 0, false
	}
	w := r.paths.Weight(r.nodeID(from), r.nodeID(to))
	if math.IsInf(w, 1) {
		return 0, false
	}
	return int(w), true
}

// Path returns a shortest path from one local cell to another, both ends
// included. Among equally short paths the one preferring moves in action
// order (up, down, left, right) is returned, so results are reproducible.
// Returns nil when no path exists.
func (r *Router) Path(from, to Cell) []Cell {
	d, ok := r.Distance(from, to)
	if !ok {
		return nil
	}
	cells := make([]Cell, 0, d+1)
	cells = append(cells, from)
	cur := from
	for remaining := d; remaining > 0; remaining-- {
		next, found := r.descend(cur, to, remaining)
		if !found {
			return nil
		}
		cells = append(cells, next)
		cur = next
	}
	return cells
}

// descend picks the first neighbour of cur that is one step closer to to.
func (r *Router) descend(cur, to Cell, remaining int) (Cell, bool) {
	for _, delta := range actionDeltas {
		n := cur.Add(delta)
		if !r.inBounds(n) {
			continue
		}
		if d, ok := r.Distance(n, to); ok && d == remaining-1 {
			return n, true
		}
	}
	return Cell{}, false
}
