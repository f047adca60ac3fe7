package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Helpers for influence-based training wrappers, which look at how items
// enter a robot's domain through the shared boundary.

// LearningObservation is the vector observation of the configured learning
// robot, regardless of the configured obs_type.
func (w *Warehouse) LearningObservation() (*mat.VecDense, error) {
	r, err := w.Robot(w.cfg.LearningRobotID)
	if err != nil {
		return nil, err
	}
	return r.ObserveVector(w.State()), nil
}

// RobotLocation is the one-hot location segment of robot id's vector
// observation.
func (w *Warehouse) RobotLocation(id int) ([]float64, error) {
	r, err := w.Robot(id)
	if err != nil {
		return nil, err
	}
	obs := r.ObserveVector(w.State())
	n := r.Domain().Size()
	loc := make([]float64, n)
	for i := range loc {
		loc[i] = obs.AtVec(i)
	}
	return loc, nil
}

// BoundaryInflow diffs two consecutive vector observations of a rows x cols
// domain. Entry k is 1 when boundary cell k held an item before and holds
// none now without the robot standing there, i.e. the item was taken by a
// neighbouring robot sharing the boundary.
func BoundaryInflow(prev, cur *mat.VecDense, rows, cols int) ([]float64, error) {
	n := rows * cols
	want := VectorLength(rows, cols)
	if prev.Len() != want || cur.Len() != want {
		return nil, fmt.Errorf("boundary inflow: want vectors of length %d, got %d and %d", want, prev.Len(), cur.Len())
	}
	loc := mat.NewDense(rows, cols, nil)
	for i := 0; i < n; i++ {
		loc.Set(i/cols, i%cols, cur.AtVec(i))
	}
	robotRing := BoundaryRing(loc)

	infs := make([]float64, len(robotRing))
	for k := range infs {
		v := prev.AtVec(n+k) - cur.AtVec(n+k) - robotRing[k]
		infs[k] = max(v, 0)
	}
	return infs, nil
}

// RobotNeighbors lists the ids of robots whose domains touch robot id's,
// clockwise from the east: E, SE, S, SW, W, NW, N, NE. Neighbours outside the
// robot grid are omitted.
func (w *Warehouse) RobotNeighbors(id int) ([]int, error) {
	if _, err := w.Robot(id); err != nil {
		return nil, err
	}
	cols := w.cfg.NRobotsColumn
	row, col := id/cols, id%cols
	offsets := []Cell{
		{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: -1},
		{Row: 0, Col: -1}, {Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1},
	}
	var neighbors []int
	for _, o := range offsets {
		r, c := row+o.Row, col+o.Col
		if r < 0 || r >= w.cfg.NRobotsRow || c < 0 || c >= cols {
			continue
		}
		neighbors = append(neighbors, r*cols+c)
	}
	return neighbors, nil
}

// DomainIntersection returns the rows and columns shared by the domains of
// robots a and b, relative to a's domain. Both are empty when the domains
// do not touch.
func (w *Warehouse) DomainIntersection(a, b int) (rows, cols []int, err error) {
	ra, err := w.Robot(a)
	if err != nil {
		return nil, nil, err
	}
	rb, err := w.Robot(b)
	if err != nil {
		return nil, nil, err
	}
	da := ra.Domain()
	overlap, ok := da.Intersect(rb.Domain())
	if !ok {
		return nil, nil, nil
	}
	for r := overlap.RowMin; r <= overlap.RowMax; r++ {
		rows = append(rows, r-da.RowMin)
	}
	for c := overlap.ColMin; c <= overlap.ColMax; c++ {
		cols = append(cols, c-da.ColMin)
	}
	return rows, cols, nil
}
