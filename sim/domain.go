package sim

import "fmt"

// Cell is an integer (row, column) grid coordinate. It doubles as a
// displacement when used as an action delta.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns c translated by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Sub returns the displacement from o to c.
func (c Cell) Sub(o Cell) Cell {
	return Cell{Row: c.Row - o.Row, Col: c.Col - o.Col}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Domain is an axis-aligned rectangle of grid cells, bounds inclusive:
// [RowMin, ColMin, RowMax, ColMax].
type Domain struct {
	RowMin int `json:"row_min"`
	ColMin int `json:"col_min"`
	RowMax int `json:"row_max"`
	ColMax int `json:"col_max"`
}

// Contains reports whether c lies inside d.
func (d Domain) Contains(c Cell) bool {
	return d.RowMin <= c.Row && c.Row <= d.RowMax &&
		d.ColMin <= c.Col && c.Col <= d.ColMax
}

// Rows is the number of rows spanned by d.
func (d Domain) Rows() int { return d.RowMax - d.RowMin + 1 }

// Cols is the number of columns spanned by d.
func (d Domain) Cols() int { return d.ColMax - d.ColMin + 1 }

// Size is the number of cells in d.
func (d Domain) Size() int { return d.Rows() * d.Cols() }

// Center is the starting cell of a robot owning d: the minimum corner plus
// half the extent, rounded down.
func (d Domain) Center() Cell {
	return Cell{Row: d.RowMin + d.Rows()/2, Col: d.ColMin + d.Cols()/2}
}

// ToLocal converts a global cell to domain-relative coordinates.
func (d Domain) ToLocal(c Cell) Cell {
	return Cell{Row: c.Row - d.RowMin, Col: c.Col - d.ColMin}
}

// ToGlobal converts a domain-relative cell to grid coordinates.
func (d Domain) ToGlobal(c Cell) Cell {
	return Cell{Row: c.Row + d.RowMin, Col: c.Col + d.ColMin}
}

// Intersect returns the overlap of d and o.
func (d Domain) Intersect(o Domain) (Domain, bool) {
	r := Domain{
		RowMin: max(d.RowMin, o.RowMin),
		ColMin: max(d.ColMin, o.ColMin),
		RowMax: min(d.RowMax, o.RowMax),
		ColMax: min(d.ColMax, o.ColMax),
	}
	if r.RowMin > r.RowMax || r.ColMin > r.ColMax {
		return Domain{}, false
	}
	return r, true
}

func (d Domain) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", d.RowMin, d.ColMin, d.RowMax, d.ColMax)
}
