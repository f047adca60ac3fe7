package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ObsType selects the per-robot observation encoding.
type ObsType string

const (
	// ObsImage is a domain-shaped map: items +1, self -1.
	ObsImage ObsType = "image"
	// ObsVector is the one-hot self location followed by boundary-ring item bits.
	ObsVector ObsType = "vector"
)

// validObsTypes is the set of recognized observation encodings.
var validObsTypes = map[ObsType]bool{ObsImage: true, ObsVector: true}

// ParseObsType validates an observation type name.
func ParseObsType(s string) (ObsType, error) {
	t := ObsType(s)
	if !validObsTypes[t] {
		return "", fmt.Errorf("unknown obs_type %q", s)
	}
	return t, nil
}

// State is the global two-channel presence bitmap. Both channels are
// n_rows x n_columns and hold 1 where at least one entity of that kind sits.
type State struct {
	Items  *mat.Dense
	Robots *mat.Dense
}

// NewState returns an all-zero state of the given extents.
func NewState(rows, cols int) State {
	return State{
		Items:  mat.NewDense(rows, cols, nil),
		Robots: mat.NewDense(rows, cols, nil),
	}
}

func (s State) domainItems(d Domain) *mat.Dense {
	return mat.DenseCopyOf(s.Items.Slice(d.RowMin, d.RowMax+1, d.ColMin, d.ColMax+1))
}

// ObserveImage returns the robot's domain slice of the item channel minus a
// one-hot of its own location.
func (r *Robot) ObserveImage(state State) *mat.Dense {
	obs := state.domainItems(r.domain)
	local := r.domain.ToLocal(r.pos)
	obs.Set(local.Row, local.Col, obs.At(local.Row, local.Col)-1)
	return obs
}

// ObserveVector returns the one-hot self location over the domain
// (row-major) followed by the item bits of the domain's boundary ring.
func (r *Robot) ObserveVector(state State) *mat.VecDense {
	items := state.domainItems(r.domain)
	ring := BoundaryRing(items)

	data := make([]float64, r.domain.Size(), r.domain.Size()+len(ring))
	local := r.domain.ToLocal(r.pos)
	data[local.Row*r.domain.Cols()+local.Col] = 1
	data = append(data, ring...)
	return mat.NewVecDense(len(data), data)
}

// Observe dispatches on obsType. The image encoding is returned as a
// *mat.Dense and the vector encoding as a *mat.VecDense column.
func (r *Robot) Observe(state State, obsType ObsType) (mat.Matrix, error) {
	switch obsType {
	case ObsImage:
		return r.ObserveImage(state), nil
	case ObsVector:
		return r.ObserveVector(state), nil
	default:
		return nil, fmt.Errorf("unknown obs_type %q", obsType)
	}
}

// BoundaryRing reads the perimeter of m in fixed order: the whole top row,
// the whole bottom row, the left column of the interior rows, then the
// right column of the interior rows.
func BoundaryRing(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	ring := make([]float64, 0, RingLength(rows, cols))
	for c := 0; c < cols; c++ {
		ring = append(ring, m.At(0, c))
	}
	for c := 0; c < cols; c++ {
		ring = append(ring, m.At(rows-1, c))
	}
	for r := 1; r < rows-1; r++ {
		ring = append(ring, m.At(r, 0))
	}
	for r := 1; r < rows-1; r++ {
		ring = append(ring, m.At(r, cols-1))
	}
	return ring
}

// RingLength is the number of entries BoundaryRing yields for a
// rows x cols domain.
func RingLength(rows, cols int) int {
	return 2*cols + 2*max(rows-2, 0)
}

// VectorLength is the length of a vector observation for a rows x cols domain.
func VectorLength(rows, cols int) int {
	return rows*cols + RingLength(rows, cols)
}
