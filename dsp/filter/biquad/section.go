package biquad

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Topology selects where the saturator acts inside a Section.
type Topology int

const (
	// Linear ignores the saturator.
	Linear Topology = iota
	// NonlinearState saturates both state variables after each update.
	NonlinearState
	// NonlinearFeedback saturates the output sample used by the feedback terms.
	NonlinearFeedback
)

var topologyNames = [...]string{"linear", "state", "feedback"}

// Valid reports whether t is a known topology.
func (t Topology) Valid() bool {
	return t >= Linear && t <= NonlinearFeedback
}

func (t Topology) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Topology(%d)", int(t))
	}

	return topologyNames[t]
}

// Section is a single biquad filter with coefficients and internal state.
type Section struct {
	Coefficients

	topology Topology
	sat      saturate.Kind

	d0, d1 float64
}

// NewSection returns a linear Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// NewNonlinearSection returns a Section using topology and saturator kind.
func NewNonlinearSection(c Coefficients, topology Topology, kind saturate.Kind) (*Section, error) {
	s := NewSection(c)

	if err := s.SetTopology(topology); err != nil {
		return nil, err
	}

	if err := s.SetSaturator(kind); err != nil {
		return nil, err
	}

	return s, nil
}

// SetTopology selects the structure used by ProcessSample.
func (s *Section) SetTopology(t Topology) error {
	if !t.Valid() {
		return fmt.Errorf("biquad topology is invalid: %d", t)
	}

	s.topology = t

	return nil
}

// Topology returns the current structure.
func (s *Section) Topology() Topology { return s.topology }

// SetSaturator selects the saturating function for the nonlinear topologies.
func (s *Section) SetSaturator(kind saturate.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("biquad saturator is invalid: %d", kind)
	}

	s.sat = kind

	return nil
}

// Saturator returns the current saturator kind.
func (s *Section) Saturator() saturate.Kind { return s.sat }

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0

	switch s.topology {
	case NonlinearState:
		s.d0 = saturate.Apply(s.sat, s.B1*x-s.A1*y+s.d1)
		s.d1 = saturate.Apply(s.sat, s.B2*x-s.A2*y)
	case NonlinearFeedback:
		ys := saturate.Apply(s.sat, y)
		s.d0 = s.B1*x - s.A1*ys + s.d1
		s.d1 = s.B2*x - s.A2*ys
	default:
		s.d0 = s.B1*x - s.A1*y + s.d1
		s.d1 = s.B2*x - s.A2*y
	}

	return y
}

// ProcessBlock filters a block of samples in-place.
func (s *Section) ProcessBlock(buf []float64) {
	if s.topology != Linear && s.sat != saturate.None {
		for i, x := range buf {
			buf[i] = s.ProcessSample(x)
		}

		return
	}

	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Section) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}
