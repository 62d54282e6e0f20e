package allpass

import (
	"fmt"
	"math"
)

const (
	// MinLadderOrder is the smallest supported number of stages.
	MinLadderOrder = 1
	// MaxLadderOrder is the largest supported number of stages.
	MaxLadderOrder = 10
)

// Ladder is a lattice allpass of fixed depth. Every stage computes
//
//	y = sin(theta)*x + cos(theta)*r
//	v = cos(theta)*x - sin(theta)*r
//
// where r is what the nested stage returned on the previous sample and v is
// handed to the nested stage. The innermost nested element is a unit delay.
//
// The stages are kept in a flat array: state[i] holds the last output of
// stage i+1, and state[order-1] is the unit delay.
type Ladder struct {
	s, c  float64
	state []float64
}

// NewLadder creates a ladder with order stages. The initial angle is pi/2,
// which passes the input straight through.
func NewLadder(order int) (*Ladder, error) {
	if order < MinLadderOrder || order > MaxLadderOrder {
		return nil, fmt.Errorf("allpass ladder order must be in [%d, %d]: %d",
			MinLadderOrder, MaxLadderOrder, order)
	}

	return &Ladder{s: 1, c: 0, state: make([]float64, order)}, nil
}

// Order returns the number of stages.
func (l *Ladder) Order() int {
	return len(l.state)
}

// SetAngle sets the rotation angle used by every stage.
func (l *Ladder) SetAngle(theta float64) {
	l.s, l.c = math.Sincos(theta)
}

// ProcessSample runs one sample through all stages.
func (l *Ladder) ProcessSample(x float64) float64 {
	s, c := l.s, l.c
	st := l.state

	var out float64

	for i := range st {
		r := st[i]
		y := s*x + c*r
		x = c*x - s*r

		if i == 0 {
			out = y
		} else {
			st[i-1] = y
		}
	}

	st[len(st)-1] = x

	return out
}

// ProcessBlock filters buf in place with a constant angle.
func (l *Ladder) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = l.ProcessSample(x)
	}
}

// Reset clears every stage.
func (l *Ladder) Reset() {
	for i := range l.state {
		l.state[i] = 0
	}
}
