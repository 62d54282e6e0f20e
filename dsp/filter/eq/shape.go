package eq

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
)

// Shape selects the coefficient formula of an EQ band.
type Shape int

const (
	Bell Shape = iota
	Notch
	HighShelf
	LowShelf
	Highpass
	Lowpass
)

var shapeNames = [...]string{"bell", "notch", "highshelf", "lowshelf", "highpass", "lowpass"}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s >= Bell && s <= Lowpass
}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shape(%d)", int(s))
	}

	return shapeNames[s]
}

// ParseShape maps a case-insensitive name to a Shape.
func ParseShape(name string) (Shape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}

	return Bell, fmt.Errorf("eq shape is invalid: %q", name)
}

// Coefficients designs the section for shape at the given frequency, Q and
// linear gain. Notch, Lowpass and Highpass ignore gain.
func (s Shape) Coefficients(freq, q, gain, sampleRate float64) biquad.Coefficients {
	switch s {
	case Notch:
		return design.Notch(freq, q, sampleRate)
	case HighShelf:
		return design.HighShelf(freq, q, gain, sampleRate)
	case LowShelf:
		return design.LowShelf(freq, q, gain, sampleRate)
	case Highpass:
		return design.Highpass(freq, q, sampleRate)
	case Lowpass:
		return design.Lowpass(freq, q, sampleRate)
	default:
		return design.Bell(freq, q, gain, sampleRate)
	}
}
