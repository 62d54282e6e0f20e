package effectchain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-nldsp/dsp/effects/shaper"
	"github.com/cwbudde/algo-nldsp/dsp/filter/eq"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

type enumKind interface {
	~int
	Valid() bool
}

// enumParam reads an enumerated parameter. A string value is parsed by
// name; a numeric value is taken as the index, as hosts deliver it.
func enumParam[T enumKind](p Params, key string, def T, parse func(string) (T, error)) (T, error) {
	if name := p.GetStr(key, ""); name != "" {
		v, err := parse(name)
		if err != nil {
			return def, fmt.Errorf("%s: %w", key, err)
		}

		return v, nil
	}

	raw, ok := p.Num[key]
	if !ok || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return def, nil
	}

	v := T(int(math.Round(raw)))
	if !v.Valid() {
		return def, fmt.Errorf("%s index is invalid: %g", key, raw)
	}

	return v, nil
}

func saturatorParam(p Params, key string, def saturate.Kind) (saturate.Kind, error) {
	return enumParam(p, key, def, saturate.ParseKind)
}

func shapeParam(p Params, def eq.Shape) (eq.Shape, error) {
	return enumParam(p, "shape", def, eq.ParseShape)
}

func rectifierParam(p Params, def dynamics.Rectifier) (dynamics.Rectifier, error) {
	return enumParam(p, "rectifier", def, dynamics.ParseRectifier)
}

func waveParam(p Params, def shaper.WaveKind) (shaper.WaveKind, error) {
	return enumParam(p, "wave", def, shaper.ParseWaveKind)
}

// orderParam reads an integer parameter rounded to the nearest value.
func orderParam(p Params, key string, def int) int {
	return int(math.Round(p.GetNum(key, float64(def))))
}
