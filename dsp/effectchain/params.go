package effectchain

import "math"

// Params holds the parsed parameters for a single chain node.
type Params struct {
	ID       string
	Type     string
	Bypassed bool
	Num      map[string]float64
	Str      map[string]string
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetBool reads a boolean parameter. JSON booleans are stored as 0 or 1.
func (p Params) GetBool(key string, def bool) bool {
	d := 0.0
	if def {
		d = 1
	}

	return p.GetNum(key, d) != 0
}

// GetStr extracts a string parameter, returning def if missing or empty.
func (p Params) GetStr(key, def string) string {
	if v, ok := p.Str[key]; ok && v != "" {
		return v
	}

	return def
}
