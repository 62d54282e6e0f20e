package sub

// Generator is the octave divider: its +-1 output flips on every second
// direction change of the input.
type Generator struct {
	rising      bool
	switchCount int
	output      float64
	lastX       float64
}

// NewGenerator returns a generator starting at +1 on a rising slope.
func NewGenerator() *Generator {
	g := &Generator{}
	g.Reset()

	return g
}

// Reset restores the initial state.
func (g *Generator) Reset() {
	g.rising = true
	g.switchCount = 0
	g.output = 1
	g.lastX = 0
}

// ProcessSample returns the square wave value after observing x.
func (g *Generator) ProcessSample(x float64) float64 {
	if g.rising && x < g.lastX {
		g.switchCount++
		g.rising = false
	} else if !g.rising && x > g.lastX {
		g.switchCount++
		g.rising = true
	}

	if g.switchCount == 2 {
		g.output = -g.output
		g.switchCount = 0
	}

	g.lastX = x

	return g.output
}
