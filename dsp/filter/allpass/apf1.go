package allpass

// APF1 is the first-order allpass
//
//	H(z) = (rho + z^-1) / (1 + rho*z^-1)
//
// in a one-state form: y = z + rho*x; z = x - rho*y.
type APF1 struct {
	rho float64
	z   float64
}

// NewAPF1 returns a warper with the given coefficient. |rho| < 1 is stable.
func NewAPF1(rho float64) *APF1 {
	return &APF1{rho: rho}
}

// SetRho sets the warping coefficient without clearing state.
func (a *APF1) SetRho(rho float64) {
	a.rho = rho
}

// Rho returns the warping coefficient.
func (a *APF1) Rho() float64 {
	return a.rho
}

// ProcessSample filters one sample.
func (a *APF1) ProcessSample(x float64) float64 {
	y := a.z + a.rho*x
	a.z = x - a.rho*y

	return y
}

// ProcessBlock filters buf in place.
func (a *APF1) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = a.ProcessSample(x)
	}
}

// Reset clears the state.
func (a *APF1) Reset() {
	a.z = 0
}
