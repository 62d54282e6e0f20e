// Package hysteresis implements magnetic tape saturation with the
// Jiles-Atherton hysteresis model.
//
// The input is treated as the magnetising field H and the output is the
// magnetisation M. dM/dt is integrated per sample with a second-order
// Runge-Kutta step, and dH/dt comes from an alpha transform of H (alpha 1
// is the trapezoidal rule). Drive, saturation and width map to the model's
// physical parameters; a makeup gain keeps the loudness roughly constant.
//
// The model aliases strongly at high drive. Run it inside an oversampled
// region when that matters.
package hysteresis
