// Package design builds biquad.Coefficients from filter parameters using
// the RBJ "Audio EQ Cookbook" formulas. dsp/filter/moog is the sole
// caller, using Lowpass to derive the anti-aliasing filter ahead of its
// oversampled nonlinearity.
package design
