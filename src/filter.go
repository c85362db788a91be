package sampler

import "math"

/*------------------------------------------------------------------
 *
 * Name:	filter
 *
 * Purpose:	Biquad and one-pole filter coefficient calculation and
 *		stereo-interleaved processing. spec.md §1 lists the biquad
 *		coefficient library as external, with only reset/advance/
 *		process mattering to the core; this is a minimal standard
 *		RBJ/one-pole implementation satisfying that contract so the
 *		voice DSP chain in voice_process.go has something concrete
 *		to drive. Coefficient math follows the Audio EQ Cookbook,
 *		the same family of formulas cbox_biquadf_set_*_rbj uses.
 *
 *---------------------------------------------------------------*/

// BiquadCoeffs is a direct-form-II-transposed biquad's normalized
// coefficients (a0 implicitly 1).
type BiquadCoeffs struct {
	b0, b1, b2, a1, a2 float64
}

// BiquadState is one channel's running filter memory.
type BiquadState struct {
	z1, z2 float64
}

// Reset clears a filter's memory, called on voice start and on layer change.
func (s *BiquadState) Reset() {
	s.z1, s.z2 = 0, 0
}

// IsAudible reports whether the filter's stored energy still exceeds eps,
// used by the tail-finish check (spec.md §4.4 step 5) to decide whether a
// voice's ringing filter tail has died out.
func (s *BiquadState) IsAudible(eps float64) bool {
	return math.Abs(s.z1) > eps || math.Abs(s.z2) > eps
}

func (s *BiquadState) processSample(c *BiquadCoeffs, in float64) float64 {
	out := c.b0*in + s.z1
	s.z1 = c.b1*in - c.a1*out + s.z2
	s.z2 = c.b2*in - c.a2*out
	return out
}

// ProcessStereo runs a biquad over an interleaved [L,R,L,R,...] buffer
// in-place, using independent state per channel.
func ProcessStereo(left, right *BiquadState, c *BiquadCoeffs, buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = float32(left.processSample(c, float64(buf[i])))
		buf[i+1] = float32(right.processSample(c, float64(buf[i+1])))
	}
}

// sincosAt returns sin/cos of the angular cutoff corresponding to a
// logcutoff index in the 0..12798 range voice_process.go works in (cents
// above an implicit base, matching the original's m->sincos lookup table;
// here computed directly rather than via a precomputed table since the
// table is purely a speed optimization external to this spec).
func sincosAt(logcutoff float64, srate float64) (sinw, cosw float64) {
	freq := 440.0 * math.Exp2((logcutoff-5700)/1200.0)
	w := 2 * math.Pi * freq / srate
	return math.Sin(w), math.Cos(w)
}

// SetLowpassRBJ sets c to a resonant RBJ lowpass at the given logcutoff
// (cents) and linear resonance (Q-like quality factor).
func SetLowpassRBJ(c *BiquadCoeffs, logcutoff, q, srate float64) {
	sinw, cosw := sincosAt(logcutoff, srate)
	alpha := sinw / (2 * q)
	b0 := (1 - cosw) / 2
	b1 := 1 - cosw
	b2 := (1 - cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha
	c.b0, c.b1, c.b2 = b0/a0, b1/a0, b2/a0
	c.a1, c.a2 = a1/a0, a2/a0
}

// SetHighpassRBJ sets c to a resonant RBJ highpass.
func SetHighpassRBJ(c *BiquadCoeffs, logcutoff, q, srate float64) {
	sinw, cosw := sincosAt(logcutoff, srate)
	alpha := sinw / (2 * q)
	b0 := (1 + cosw) / 2
	b1 := -(1 + cosw)
	b2 := (1 + cosw) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha
	c.b0, c.b1, c.b2 = b0/a0, b1/a0, b2/a0
	c.a1, c.a2 = a1/a0, a2/a0
}

// SetBandpassRBJ sets c to a constant-skirt-gain RBJ bandpass.
func SetBandpassRBJ(c *BiquadCoeffs, logcutoff, q, srate float64) {
	sinw, cosw := sincosAt(logcutoff, srate)
	alpha := sinw / (2 * q)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha
	c.b0, c.b1, c.b2 = b0/a0, b1/a0, b2/a0
	c.a1, c.a2 = a1/a0, a2/a0
}

// SetNotchRBJ sets c to an RBJ notch (band-reject) filter.
func SetNotchRBJ(c *BiquadCoeffs, logcutoff, q, srate float64) {
	sinw, cosw := sincosAt(logcutoff, srate)
	alpha := sinw / (2 * q)
	b0 := 1.0
	b1 := -2 * cosw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cosw
	a2 := 1 - alpha
	c.b0, c.b1, c.b2 = b0/a0, b1/a0, b2/a0
	c.a1, c.a2 = a1/a0, a2/a0
}

// SetOnePoleLP/SetOnePoleHP realize a simple one-pole filter as a biquad
// with zeroed second-order terms, used for the 6 dB/octave filter types
// (lp6, hp6) and for the lp24hybrid "second filter".
func SetOnePoleLP(c *BiquadCoeffs, logcutoff, srate float64) {
	freq := 440.0 * math.Exp2((logcutoff-5700)/1200.0)
	x := math.Exp(-2 * math.Pi * freq / srate)
	c.b0, c.b1, c.b2 = 1-x, 0, 0
	c.a1, c.a2 = -x, 0
}

func SetOnePoleHP(c *BiquadCoeffs, logcutoff, srate float64) {
	freq := 440.0 * math.Exp2((logcutoff-5700)/1200.0)
	x := math.Exp(-2 * math.Pi * freq / srate)
	c.b0, c.b1, c.b2 = (1+x)/2, -(1+x)/2, 0
	c.a1, c.a2 = -x, 0
}

// OnePoleState/OnePoleCoeffs back the tone-control high-shelf stage.
type OnePoleCoeffs struct {
	a0, b1, gain float64
}

type OnePoleState struct {
	z float64
}

func (s *OnePoleState) Reset() { s.z = 0 }

// SetHighShelfToneControl realizes the tone-control one-pole high shelf at
// angular frequency w (radians/sample) with unity gain, mirroring
// cbox_onepolef_set_highshelf_tonectl. SetHighShelfGain then adjusts the
// shelf's applied gain per block without recomputing the pole.
func SetHighShelfToneControl(c *OnePoleCoeffs, w float64) {
	x := math.Exp(-w)
	c.a0 = 1 - x
	c.b1 = x
	c.gain = 1.0
}

func SetHighShelfGain(c *OnePoleCoeffs, gain float64) {
	c.gain = gain
}

func (s *OnePoleState) processSample(c *OnePoleCoeffs, in float64) float64 {
	s.z = c.a0*in + c.b1*s.z
	return in + (c.gain-1)*(in-s.z)
}

// ProcessOnePoleStereo runs the tone-control one-pole over an interleaved
// buffer in-place.
func ProcessOnePoleStereo(left, right *OnePoleState, c *OnePoleCoeffs, buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = float32(left.processSample(c, float64(buf[i])))
		buf[i+1] = float32(right.processSample(c, float64(buf[i+1])))
	}
}
