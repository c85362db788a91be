package sampler

import "math"

/*------------------------------------------------------------------
 *
 * Name:	lfo
 *
 * Purpose:	Fixed-point phase-accumulator LFO with delay and fade-in,
 *		ported from lfo_init/lfo_update_freq/lfo_run in
 *		original_source/sampler_voice.c. An 11-bit (2048-entry) sine
 *		table is shared across all LFOs, matching the FRAC_BITS split
 *		lfo_run there.
 *
 *---------------------------------------------------------------*/

const lfoTableBits = 11
const lfoTableEntries = 1 << lfoTableBits    // 2048
const lfoTableSize = lfoTableEntries + 1 // +1 guard sample for linear interpolation wraparound

var lfoSineTable [lfoTableSize]float64

func init() {
	for i := 0; i < lfoTableSize; i++ {
		lfoSineTable[i] = math.Sin(2 * math.Pi * float64(i%lfoTableEntries) / float64(lfoTableEntries))
	}
}

// LFOParams is the layer-level, control-thread-owned configuration for one
// LFO: frequency, onset delay, and fade-in time, all in seconds/Hz.
type LFOParams struct {
	Freq  float64
	Delay float64
	Fade  float64
}

// LFO is the per-voice runtime state.
type LFO struct {
	phase uint32
	delta uint32
	age   uint32
	delay uint32
	fade  uint32
}

// Init (re)starts an LFO at phase zero and realizes its frequency/delay/fade
// against the module's sample rate. Called once from Voice.Start.
func (l *LFO) Init(p LFOParams, srate float64, blockSize int) {
	l.phase = 0
	l.age = 0
	l.UpdateFreq(p, srate, blockSize)
}

// UpdateFreq re-realizes frequency/delay/fade without touching phase or age,
// mirroring sampler_voice_update_params_from_layer's lfo_update_freq calls.
func (l *LFO) UpdateFreq(p LFOParams, srate float64, blockSize int) {
	l.delta = uint32(p.Freq * 65536.0 * 65536.0 * float64(blockSize) / srate)
	l.delay = uint32(p.Delay * srate)
	l.fade = uint32(p.Fade * srate)
}

// Run advances the LFO by one block and returns its current output in
// [-1,1], applying delay and linear fade-in.
func (l *LFO) Run(blockSize int) float64 {
	if l.age < l.delay {
		l.age += uint32(blockSize)
		return 0
	}
	const fracBits = 32 - lfoTableBits
	l.phase += l.delta
	iphase := l.phase >> fracBits
	frac := float64(l.phase&((1<<fracBits)-1)) / float64(uint32(1)<<fracBits)

	v := lfoSineTable[iphase] + (lfoSineTable[iphase+1]-lfoSineTable[iphase])*frac
	if l.fade != 0 && l.age < l.delay+l.fade {
		v *= float64(l.age-l.delay) / float64(l.fade)
		l.age += uint32(blockSize)
	}
	return v
}
