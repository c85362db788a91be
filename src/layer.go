package sampler

/*------------------------------------------------------------------
 *
 * Name:	layer
 *
 * Purpose:	LayerData is the frozen, runtime-ready parameter block for
 *		one SFZ region (spec.md §3). SFZ text parsing and the
 *		construction of this struct from source text are out of
 *		scope (spec.md §1); this package only consumes a completed
 *		LayerData.
 *
 *---------------------------------------------------------------*/

// Trigger selects when a layer is eligible to fire.
type Trigger int

const (
	TriggerAttack Trigger = iota
	TriggerRelease
	TriggerFirst
	TriggerLegato
)

// LoopMode selects looping behaviour during playback.
type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopOneShot
	LoopOneShotChokeable
	LoopContinuous
	LoopSustain
)

// FilterType selects the filter topology realized in voice_process.go.
type FilterType int

const (
	FilterLP6 FilterType = iota
	FilterLP12
	FilterLP12NR
	FilterLP24
	FilterLP24NR
	FilterLP24Hybrid
	FilterHP6
	FilterHP12
	FilterHP12NR
	FilterHP24
	FilterHP24NR
	FilterBP6
	FilterBP12
	FilterNone // cutoff == -1, no filtering
)

// Is4Pole reports whether the filter type cascades two biquads.
func (f FilterType) Is4Pole() bool {
	switch f {
	case FilterLP24, FilterLP24NR, FilterLP24Hybrid, FilterHP24, FilterHP24NR:
		return true
	}
	return false
}

// EQBand is one parametric EQ band's layer-level parameters.
type EQBand struct {
	EffectiveFreq float64
	Vel2Freq      float64
	Bandwidth     float64 // stored as bw (Hz), used as 1/bw in the Q calculation
	Gain          float64 // dB
	Vel2Gain      float64
}

// RoundRobinState is the per-layer round-robin cursor. It is mutated only
// by the audio thread's matcher (spec.md §9) — the control thread must not
// touch it once a layer is live.
type RoundRobinState struct {
	SeqLength           int
	CurrentSeqPosition  int
	LastKey             int // -1 if not yet seen
}

// LayerData is one fully-resolved SFZ region's runtime parameters.
type LayerData struct {
	// Ranges
	LoKey, HiKey   int
	LoVel, HiVel   int
	LoChan, HiChan int
	LoRand, HiRand float64

	// Keyswitch
	SwLoKey, SwHiKey int
	SwLast           int // -1 if unused
	SwDown, SwUp     int // -1 if unused
	SwPrevious       int // -1 if unused
	EffUseKeyswitch  bool
	LastKeyswitch    int // most recent note-on landing in [SwLoKey,SwHiKey]; -1 if none yet

	Trigger Trigger

	// Loop
	LoopStart, LoopEnd uint32
	EffLoopMode        LoopMode
	LoopOverlap        uint32
	Count              int // >0 means count-based (one-shot-N-repeats) playback

	AmpEnvShape    EnvelopeShape
	FilterEnvShape EnvelopeShape
	PitchEnvShape  EnvelopeShape

	AmpLFO    LFOParams
	FilterLFO LFOParams
	PitchLFO  LFOParams

	Modulations []Modulation

	FilType              FilterType
	Cutoff               float64 // Hz, -1 disables filtering
	LogCutoff            float64 // derived: realized cents value
	ResonanceLinearized  float64

	EQ1, EQ2, EQ3 EQBand
	EQBitmask     uint8

	Tonectl     float64
	TonectlFreq float64

	VolumeLinearized float64
	Pan              float64 // -100..100
	AmpVeltrack      float64 // percent
	EffVelcurve      [128]float64
	RtDecay          float64

	Delay       float64
	DelayRandom float64
	Offset      uint32
	OffsetRandom uint32
	RelOffset   float64 // percent

	Effect1Bus, Effect2Bus   int
	Effect1, Effect2         float64 // percent

	Output int
	Group  int
	OffBy  int

	Transpose     int
	Tune          float64
	PitchKeytrack float64
	PitchKeycenter int
	BendUp, BendDown int
	FilVeltrack   float64
	FilKeytrack   float64
	FilKeycenter  int

	EffWaveform *Waveform
	EffFreq     float64

	Timestretch           bool
	TimestretchJump       float64
	TimestretchCrossfade  float64

	OnCCNumber int // -1 if unused

	End int // 0: use waveform frames; -1: zero; >0: explicit

	// Runtime-prep scratch: interpolation splice tails, regenerated
	// whenever the layer is edited (spec.md §3 invariant).
	ScratchLoop []int16
	ScratchEnd  []int16

	RoundRobin RoundRobinState
}

// NewLayerData returns a LayerData with the defaults an SFZ region inherits
// before any opcode overrides it: full key/vel/chan ranges, no keyswitch, no
// filter, unity volume, centred pan, seq length 1.
func NewLayerData() *LayerData {
	l := &LayerData{
		LoKey: 0, HiKey: 127,
		LoVel: 0, HiVel: 127,
		LoChan: 1, HiChan: 16,
		LoRand: 0, HiRand: 1,
		SwLast: -1, SwDown: -1, SwUp: -1, SwPrevious: -1, LastKeyswitch: -1,
		Cutoff:              -1,
		ResonanceLinearized: 1,
		VolumeLinearized:    1,
		AmpVeltrack:         100,
		OnCCNumber:          -1,
	}
	for i := range l.EffVelcurve {
		l.EffVelcurve[i] = float64(i) / 127.0
	}
	l.RoundRobin = RoundRobinState{SeqLength: 1, CurrentSeqPosition: 1, LastKey: -1}
	return l
}

// PrepareRuntime (re)computes the fields a runtime-prep pass owns: EffFreq
// defaulting and the interpolation splice tails
// used by the non-bandlimited playback path (spec.md §4.4 step 11). Must be
// called after any edit and before the layer is linked into a Program
// (spec.md §3 invariant).
func (l *LayerData) PrepareRuntime() {
	if l.EffWaveform == nil {
		return
	}
	if l.EffFreq == 0 {
		l.EffFreq = 440.0
	}
	end := l.effectiveEnd()
	const order = MaxInterpolationOrder
	channels := l.EffWaveform.Channels
	half := order * channels // element count, not frame count

	l.ScratchEnd = make([]int16, half*2)
	copy(l.ScratchEnd, tailBefore(l.EffWaveform.Data, end*uint32(channels), half))
	// end-of-sample splice has silence after it (no loop)
	for i := half; i < half*2; i++ {
		l.ScratchEnd[i] = 0
	}

	if l.LoopEnd > 0 {
		l.ScratchLoop = make([]int16, half*2)
		copy(l.ScratchLoop, tailBefore(l.EffWaveform.Data, l.LoopEnd*uint32(channels), half))
		copy(l.ScratchLoop[half:], headFrom(l.EffWaveform.Data, l.LoopStart*uint32(channels), half))
	}
}

func (l *LayerData) effectiveEnd() uint32 {
	if l.End == 0 {
		return l.EffWaveform.Frames
	}
	if l.End == -1 {
		return 0
	}
	end := uint32(l.End)
	if end > l.EffWaveform.Frames {
		end = l.EffWaveform.Frames
	}
	return end
}

func tailBefore(data []int16, pos uint32, n int) []int16 {
	start := int(pos) - n
	if start < 0 {
		start = 0
	}
	if start > len(data) {
		start = len(data)
	}
	end := start + n
	if end > len(data) {
		end = len(data)
	}
	out := make([]int16, n)
	copy(out, data[start:end])
	return out
}

func headFrom(data []int16, pos uint32, n int) []int16 {
	start := int(pos)
	if start > len(data) {
		start = len(data)
	}
	end := start + n
	if end > len(data) {
		end = len(data)
	}
	out := make([]int16, n)
	copy(out, data[start:end])
	return out
}
