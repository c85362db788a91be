package sampler

/*------------------------------------------------------------------
 *
 * Name:	envelope
 *
 * Purpose:	Amplitude/filter/pitch envelopes are, per spec.md §1, an
 *		external collaborator: only their reset/advance contract
 *		matters to the voice process loop. This is a minimal DAHDSR
 *		(delay-attack-hold-decay-sustain-release) implementation
 *		satisfying that contract, modelled on cbox_envelope in
 *		original_source/sampler_voice.c (stage table driven by
 *		EnvelopeGoTo / EnvelopeGetNext).
 *
 *---------------------------------------------------------------*/

// EnvelopeStage is one segment of an envelope shape: ramp from the
// envelope's current value to EndValue over Duration seconds, expressed in
// samples once realized against a sample rate.
type EnvelopeStage struct {
	EndValue float64
	Duration float64 // seconds
}

// EnvelopeShape is delay, attack, hold, decay, sustain, release expressed as
// a small stage table. Index 3 (decay's end value) is inspected directly by
// voice_process.go's "DAHD without sustain" fast-finish check (spec.md §4.4
// step 1).
type EnvelopeShape struct {
	Stages [4]EnvelopeStage // delay, attack, hold, decay
	Release EnvelopeStage
}

const (
	envStageFinished = -1
	envStageSustain  = 4
	envStageRelease  = 15
)

// EnvelopeState is the per-voice runtime cursor over a shape.
type EnvelopeState struct {
	Shape      *EnvelopeShape
	curStage   int
	value      float64
	stageSamp  float64 // samples elapsed in current stage
	stageStart float64 // value when the current stage began
	srate      float64
}

// Reset rewinds the envelope to its first stage. Called from Voice.Start.
func (e *EnvelopeState) Reset(srate float64) {
	e.curStage = 0
	e.value = 0
	e.stageSamp = 0
	e.srate = srate
}

// UpdateShape re-points a running envelope at a (possibly changed) shape
// without resetting its position, mirroring
// sampler_voice_update_params_from_layer's cbox_envelope_update_shape call.
func (e *EnvelopeState) UpdateShape(shape *EnvelopeShape) {
	e.Shape = shape
}

// GoTo forces the envelope directly to a stage, used by the "DAHD without
// sustain" fast-finish.
func (e *EnvelopeState) GoTo(stage int) {
	e.curStage = stage
	if stage == envStageRelease {
		e.curStage = envStageFinished
	}
}

// CurStage exposes the current stage index; voice_process.go checks this
// against the sustain stage (4) and the finished sentinel (-1).
func (e *EnvelopeState) CurStage() int {
	return e.curStage
}

// GetNext advances the envelope by one block (CBOX_BLOCK_SIZE implied by the
// caller passing the realized per-block duration) and returns the current
// value, in the same units as the shape's EndValue fields (0..1 for the amp
// envelope, which voice_process.go uses directly as a linear gain factor).
func (e *EnvelopeState) GetNext(released bool, blockSamples int) float64 {
	if e.Shape == nil || e.curStage == envStageFinished {
		return e.value
	}
	if e.curStage == envStageSustain {
		if released {
			e.curStage = envStageRelease
			e.stageSamp = 0
		}
		return e.value
	}
	if e.curStage == envStageRelease {
		stage := e.Shape.Release
		e.advance(stage, blockSamples)
		if e.stageSamp >= stage.Duration*e.srate {
			e.curStage = envStageFinished
		}
		return e.value
	}
	stage := e.Shape.Stages[e.curStage]
	e.advance(stage, blockSamples)
	if e.stageSamp >= stage.Duration*e.srate {
		e.stageSamp = 0
		e.curStage++
		if e.curStage >= len(e.Shape.Stages) {
			e.curStage = envStageSustain
		}
	}
	return e.value
}

func (e *EnvelopeState) advance(stage EnvelopeStage, blockSamples int) {
	if stage.Duration <= 0 {
		e.value = stage.EndValue
		e.stageSamp = stage.Duration * e.srate
		return
	}
	if e.stageSamp == 0 {
		e.stageStart = e.value
	}
	total := stage.Duration * e.srate
	e.stageSamp += float64(blockSamples)
	frac := e.stageSamp / total
	if frac > 1 {
		frac = 1
	}
	e.value = e.stageStart + (stage.EndValue-e.stageStart)*frac
}
