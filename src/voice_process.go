package sampler

import "math"

/*------------------------------------------------------------------
 *
 * Name:	voice_process
 *
 * Purpose:	Voice.ProcessBlock is the per-block DSP chain driving one
 *		voice from envelopes/LFOs/modulation through pitch, filter,
 *		tone control, and EQ into the module's output buses, ported
 *		from sampler_voice_process in original_source/sampler_voice.c
 *		(spec.md §4.4).
 *
 *---------------------------------------------------------------*/

// eqSilenceEps is the threshold below which a filter/EQ's ring-down is
// considered inaudible for the tail-finish check.
const eqSilenceEps = 1e-6

// ProcessBlock advances v by one BlockSize-frame block and mixes its output
// into outputs (one []float32 per output-bus channel, len(outputs) ==
// 2*m.OutputPairs, each BlockSize frames long). If the voice finishes during
// this block it inactivates itself before returning.
func (v *Voice) ProcessBlock(m *Module, outputs [][]float32) {
	released := v.Released

	// step 1: fast-finish a DAHD envelope with no sustain stage once its
	// decay has reached its end value, rather than hanging on the sustain
	// stage forever.
	if v.AmpEnv.CurStage() == envStageSustain && v.AmpEnv.Shape.Stages[3].EndValue == 0 {
		v.AmpEnv.GoTo(envStageRelease)
	}

	// step 2: a still-delayed voice produces silence and only advances its
	// delay counter.
	if v.Delay > 0 {
		if v.Delay >= uint64(BlockSize) {
			v.Delay -= uint64(BlockSize)
			return
		}
		v.Delay = 0
	}

	// step 3: re-resolve EQ coefficients whenever the layer's EQ bitmask
	// changed since the last block (first block after Start, or a live
	// layer edit).
	if v.Layer.EQBitmask != v.LastEQBitmask {
		v.recomputeEQ()
		v.LastEQBitmask = v.Layer.EQBitmask
	}

	// step 4: per-block modulation sources.
	var srcs modSources
	srcs.set(SrcVel, float64(v.Vel)/127.0)
	srcs.set(SrcPitch, float64(v.Channel.PitchWheel)/8192.0)
	srcs.set(SrcPolyAftertouch, float64(v.Channel.PolyAftertouch[v.Note])/127.0)
	srcs.set(SrcPitchEnv, v.PitchEnv.GetNext(released, BlockSize))
	srcs.set(SrcFilterEnv, v.FilterEnv.GetNext(released, BlockSize))
	srcs.set(SrcAmpEnv, v.AmpEnv.GetNext(released, BlockSize))
	srcs.set(SrcAmpLFO, v.AmpLFO.Run(BlockSize))
	srcs.set(SrcFilterLFO, v.FilterLFO.Run(BlockSize))
	srcs.set(SrcPitchLFO, v.PitchLFO.Run(BlockSize))

	// step 5: a voice whose amp envelope has finished and whose main and
	// second filter memory has decayed below audibility is done; stop
	// generating before it ever reaches the generator. This applies equally
	// to a one-shot that reaches envStageFinished on its own, unreleased
	// (spec.md §4.4 step 5 conditions only on envelope stage and filter
	// audibility, not on release).
	if v.AmpEnv.CurStage() == envStageFinished {
		if !v.FilterLeft.IsAudible(eqSilenceEps) && !v.FilterRight.IsAudible(eqSilenceEps) &&
			!v.FilterLeft2.IsAudible(eqSilenceEps) && !v.FilterRight2.IsAudible(eqSilenceEps) {
			v.Inactivate(true)
			return
		}
	}

	// step 6: apply the layer's modulation list against the sources just
	// computed.
	var dests modDests
	applyModulations(v.Layer.Modulations, v.Channel, &srcs, &dests)

	// step 7: pitch -> playback rate.
	l := v.Layer
	semitones := float64(l.Transpose) + l.Tune/100.0 + float64(v.Note-l.PitchKeycenter)*l.PitchKeytrack/100.0
	if v.Channel.PitchWheel >= 0 {
		semitones += float64(v.Channel.PitchWheel) / 8192.0 * float64(l.BendUp) / 100.0
	} else {
		semitones += float64(v.Channel.PitchWheel) / 8192.0 * float64(l.BendDown) / 100.0
	}
	semitones += dests[DestPitch]
	ratio := math.Exp2(semitones / 12.0)
	rate := ratio * l.EffFreq / m.SampleRate
	v.Gen.BigDelta = uint64(rate * 4294967296.0)
	v.Gen.VirtDelta = v.Gen.BigDelta

	// step 8: band-limited mip level selection, walking cached-then-scan.
	v.selectLevel(l)

	// step 9/10: loop bounds and resident-vs-streaming source selection.
	v.configureSource(l)

	// step 11: timestretch is an external collaborator (spec.md §1); only
	// its jump/crossfade parameters are carried through to the generator
	// for a downstream implementation to consult.
	v.Gen.StretchingJump = l.TimestretchJump
	v.Gen.StretchingCrossfade = l.TimestretchCrossfade

	// step 12: gain and pan. linGain carries the amp envelope's current
	// level as a hardwired factor (spec.md §4.4 step 13; sampler_voice.c
	// gain = modsrcs[ampenv] * ...), not a mod-matrix entry, and includes
	// the /32768 int16->float normalization the generator leaves undone.
	gainDb := 20 * math.Log10(v.GainFromVel)
	gainDb += dests[DestGain]
	volCC := float64(v.Channel.ChannelVolumeCC) / 127.0
	expr := float64(v.Channel.Addcc(11)) / 127.0
	linGain := srcs.get(SrcAmpEnv) * math.Pow(10, gainDb/20) * l.VolumeLinearized * volCC * expr
	if linGain > 2.0 {
		linGain = 2.0
	}
	linGain /= 32768.0
	pan := l.Pan + (float64(v.Channel.ChannelPanCC)-64)/64.0*100
	if pan < -100 {
		pan = -100
	}
	if pan > 100 {
		pan = 100
	}
	panL, panR := panToGains(pan)

	// step 13: filter coefficient recompute, dispatched by filter type.
	cutoffShift := v.CutoffShift + dests[DestCutoff]*100
	logcutoff := l.LogCutoff + cutoffShift
	if logcutoff < 0 {
		logcutoff = 0
	}
	if logcutoff > 12798 {
		logcutoff = 12798
	}
	q := l.ResonanceLinearized + dests[DestResonance]
	if q < 0.5 {
		q = 0.5
	}
	v.recomputeFilter(l, logcutoff, q)

	// step 14: tone control gain (high-shelf applied amount, in dB -> linear).
	toneGain := math.Pow(10, (l.Tonectl+dests[DestTonectl])/20)
	SetHighShelfGain(&v.OnepoleCoeffs, toneGain)

	// step 15: generate BlockSize frames of raw (pre-filter) audio.
	var raw [2 * BlockSize]float32
	produced := v.Gen.SamplePlayback(raw[:], uint32(BlockSize))
	for i := produced; i < uint32(BlockSize); i++ {
		raw[2*i] = 0
		raw[2*i+1] = 0
	}

	// step 16: filter -> tone control -> EQ chain, then gain/pan.
	v.runFilterChain(l, raw[:])
	if l.TonectlFreq != 0 {
		ProcessOnePoleStereo(&v.OnepoleLeft, &v.OnepoleRight, &v.OnepoleCoeffs, raw[:])
	}
	v.runEQChain(raw[:])
	for i := 0; i < BlockSize; i++ {
		raw[2*i] *= float32(linGain * panL)
		raw[2*i+1] *= float32(linGain * panR)
	}

	// step 17: mix into the voice's output pair and any aux sends.
	base := v.OutputPairNo * 2
	if base+1 < len(outputs) {
		mixBlockInto(outputs[base], outputs[base+1], raw[:], 1)
	}
	if v.Send1Bus > 0 {
		sbase := (m.AuxOffset + (v.Send1Bus-1)*2)
		if sbase+1 < len(outputs) {
			mixBlockInto(outputs[sbase], outputs[sbase+1], raw[:], v.Send1Gain)
		}
	}
	if v.Send2Bus > 0 {
		sbase := (m.AuxOffset + (v.Send2Bus-1)*2)
		if sbase+1 < len(outputs) {
			mixBlockInto(outputs[sbase], outputs[sbase+1], raw[:], v.Send2Gain)
		}
	}

	// step 18: the generator reporting it finished (no loop, ran past
	// CurSampleEnd) ends the voice's life regardless of envelope/release
	// state.
	if v.Gen.Finished {
		v.Inactivate(true)
	}
}

// panToGains realizes a -100..100 pan value as linear left/right gains
// (spec.md §4.4 step 13: lgain = 1-pan, rgain = pan, pan normalized to [0,1]).
func panToGains(pan float64) (left, right float64) {
	p := (pan + 100) / 200
	return 1 - p, p
}

// selectLevel walks the layer's waveform mip levels looking for the
// lowest-rate level whose MaxRate still covers the current playback delta,
// preferring the previously selected level (cached) before scanning the
// full list (spec.md §4.4 step 8).
func (v *Voice) selectLevel(l *LayerData) {
	w := l.EffWaveform
	if len(w.Levels) == 0 {
		v.Gen.SampleData = w.Data
		v.Gen.Channels = w.Channels
		return
	}
	if v.LastWaveform == w && v.LastLevel < len(w.Levels) && v.Gen.BigDelta > v.LastLevelMinRate && v.Gen.BigDelta <= w.Levels[v.LastLevel].MaxRate {
		v.Gen.SampleData = w.Levels[v.LastLevel].Data
		v.Gen.Channels = w.Channels
		return
	}
	chosen := len(w.Levels) - 1
	for i, lvl := range w.Levels {
		if v.Gen.BigDelta <= lvl.MaxRate {
			chosen = i
			break
		}
	}
	v.LastLevel = chosen
	if chosen == 0 {
		v.LastLevelMinRate = 0
	} else {
		v.LastLevelMinRate = w.Levels[chosen-1].MaxRate
	}
	v.Gen.SampleData = w.Levels[chosen].Data
	v.Gen.Channels = w.Channels
}

// configureSource picks between the layer's resident waveform and the
// voice's streaming pipe, and realizes the generator's loop bounds
// (spec.md §4.4 steps 9-10).
func (v *Voice) configureSource(l *LayerData) {
	v.Gen.InStreamingBuffer = v.CurrentPipe != nil
	if v.CurrentPipe != nil {
		v.Gen.StreamingBuffer = v.CurrentPipe.Data()
		v.Gen.StreamingBufferFrames = v.CurrentPipe.BufferLoopEnd()
		v.Gen.PrefetchOnlyLoop = l.EffLoopMode == LoopContinuous && l.LoopEnd < l.EffWaveform.PreloadedFrames
	}

	v.Gen.CurSampleEnd = l.effectiveEnd()
	v.Gen.LoopOverlap = l.LoopOverlap
	if l.LoopOverlap > 0 {
		v.Gen.LoopOverlapStep = 1.0 / float64(l.LoopOverlap)
	} else {
		v.Gen.LoopOverlapStep = 0
	}

	switch v.LoopMode {
	case LoopContinuous:
		v.Gen.LoopStart, v.Gen.LoopEnd = l.LoopStart, l.LoopEnd
		v.Gen.Scratch = l.ScratchLoop
	case LoopSustain:
		if v.Released {
			v.Gen.LoopStart = noLoopStart
			v.Gen.Scratch = l.ScratchEnd
		} else {
			v.Gen.LoopStart, v.Gen.LoopEnd = l.LoopStart, l.LoopEnd
			v.Gen.Scratch = l.ScratchLoop
		}
	default:
		v.Gen.LoopStart = noLoopStart
		v.Gen.Scratch = l.ScratchEnd
	}
	if l.Count > 0 {
		v.Gen.LoopCount = l.Count
	}
}

// recomputeEQ rebuilds the three parametric EQ bands' biquad coefficients
// from the layer's current EQ parameters and this voice's velocity, gated
// per-band by EQBitmask (spec.md §4.4 step 3, §3 "EQ re-enable" note).
func (v *Voice) recomputeEQ() {
	bands := [3]*EQBand{&v.Layer.EQ1, &v.Layer.EQ2, &v.Layer.EQ3}
	for i, b := range bands {
		if v.Layer.EQBitmask&(1<<uint(i)) == 0 {
			continue
		}
		freq := b.EffectiveFreq + b.Vel2Freq*float64(v.Vel)/127.0
		gain := b.Gain + b.Vel2Gain*float64(v.Vel)/127.0
		q := freq / b.Bandwidth
		logcutoff := 1200*math.Log2(freq/440.0) + 5700
		setPeakingEQ(&v.EQCoeffs[i], logcutoff, q, gain, float64(v.module.SampleRate))
		if v.Layer.EQBitmask&(1<<uint(i)) != 0 && (v.LastEQBitmask&(1<<uint(i))) == 0 {
			v.EQLeft[i].Reset()
			v.EQRight[i].Reset()
		}
	}
}

// setPeakingEQ sets c to an RBJ peaking-EQ band at logcutoff cents, quality
// q, and gain in dB.
func setPeakingEQ(c *BiquadCoeffs, logcutoff, q, gainDb, srate float64) {
	sinw, cosw := sincosAt(logcutoff, srate)
	a := math.Pow(10, gainDb/40)
	alpha := sinw / (2 * q)
	b0 := 1 + alpha*a
	b1 := -2 * cosw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw
	a2 := 1 - alpha/a
	c.b0, c.b1, c.b2 = b0/a0, b1/a0, b2/a0
	c.a1, c.a2 = a1/a0, a2/a0
}

// recomputeFilter sets the voice's main filter coefficients (and, for
// 4-pole/hybrid types, the cascaded second stage) per the layer's filter
// type (spec.md §4.4 step 13).
func (v *Voice) recomputeFilter(l *LayerData, logcutoff, q float64) {
	srate := v.module.SampleRate
	switch l.FilType {
	case FilterLP6:
		SetOnePoleLP(&v.FilterCoeffs, logcutoff, srate)
	case FilterLP12:
		SetLowpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
	case FilterLP12NR:
		SetLowpassRBJ(&v.FilterCoeffs, logcutoff, 0.707, srate)
	case FilterLP24:
		SetLowpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
		v.FilterCoeffsExtra = v.FilterCoeffs
	case FilterLP24NR:
		SetLowpassRBJ(&v.FilterCoeffs, logcutoff, 0.707, srate)
		v.FilterCoeffsExtra = v.FilterCoeffs
	case FilterLP24Hybrid:
		SetLowpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
		SetOnePoleLP(&v.FilterCoeffsExtra, logcutoff, srate)
	case FilterHP6:
		SetOnePoleHP(&v.FilterCoeffs, logcutoff, srate)
	case FilterHP12:
		SetHighpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
	case FilterHP12NR:
		SetHighpassRBJ(&v.FilterCoeffs, logcutoff, 0.707, srate)
	case FilterHP24:
		SetHighpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
		v.FilterCoeffsExtra = v.FilterCoeffs
	case FilterHP24NR:
		SetHighpassRBJ(&v.FilterCoeffs, logcutoff, 0.707, srate)
		v.FilterCoeffsExtra = v.FilterCoeffs
	case FilterBP6, FilterBP12:
		SetBandpassRBJ(&v.FilterCoeffs, logcutoff, q, srate)
	case FilterNone:
		// no filtering; leave coefficients untouched, runFilterChain skips.
	}
}

// runFilterChain applies the voice's main (and, for 4-pole/hybrid types,
// cascaded second) filter stage to buf in place.
func (v *Voice) runFilterChain(l *LayerData, buf []float32) {
	if l.FilType == FilterNone || l.Cutoff == -1 {
		return
	}
	ProcessStereo(&v.FilterLeft, &v.FilterRight, &v.FilterCoeffs, buf)
	if l.FilType.Is4Pole() {
		// lp24hybrid cascades a one-pole stage (expressed as a biquad
		// with its second-order terms zeroed, spec.md §4.4 step 13)
		// instead of a second resonant RBJ stage.
		ProcessStereo(&v.FilterLeft2, &v.FilterRight2, &v.FilterCoeffsExtra, buf)
	}
}

// runEQChain applies up to three active parametric EQ bands in series.
func (v *Voice) runEQChain(buf []float32) {
	for i := 0; i < 3; i++ {
		if v.Layer.EQBitmask&(1<<uint(i)) == 0 {
			continue
		}
		ProcessStereo(&v.EQLeft[i], &v.EQRight[i], &v.EQCoeffs[i], buf)
	}
}
