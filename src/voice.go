package sampler

import "math/rand"

/*------------------------------------------------------------------
 *
 * Name:	voice
 *
 * Purpose:	Voice owns per-note transient state and its lifecycle
 *		transitions (spec.md §4.3), ported from
 *		sampler_voice_activate / _start / _release / _inactivate in
 *		original_source/sampler_voice.c.
 *
 *---------------------------------------------------------------*/

// VoiceMode mirrors spt_inactive/spt_mono16/spt_stereo16.
type VoiceMode int

const (
	ModeInactive VoiceMode = iota
	ModeMono16
	ModeStereo16
)

// Voice is one polyphonic playback instance bound to one layer for its
// lifetime. The module exclusively owns voice storage; Channel/Program/
// Layer are non-owning handles that must outlive the voice (spec.md §3).
type Voice struct {
	module *Module

	mode VoiceMode

	// intrusive linkage into exactly one of module.freeVoices or
	// channel.RunningVoices
	prev, next *Voice

	Channel *Channel
	Program *Program
	Layer   *LayerData

	CurrentPipe PrefetchPipe

	Gen Generator

	AmpEnv    EnvelopeState
	FilterEnv EnvelopeState
	PitchEnv  EnvelopeState

	AmpLFO, FilterLFO, PitchLFO LFO

	FilterLeft, FilterRight   BiquadState
	FilterLeft2, FilterRight2 BiquadState
	FilterCoeffs              BiquadCoeffs
	FilterCoeffsExtra         BiquadCoeffs

	OnepoleLeft, OnepoleRight BiquadOnePole
	OnepoleCoeffs             OnePoleCoeffs

	EQLeft, EQRight   [3]BiquadState
	EQCoeffs          [3]BiquadCoeffs
	LastEQBitmask     uint8

	OutputPairNo int
	Send1Bus, Send2Bus   int
	Send1Gain, Send2Gain float64

	Note, Vel int
	Age       uint64
	Delay     uint64
	SerialNo  uint64

	Released              bool
	ReleasedWithSustain   bool
	ReleasedWithSostenuto bool
	CapturedSostenuto     bool

	LastWaveform      *Waveform
	LastLevel         int
	LastLevelMinRate  uint64
	LayerChanged      bool

	GainFromVel  float64
	GainShift    float64
	CutoffShift  float64
	PitchShift   float64
	Offset       uint32
	RelOffset    float64
	LoopMode     LoopMode
	OffBy        int
}

// BiquadOnePole is a thin alias kept distinct from BiquadState to make the
// tone-control stage's type intent explicit at call sites.
type BiquadOnePole = OnePoleState

// Activate transitions a voice from inactive into the given mode, moving it
// from the module's free list onto its channel's running list (spec.md
// §4.3). Precondition: v.mode == ModeInactive and mode != ModeInactive.
func (v *Voice) Activate(mode VoiceMode) {
	if v.mode != ModeInactive {
		panic("sampler: Activate called on a non-inactive voice")
	}
	if mode == ModeInactive {
		panic("sampler: Activate requires a non-inactive mode")
	}
	if v.Channel == nil {
		panic("sampler: Activate requires v.Channel to be set")
	}
	v.module.unlinkFree(v)
	v.mode = mode
	v.Channel.linkVoice(v)
}

// Inactivate transitions a voice back to inactive, returning any held pipe
// to the module's pipe stack, unlinking from the channel's running list,
// and relinking onto the module's free list (spec.md §4.3). expectActive
// must equal (mode != ModeInactive) before the call.
func (v *Voice) Inactivate(expectActive bool) {
	if (v.mode != ModeInactive) != expectActive {
		panic("sampler: Inactivate precondition violated")
	}
	v.Channel.unlinkVoice(v)
	v.mode = ModeInactive
	if v.CurrentPipe != nil {
		v.module.Pipes.Push(v.CurrentPipe)
		v.CurrentPipe = nil
	}
	v.Channel = nil
	v.module.linkFree(v)
}

// Start realizes a matched layer into this voice's runtime state and
// activates it (spec.md §4.3), mirroring sampler_voice_start.
func (v *Voice) Start(c *Channel, l *LayerData, note, vel int, exgroups *[]int) {
	m := c.Module
	v.module = m
	v.Gen.Reset()
	v.Age = 0

	if l.Trigger == TriggerRelease {
		v.Age = m.CurrentTime() - c.PrevNoteStartTime[note]
		age := float64(v.Age) / m.SampleRate
		if age*l.RtDecay > 84 {
			return
		}
	}

	end := l.effectiveEnd()
	v.LastWaveform = l.EffWaveform
	v.Gen.CurSampleEnd = end
	if end > l.EffWaveform.Frames {
		end = l.EffWaveform.Frames
	}

	v.CurrentPipe = nil
	if end > l.EffWaveform.PreloadedFrames {
		fitsInPrefetch := l.EffLoopMode == LoopContinuous && l.LoopEnd < l.EffWaveform.PreloadedFrames
		if !fitsInPrefetch {
			loopStart, loopEnd := ^uint32(0), end
			if l.EffLoopMode == LoopContinuous || (l.EffLoopMode == LoopSustain && l.LoopEnd >= l.EffWaveform.PreloadedFrames) {
				loopStart, loopEnd = l.LoopStart, l.LoopEnd
			}
			pipe := m.Pipes.Pop(l.EffWaveform, loopStart, loopEnd, l.Count)
			if pipe == nil {
				m.Log.Warn("prefetch pipe pool exhausted, falling back to preloaded-only playback", "layer_waveform", l.EffWaveform.Name)
				end = l.EffWaveform.PreloadedFrames
				v.Gen.CurSampleEnd = end
			} else {
				v.CurrentPipe = pipe
			}
		}
	}

	v.OutputPairNo = (l.Output + c.Index) % m.OutputPairs
	v.SerialNo = m.SerialNo

	delay := l.Delay
	if l.DelayRandom != 0 {
		delay += rand.Float64() * l.DelayRandom
	}
	if delay > 0 {
		v.Delay = uint64(delay * m.SampleRate)
	} else {
		v.Delay = 0
	}

	v.Gen.LoopOverlap = l.LoopOverlap
	if l.LoopOverlap > 0 {
		v.Gen.LoopOverlapStep = 1.0 / float64(l.LoopOverlap)
	} else {
		v.Gen.LoopOverlapStep = 0
	}

	v.GainFromVel = 1 + (l.EffVelcurve[vel]-1)*l.AmpVeltrack*0.01
	v.GainShift = 0
	v.Note = note
	v.Vel = vel
	v.PitchShift = 0
	v.Released = false
	v.ReleasedWithSustain = false
	v.ReleasedWithSostenuto = false
	v.CapturedSostenuto = false
	v.Channel = c
	v.Layer = l
	v.Program = c.Program

	v.AmpEnv.Shape = &l.AmpEnvShape
	v.FilterEnv.Shape = &l.FilterEnvShape
	v.PitchEnv.Shape = &l.PitchEnvShape

	v.CutoffShift = float64(vel)*l.FilVeltrack/127.0 + float64(note-l.FilKeycenter)*l.FilKeytrack
	v.LoopMode = l.EffLoopMode
	v.OffBy = l.OffBy
	v.RelOffset = l.RelOffset

	auxes := (m.OutputPairs*2 - m.AuxOffset) / 2
	if l.Effect1Bus >= 1 && l.Effect1Bus < 1+auxes {
		v.Send1Bus = l.Effect1Bus
	} else {
		v.Send1Bus = 0
	}
	if l.Effect2Bus >= 1 && l.Effect2Bus < 1+auxes {
		v.Send2Bus = l.Effect2Bus
	} else {
		v.Send2Bus = 0
	}
	v.Send1Gain = l.Effect1 * 0.01
	v.Send2Gain = l.Effect2 * 0.01

	if l.Group >= 1 && len(*exgroups) < MaxReleasedGroups {
		found := false
		for _, g := range *exgroups {
			if g == l.Group {
				found = true
				break
			}
		}
		if !found {
			*exgroups = append(*exgroups, l.Group)
		}
	}

	v.AmpLFO.Init(l.AmpLFO, m.SampleRate, m.BlockSize)
	v.FilterLFO.Init(l.FilterLFO, m.SampleRate, m.BlockSize)
	v.PitchLFO.Init(l.PitchLFO, m.SampleRate, m.BlockSize)

	v.FilterLeft.Reset()
	v.FilterRight.Reset()
	v.FilterLeft2.Reset()
	v.FilterRight2.Reset()
	v.OnepoleLeft.Reset()
	v.OnepoleRight.Reset()
	if l.TonectlFreq != 0 {
		SetHighShelfToneControl(&v.OnepoleCoeffs, l.TonectlFreq*3.14159265358979*1.0/m.SampleRate)
	}

	// Per-note init hooks (velocity maps, per-note random offsets, etc.)
	// are an external collaborator in this spec (layer construction is out
	// of scope); nothing to run here beyond what PrepareRuntime already
	// baked into the layer.

	v.Offset = l.Offset
	if v.RelOffset != 0 {
		maxend := l.EffWaveform.PreloadedFrames
		if v.CurrentPipe != nil {
			maxend = maxend / 2
		}
		pos := int64(v.Offset) + int64(v.RelOffset*float64(maxend)*0.01)
		if pos < 0 {
			pos = 0
		}
		if pos > int64(maxend) {
			pos = int64(maxend)
		}
		v.Offset = uint32(pos)
	}

	v.AmpEnv.Reset(m.SampleRate)
	v.FilterEnv.Reset(m.SampleRate)
	v.PitchEnv.Reset(m.SampleRate)

	v.LastEQBitmask = 0

	mode := ModeMono16
	if l.EffWaveform.Channels == 2 {
		mode = ModeStereo16
	}
	v.Channel = c
	v.Activate(mode)

	pos := v.Offset
	if l.OffsetRandom != 0 {
		pos += rand.Uint32() % l.OffsetRandom
	}
	if pos >= end {
		pos = end
	}
	v.Gen.BigPos = uint64(pos) << 32
	v.Gen.VirtPos = uint64(pos) << 32

	if v.CurrentPipe != nil && v.Gen.BigPos != 0 {
		v.CurrentPipe.Consumed(uint32(v.Gen.BigPos >> 32))
	}
	v.LayerChanged = true
}

// Release applies a note-off (or polyphonic-aftertouch choke) to a voice,
// mirroring sampler_voice_release exactly including its delay-interrupt and
// is_polyaft gating.
func (v *Voice) Release(isPolyaft bool) {
	if (v.LoopMode == LoopOneShotChokeable) != isPolyaft {
		return
	}
	if v.Delay >= v.Age+uint64(v.module.BlockSize) {
		v.Released = true
		v.Inactivate(true)
		return
	}
	if v.LoopMode != LoopOneShot && v.Layer.Count == 0 {
		v.Released = true
		if v.LoopMode == LoopSustain && v.CurrentPipe != nil {
			v.CurrentPipe.SetFileLoop(^uint32(0), v.Gen.CurSampleEnd)
		}
	}
}
