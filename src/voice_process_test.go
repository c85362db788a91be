package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantWaveform returns a mono waveform of every sample set to value, long
// enough that a handful of blocks never approaches its end or loop scratch
// tails.
func constantWaveform(frames int, value int16) *Waveform {
	data := make([]int16, frames)
	for i := range data {
		data[i] = value
	}
	return &Waveform{Name: "const", Channels: 1, Frames: uint32(frames), PreloadedFrames: uint32(frames), Data: data}
}

// Test_ProcessBlock_AppliesAmpEnvelopeGainNormalizationAndPan exercises a
// single voice end to end (mono output scenario): amp envelope reaching its
// decay sustain level must scale the output, the generator's raw int16-range
// samples must come out normalized by 1/32768, and a centered pan must split
// the signal evenly between left and right.
func Test_ProcessBlock_AppliesAmpEnvelopeGainNormalizationAndPan(t *testing.T) {
	m := testModule(1)
	c := &Channel{Index: 0, Module: m}
	c.ChannelVolumeCC = 127
	c.ChannelPanCC = 64
	c.CC[11] = 127 // expression, full

	l := NewLayerData()
	l.EffWaveform = constantWaveform(100000, 1000)
	l.AmpEnvShape = EnvelopeShape{
		Stages: [4]EnvelopeStage{
			{EndValue: 0, Duration: 0},
			{EndValue: 1, Duration: 0},
			{EndValue: 1, Duration: 0},
			{EndValue: 1, Duration: 0}, // non-zero so step 1's fast-finish never forces release
		},
		Release: EnvelopeStage{EndValue: 0, Duration: 0.01},
	}
	l.FilType = FilterNone
	l.PrepareRuntime()

	v := m.AllocVoice()
	require.NotNil(t, v)
	var exgroups []int
	v.Start(c, l, 60, 127, &exgroups)
	require.Equal(t, ModeMono16, v.mode)

	left := make([]float32, BlockSize)
	right := make([]float32, BlockSize)
	outputs := [][]float32{left, right}

	// drive the amp envelope through delay/attack/hold/decay into sustain;
	// each block advances it by exactly one stage (all zero-duration).
	for i := 0; i < 4; i++ {
		for j := range left {
			left[j], right[j] = 0, 0
		}
		v.ProcessBlock(m, outputs)
	}
	assert.Equal(t, envStageSustain, v.AmpEnv.CurStage())

	for j := range left {
		left[j], right[j] = 0, 0
	}
	v.ProcessBlock(m, outputs)

	const expectedGain = 1000.0 / 32768.0 * 0.5 // ampenv(1) * unity gain/vol/vol_cc/expr, /32768, pan 0.5/0.5
	assert.InDelta(t, expectedGain, left[0], 1e-6)
	assert.InDelta(t, expectedGain, right[0], 1e-6)
	assert.Less(t, left[0], float32(1.0), "output must be normalized, not raw int16 range")
}

// Test_NextLayer_KeyswitchSelectsAlternateLayer exercises a two-layer
// keyswitch setup: layer A has no keyswitch requirement and always sounds,
// layer B requires a keyswitch key below the playable range to have been
// struck first. Before any keyswitch, only A matches; striking the (silent)
// keyswitch key arms B so it additionally matches subsequent notes.
func Test_NextLayer_KeyswitchSelectsAlternateLayer(t *testing.T) {
	a := testLayer(t)
	a.LoKey, a.HiKey = 36, 96

	b := testLayer(t)
	b.LoKey, b.HiKey = 36, 96
	b.SwLoKey, b.SwHiKey = 24, 24 // a dedicated keyswitch key below the playable range
	b.SwLast = 24
	b.EffUseKeyswitch = true

	layers := []*LayerData{a, b}
	c := &Channel{PreviousNote: -1}

	matched := NextLayer(layers, c, 64, 100, 1, 0.5, false)
	require.Len(t, matched, 1)
	assert.Same(t, a, matched[0])

	// note 24 is below both layers' playable range: it produces no sound
	// but must still register as B's keyswitch (spec.md §4.1).
	matched = NextLayer(layers, c, 24, 100, 1, 0.5, false)
	assert.Len(t, matched, 0)
	assert.Equal(t, 24, b.LastKeyswitch)

	matched = NextLayer(layers, c, 64, 100, 1, 0.5, false)
	require.Len(t, matched, 2, "A always sounds; B now also qualifies on top of it")
	assert.Same(t, a, matched[0])
	assert.Same(t, b, matched[1])
}
