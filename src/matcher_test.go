package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func testLayer(t testing.TB) *LayerData {
	l := NewLayerData()
	l.EffWaveform = &Waveform{Name: "w", Channels: 1, Frames: 1000, PreloadedFrames: 1000, Data: make([]int16, 1000)}
	return l
}

func Test_Matches_RejectsOutOfKeyRange(t *testing.T) {
	l := testLayer(t)
	l.LoKey, l.HiKey = 60, 64
	c := &Channel{PreviousNote: -1}

	assert.False(t, matches(l, c, 65, 100, 1, 0.5, false))
	assert.True(t, matches(l, c, 62, 100, 1, 0.5, false))
}

func Test_Matches_RejectsNoWaveform(t *testing.T) {
	l := NewLayerData()
	c := &Channel{}
	assert.False(t, matches(l, c, 60, 100, 1, 0.5, false))
}

func Test_Matches_TriggerFirstVsLegato(t *testing.T) {
	l := testLayer(t)
	l.Trigger = TriggerFirst
	c := &Channel{}

	assert.True(t, matches(l, c, 60, 100, 1, 0.5, false))
	assert.False(t, matches(l, c, 60, 100, 1, 0.5, true))

	l.Trigger = TriggerLegato
	assert.False(t, matches(l, c, 60, 100, 1, 0.5, false))
	assert.True(t, matches(l, c, 60, 100, 1, 0.5, true))
}

// Test_RoundRobin_FiresEveryKthMatch checks the periodicity property: a
// layer with seq_length N only fires on every Nth otherwise-matching note
// event directed at it.
func Test_RoundRobin_FiresEveryKthMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "seq_length")
		l := testLayer(t)
		l.RoundRobin = RoundRobinState{SeqLength: n, CurrentSeqPosition: 1, LastKey: -1}
		c := &Channel{}

		attempts := rapid.IntRange(1, 40).Draw(t, "attempts")
		fired := 0
		for i := 1; i <= attempts; i++ {
			if matches(l, c, 60, 100, 1, 0.5, false) {
				fired++
				assert.Zero(t, i%n, "layer fired on attempt %d, not a multiple of seq_length %d", i, n)
			}
		}
		assert.Equal(t, attempts/n, fired)
	})
}

func Test_Matches_Keyswitch(t *testing.T) {
	l := testLayer(t)
	l.SwLoKey, l.SwHiKey = 0, 10
	l.SwLast = 5
	l.EffUseKeyswitch = true
	c := &Channel{}

	assert.False(t, matches(l, c, 60, 100, 1, 0.5, false), "no keyswitch pressed yet")

	matches(l, c, 5, 100, 1, 0.5, false) // pressing the keyswitch key itself also updates LastKeyswitch
	assert.Equal(t, 5, l.LastKeyswitch)
	assert.True(t, matches(l, c, 60, 100, 1, 0.5, false))
}

// Test_Matches_KeyswitchOutsidePlayRangeStillRegisters exercises a note that
// lands in a layer's switch range but outside that same layer's own play
// range (e.g. a keyswitch key at note 36 below a melodic layer's LoKey):
// the tracking must still update even though this call returns false.
func Test_Matches_KeyswitchOutsidePlayRangeStillRegisters(t *testing.T) {
	l := testLayer(t)
	l.LoKey, l.HiKey = 60, 72 // the playable range
	l.SwLoKey, l.SwHiKey = 36, 36
	l.SwLast = 36
	l.EffUseKeyswitch = true
	c := &Channel{}

	assert.False(t, matches(l, c, 36, 100, 1, 0.5, false), "note 36 is below LoKey, produces no sound")
	assert.Equal(t, 36, l.LastKeyswitch, "keyswitch tracking must update even when the range gate rejects the note")
	assert.True(t, matches(l, c, 64, 100, 1, 0.5, false), "layer A now selected by the keyswitch")
}
