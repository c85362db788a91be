package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_LFO_OutputStaysInUnitRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		freq := rapid.Float64Range(0.01, 20).Draw(t, "freq")
		var l LFO
		l.Init(LFOParams{Freq: freq}, 44100, BlockSize)

		for i := 0; i < 200; i++ {
			v := l.Run(BlockSize)
			assert.GreaterOrEqual(t, v, -1.0001)
			assert.LessOrEqual(t, v, 1.0001)
		}
	})
}

func Test_LFO_SilentDuringDelay(t *testing.T) {
	var l LFO
	l.Init(LFOParams{Freq: 5, Delay: 1.0}, 44100, BlockSize)
	for i := 0; i < 10; i++ {
		assert.Zero(t, l.Run(BlockSize))
	}
}

func Test_LFO_FadeInRampsTowardFullAmplitude(t *testing.T) {
	var l LFO
	l.Init(LFOParams{Freq: 2, Fade: 0.1}, 44100, BlockSize)
	first := l.Run(BlockSize)
	for i := 0; i < 500; i++ {
		l.Run(BlockSize)
	}
	assert.Less(t, first, 0.5)
}
