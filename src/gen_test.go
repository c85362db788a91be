package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rampWaveform(frames int) []int16 {
	data := make([]int16, frames)
	for i := range data {
		data[i] = int16(i)
	}
	return data
}

func Test_SamplePlayback_NoLoopStopsAtEnd(t *testing.T) {
	var g Generator
	g.Channels = 1
	g.SampleData = rampWaveform(10)
	g.LoopStart = noLoopStart
	g.CurSampleEnd = 10
	g.BigDelta = 1 << 32 // one sample per output sample
	g.Scratch = make([]int16, 0)

	out := make([]float32, 2*20)
	n := g.SamplePlayback(out, 20)

	assert.LessOrEqual(t, n, uint32(10))
	assert.True(t, g.Finished)
}

func Test_SamplePlayback_LoopWrapsIndefinitely(t *testing.T) {
	var g Generator
	g.Channels = 1
	g.SampleData = rampWaveform(10)
	g.LoopStart, g.LoopEnd = 2, 8
	g.CurSampleEnd = 10
	g.BigDelta = 1 << 32
	g.Scratch = make([]int16, 0)

	out := make([]float32, 2*100)
	n := g.SamplePlayback(out, 100)

	assert.Equal(t, uint32(100), n)
	assert.False(t, g.Finished)
}

func Test_SamplePlayback_InterpolatesBetweenFrames(t *testing.T) {
	var g Generator
	g.Channels = 1
	g.SampleData = []int16{0, 100}
	g.LoopStart = noLoopStart
	g.CurSampleEnd = 2
	g.BigDelta = 1 << 31 // half a sample per output sample
	g.Scratch = make([]int16, 0)

	out := make([]float32, 4)
	g.SamplePlayback(out, 2)

	assert.InDelta(t, 0, out[0], 1)
	assert.InDelta(t, 50, out[2], 1)
}
