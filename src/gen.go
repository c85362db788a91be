package sampler

/*------------------------------------------------------------------
 *
 * Name:	gen
 *
 * Purpose:	Generator is the voice's playback cursor: 32.32 fixed-point
 *		position, loop/end bounds, the resident-vs-streaming sample
 *		source, and the linear-interpolating fetch used once per
 *		frame in Voice.ProcessBlock (spec.md §3, §4.4 steps 7-17),
 *		ported from the bigpos/virtpos arithmetic and
 *		sampler_gen_sample_playback in original_source/sampler_voice.c.
 *
 *---------------------------------------------------------------*/

// noLoopStart is the sentinel LoopStart value meaning "not looping",
// mirroring the original's (uint32_t)-1 loop_start.
const noLoopStart = ^uint32(0)

// Generator drives one voice's sample fetch. bigpos/virtpos count whole
// samples in the top 32 bits and a fractional position in the bottom 32
// (spec.md §3); bigdelta/virtdelta are the corresponding per-sample step,
// recomputed every block from pitch (voice_process.go step 7).
type Generator struct {
	BigPos, VirtPos     uint64
	BigDelta, VirtDelta uint64

	Channels int

	// Resident sample source, used when InStreamingBuffer is false.
	SampleData []int16

	// Streaming source, used when InStreamingBuffer is true; refilled by
	// the owning PrefetchPipe between blocks.
	StreamingBuffer       []int16
	StreamingBufferFrames uint32
	InStreamingBuffer     bool
	PrefetchOnlyLoop      bool

	// Loop/end bounds, in frames. LoopStart == noLoopStart means "no
	// loop": playback stops at CurSampleEnd instead of wrapping.
	LoopStart, LoopEnd uint32
	CurSampleEnd       uint32
	LoopCount          int // >0: stop looping after this many more wraps

	LoopOverlap     uint32
	LoopOverlapStep float64
	overlapRemain   uint32 // samples left in the post-wrap crossfade

	// Interpolation splice tails spanning a loop or end boundary,
	// precomputed by LayerData.PrepareRuntime (spec.md §4.4 step 11).
	// Scratch covers [boundary-order, boundary+order) in frames.
	Scratch            []int16
	ScratchBandlimited []int16

	StretchingJump      float64
	StretchingCrossfade float64

	Consumed uint32
	Finished bool
}

// Reset clears cursor state for a freshly started voice. The caller
// (Voice.Start) fills in SampleData/loop bounds/deltas afterward.
func (g *Generator) Reset() {
	*g = Generator{}
}

// frame returns the left/right samples at frame index pos, wrapping into
// the loop region once pos has passed LoopEnd and the voice is looping.
// Positions are resolved against the splice tail (Scratch) when they fall
// within MaxInterpolationOrder frames of a loop or end boundary, avoiding
// an audible click at the join; elsewhere it reads straight from the
// resident or streaming buffer.
func (g *Generator) frame(pos uint32) (left, right int16) {
	looping := g.LoopStart != noLoopStart

	if looping && pos >= g.LoopEnd {
		span := g.LoopEnd - g.LoopStart
		if span == 0 {
			pos = g.LoopStart
		} else {
			pos = g.LoopStart + (pos-g.LoopEnd)%span
		}
	} else if !looping && pos >= g.CurSampleEnd {
		if g.CurSampleEnd == 0 {
			return 0, 0
		}
		pos = g.CurSampleEnd - 1
	}

	const order = MaxInterpolationOrder
	if looping && g.LoopEnd >= uint32(order) && pos >= g.LoopEnd-uint32(order) && pos < g.LoopEnd && len(g.ScratchBandlimited) == 0 && len(g.Scratch) > 0 {
		return g.spliceFrame(g.Scratch, order-int(g.LoopEnd-pos), order)
	}
	if !looping && g.CurSampleEnd >= uint32(order) && pos >= g.CurSampleEnd-uint32(order) && pos < g.CurSampleEnd && len(g.Scratch) > 0 {
		return g.spliceFrame(g.Scratch, order-int(g.CurSampleEnd-pos), order)
	}

	return g.fetch(pos)
}

func (g *Generator) spliceFrame(scratch []int16, idx, order int) (left, right int16) {
	_ = order
	base := idx * g.Channels
	if base < 0 || base+g.Channels > len(scratch) {
		return 0, 0
	}
	if g.Channels == 2 {
		return scratch[base], scratch[base+1]
	}
	return scratch[base], scratch[base]
}

func (g *Generator) fetch(pos uint32) (left, right int16) {
	var data []int16
	if g.InStreamingBuffer {
		data = g.StreamingBuffer
	} else {
		data = g.SampleData
	}
	base := int(pos) * g.Channels
	if base < 0 || base >= len(data) {
		return 0, 0
	}
	if g.Channels == 2 {
		if base+1 >= len(data) {
			return data[base], data[base]
		}
		return data[base], data[base+1]
	}
	return data[base], data[base]
}

// SamplePlayback fills out (interleaved stereo float32, length >=
// 2*maxFrames) with up to maxFrames of linearly-interpolated, looped
// playback advancing bigpos by bigdelta each sample, mirroring
// sampler_gen_sample_playback. Returns the number of frames actually
// produced; fewer than maxFrames means playback reached CurSampleEnd with
// no loop and g.Finished is now true.
func (g *Generator) SamplePlayback(out []float32, maxFrames uint32) uint32 {
	var produced uint32
	for produced < maxFrames {
		if g.Finished {
			break
		}

		posFrame := uint32(g.BigPos >> 32)
		frac := float64(g.BigPos&0xFFFFFFFF) / 4294967296.0

		l0, r0 := g.frame(posFrame)
		l1, r1 := g.frame(posFrame + 1)

		left := float64(l0) + (float64(l1)-float64(l0))*frac
		right := float64(r0) + (float64(r1)-float64(r0))*frac

		if g.overlapRemain > 0 {
			// Crossfade the post-wrap signal with the pre-wrap
			// continuation so a loop join with mismatched content
			// doesn't click (spec.md §3 loop_overlap).
			tailPos := g.LoopEnd + (g.LoopOverlap - g.overlapRemain)
			tl, tr := g.fetch(tailPos)
			mix := 1 - float64(g.overlapRemain)*g.LoopOverlapStep
			left = float64(tl)*(1-mix) + left*mix
			right = float64(tr)*(1-mix) + right*mix
			g.overlapRemain--
		}

		out[2*produced] = float32(left)
		out[2*produced+1] = float32(right)

		g.BigPos += g.BigDelta
		g.VirtPos += g.VirtDelta
		produced++
		g.Consumed++

		newPos := uint32(g.BigPos >> 32)
		looping := g.LoopStart != noLoopStart
		if looping && newPos >= g.LoopEnd {
			span := uint64(g.LoopEnd-g.LoopStart) << 32
			if span == 0 {
				g.BigPos = uint64(g.LoopStart) << 32
			} else {
				g.BigPos -= span
			}
			g.VirtPos = g.BigPos
			g.overlapRemain = g.LoopOverlap
			if g.LoopCount > 0 {
				g.LoopCount--
				if g.LoopCount == 0 {
					g.LoopStart = noLoopStart
				}
			}
		} else if !looping && newPos >= g.CurSampleEnd {
			g.Finished = true
		}
	}
	return produced
}
