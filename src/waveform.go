package sampler

/*------------------------------------------------------------------
 *
 * Name:	waveform
 *
 * Purpose:	The waveform handle is an external collaborator: something
 *		else (a sample loader, out of scope here) fills one in and
 *		hands it to a layer. The core only ever reads it.
 *
 *---------------------------------------------------------------*/

// Level is one bandlimited mip entry. Levels are sorted ascending by
// MaxRate; a voice walks them in order looking for the first one whose
// MaxRate covers the current playback rate (see gen.go / voice_process.go).
type Level struct {
	MaxRate uint64 // freq64 units: 32.32 fixed-point samples-per-output-sample ceiling
	Data    []int16
}

// Waveform is a read-only (after load) 16-bit PCM sample, mono or stereo,
// interleaved when stereo. PreloadedFrames is the prefix resident in
// memory; anything past it is only reachable through a PrefetchPipe.
type Waveform struct {
	Name            string
	Channels        int
	Frames          uint32
	PreloadedFrames uint32
	Data            []int16 // length Frames*Channels
	Levels          []Level // optional, ascending MaxRate
}

// FrameAt returns the interleaved sample values for frame index i from Data.
// Callers are responsible for bounds-checking against Frames; this is a hot
// path helper and does not itself bounds-check beyond a slice panic.
func (w *Waveform) FrameAt(i uint32) (left, right int16) {
	idx := int(i) * w.Channels
	left = w.Data[idx]
	if w.Channels == 2 {
		right = w.Data[idx+1]
	} else {
		right = left
	}
	return
}
