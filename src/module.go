package sampler

import "github.com/charmbracelet/log"

/*------------------------------------------------------------------
 *
 * Name:	module
 *
 * Purpose:	Module owns the voice pool, pipe stack, sample rate, output
 *		bus layout, and serial counter (spec.md §2 item 9). It is
 *		the sole owner of voice storage: voices are moved between
 *		the module's free list and a channel's running list, never
 *		duplicated (spec.md §3 Ownership).
 *
 *---------------------------------------------------------------*/

// Module is the host's playback engine instance: one fixed-size voice pool,
// one pipe stack, and the stereo output bus layout every voice mixes into.
type Module struct {
	SampleRate float64
	BlockSize  int

	OutputPairs int // number of stereo pairs in Outputs, including aux
	AuxOffset   int // index into Outputs where aux sends begin

	Pipes *PipeStack

	SerialNo uint64
	ticks    uint64 // module.current_time equivalent

	freeVoices *Voice
	voices     []Voice // backing storage; fixed-size pool, never reallocated after NewModule

	Log *log.Logger
}

// NewModule allocates a fixed voice pool of size nvoices and wires it into
// the free list.
func NewModule(sampleRate float64, outputPairs, auxOffset, nvoices int, pipes *PipeStack) *Module {
	m := &Module{
		SampleRate:  sampleRate,
		BlockSize:   BlockSize,
		OutputPairs: outputPairs,
		AuxOffset:   auxOffset,
		Pipes:       pipes,
		voices:      make([]Voice, nvoices),
		Log:         log.Default(),
	}
	for i := range m.voices {
		m.voices[i].module = m
		m.linkFree(&m.voices[i])
	}
	return m
}

func (m *Module) linkFree(v *Voice) {
	v.prev = nil
	v.next = m.freeVoices
	if m.freeVoices != nil {
		m.freeVoices.prev = v
	}
	m.freeVoices = v
}

func (m *Module) unlinkFree(v *Voice) {
	if m.freeVoices == v {
		m.freeVoices = v.next
	}
	if v.prev != nil {
		v.prev.next = v.next
	}
	if v.next != nil {
		v.next.prev = v.prev
	}
	v.prev, v.next = nil, nil
}

// AllocVoice pops the most recently freed voice (LIFO, per spec.md §5
// ordering note) off the free list, or returns nil if the pool is
// exhausted; stealing a running voice is the caller's (Channel's)
// responsibility and out of scope here.
func (m *Module) AllocVoice() *Voice {
	v := m.freeVoices
	if v == nil {
		return nil
	}
	m.unlinkFree(v)
	return v
}

// Tick advances the module's monotonic sample counter by one block; used to
// time release-trigger age calculations (spec.md §4.3).
func (m *Module) Tick() {
	m.ticks += uint64(m.BlockSize)
	m.SerialNo++
}

// CurrentTime returns the module's running sample count.
func (m *Module) CurrentTime() uint64 {
	return m.ticks
}

// ProcessBlock runs every running voice on every channel for one block,
// mixing into outputs (one []float32 per stereo-pair-member, i.e.
// len(outputs) == 2*OutputPairs, each of length BlockSize). This is the
// block-rate entry point a host's mixer (out of scope) calls once per
// audio callback.
func (m *Module) ProcessBlock(channels []*Channel, outputs [][]float32) {
	for _, buf := range outputs {
		for i := range buf {
			buf[i] = 0
		}
	}
	for _, c := range channels {
		v := c.RunningVoices
		for v != nil {
			next := v.next
			v.ProcessBlock(m, outputs)
			v = next
		}
	}
	m.Tick()
}
