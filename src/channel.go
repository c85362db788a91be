package sampler

/*------------------------------------------------------------------
 *
 * Name:	channel
 *
 * Purpose:	Channel is external to this spec except for its interface
 *		(spec.md §2 item 8): CC array, pitchwheel, switch bitmasks,
 *		previous note, per-note note-on times, and the running-voice
 *		list the voice lifecycle reads/writes. The host's
 *		MIDI demux (out of scope) is responsible for keeping CC[],
 *		PitchWheel, and the switchmasks current as events arrive.
 *
 *---------------------------------------------------------------*/

const numCC = 128
const switchmaskWords = 4 // 128 switch bits

// Channel holds the per-MIDI-channel state voices are bound to while
// running. Only the audio thread ever touches CC/PitchWheel/SwitchMask or
// the running-voice list (spec.md §5): no locking is required.
type Channel struct {
	Index int // 0-based; matcher compares against 1-based ch = Index+1

	CC                [numCC]uint8
	ChannelVolumeCC   uint8 // mirrors CC[7], kept denormalized for the hot path
	ChannelPanCC      uint8 // mirrors CC[10]
	PitchWheel        int32 // -8192..8191

	SwitchMask     [switchmaskWords]uint32
	PreviousNote   int
	PrevNoteStartTime [128]uint64 // module ticks, indexed by note
	PolyAftertouch    [128]uint8 // indexed by note

	Program *Program // active program; swapped atomically by the control thread (spec.md §5)
	Module  *Module  // owning module; voices reach pool/pipe-stack/output state through it

	RunningVoices *Voice // head of the intrusive running list
}

// Addcc mirrors sampler_channel_addcc: it returns the raw value of
// controller n. voice_process.go reads CC 11 (expression) through it as a
// gain factor (spec.md §4.4 step 13) and applies channel volume separately
// via ChannelVolumeCC.
func (c *Channel) Addcc(n int) uint8 {
	return c.CC[n]
}

// switchBit tests bit n of the switchmask; n of -1 means "unused" and must
// be checked by the caller before calling this.
func (c *Channel) switchBit(n int) bool {
	return c.SwitchMask[n>>5]&(1<<uint(n&31)) != 0
}

// linkVoice prepends v to the channel's running list.
func (c *Channel) linkVoice(v *Voice) {
	v.prev = nil
	v.next = c.RunningVoices
	if c.RunningVoices != nil {
		c.RunningVoices.prev = v
	}
	c.RunningVoices = v
}

// unlinkVoice removes v from the channel's running list.
func (c *Channel) unlinkVoice(v *Voice) {
	if c.RunningVoices == v {
		c.RunningVoices = v.next
	}
	if v.prev != nil {
		v.prev.next = v.next
	}
	if v.next != nil {
		v.next.prev = v.prev
	}
	v.prev, v.next = nil, nil
}
