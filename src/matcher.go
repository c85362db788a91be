package sampler

/*------------------------------------------------------------------
 *
 * Name:	matcher
 *
 * Purpose:	NextLayer walks a run-time layer list looking for regions
 *		that should fire for one note event, applying range,
 *		keyswitch, trigger-mode, and round-robin gating in the order
 *		spec.md §4.1 specifies, mirroring sampler_layer_data_is_match
 *		/ the trigger loop in original_source/sampler_prg.c.
 *
 *---------------------------------------------------------------*/

// NextLayer returns every layer in layers that matches the given note
// event, in list order (first-match-wins is the caller's responsibility if
// only one should actually sound). legato reports whether this channel
// already has a voice running (true => eligible for trigger=legato, not
// trigger=first).
func NextLayer(layers []*LayerData, c *Channel, note, vel, chanNo int, rnd float64, legato bool) []*LayerData {
	var out []*LayerData
	for _, l := range layers {
		if matches(l, c, note, vel, chanNo, rnd, legato) {
			out = append(out, l)
		}
	}
	return out
}

// matches reports whether l fires for this note event. As side effects it
// records keyswitch tracking for any note in l's switch range (before any
// other gate), and advances l's round-robin cursor once the range/keyswitch
// checks pass — even when round-robin ultimately suppresses the actual
// trigger (spec.md §4.1: "the cursor advances whether or not this exact
// layer ends up sounding").
func matches(l *LayerData, c *Channel, note, vel, chanNo int, rnd float64, legato bool) bool {
	if l.EffWaveform == nil {
		return false
	}

	// keyswitch tracking runs before any range gate below, so a note that
	// lands in this layer's switch range but outside its own play range
	// still registers (spec.md §4.1; sampler_prg.c:36-40).
	if note >= l.SwLoKey && note <= l.SwHiKey {
		l.LastKeyswitch = note
	}

	switch l.Trigger {
	case TriggerFirst:
		if legato {
			return false
		}
	case TriggerLegato:
		if !legato {
			return false
		}
	}

	if note < l.LoKey || note > l.HiKey {
		return false
	}
	if vel < l.LoVel || vel > l.HiVel {
		return false
	}
	if chanNo < l.LoChan || chanNo > l.HiChan {
		return false
	}
	if rnd < l.LoRand || rnd >= l.HiRand {
		return false
	}

	if l.EffUseKeyswitch {
		if l.SwLast != -1 && l.LastKeyswitch != l.SwLast {
			return false
		}
		if l.SwDown != -1 && !c.switchBit(l.SwDown) {
			return false
		}
		if l.SwUp != -1 && c.switchBit(l.SwUp) {
			return false
		}
		if l.SwPrevious != -1 && c.PreviousNote != l.SwPrevious {
			return false
		}
	}

	if l.RoundRobin.SeqLength > 1 {
		l.RoundRobin.LastKey = note
		fire := l.RoundRobin.CurrentSeqPosition == l.RoundRobin.SeqLength
		l.RoundRobin.CurrentSeqPosition++
		if l.RoundRobin.CurrentSeqPosition > l.RoundRobin.SeqLength {
			l.RoundRobin.CurrentSeqPosition = 1
		}
		if !fire {
			return false
		}
	}

	return true
}
