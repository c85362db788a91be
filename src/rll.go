package sampler

/*------------------------------------------------------------------
 *
 * Name:	rll
 *
 * Purpose:	RLL (run-time layer list) partitions a program's layers by
 *		trigger type so the matcher never scans release-trigger
 *		layers on a note-on or attack layers on a note-off (spec.md
 *		§4.2), mirroring sampler_rll_build in
 *		original_source/sampler_prg.c.
 *
 *---------------------------------------------------------------*/

// RLL is the pre-partitioned view of a program's layers the matcher walks.
type RLL struct {
	AttackLayers  []*LayerData // trigger != release
	ReleaseLayers []*LayerData // trigger == release
}

// buildRLL partitions layers into attack and release lists, preserving each
// list's original relative order (NextLayer returns its matches in this
// order, spec.md §4.1).
func buildRLL(layers []*LayerData) *RLL {
	rll := &RLL{}
	for _, l := range layers {
		if l.Trigger == TriggerRelease {
			rll.ReleaseLayers = append(rll.ReleaseLayers, l)
		} else {
			rll.AttackLayers = append(rll.AttackLayers, l)
		}
	}
	return rll
}
