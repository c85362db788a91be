package sampler

/*------------------------------------------------------------------
 *
 * Name:	constants
 *
 * Purpose:	Fixed sizes shared across the core, equivalent to
 *		CBOX_BLOCK_SIZE / MAX_INTERPOLATION_ORDER / MAX_RELEASED_GROUPS
 *		in original_source/.
 *
 *---------------------------------------------------------------*/

const (
	// BlockSize is the fixed number of frames processed per Voice.ProcessBlock
	// call (spec.md §4.4: "each call advances the voice by a fixed BLOCK of
	// samples").
	BlockSize = 64

	// MaxInterpolationOrder bounds how many samples of lookahead the
	// resampling interpolator needs past a loop or sample-end boundary.
	MaxInterpolationOrder = 4

	// MaxReleasedGroups bounds how many distinct "choke group" ids a single
	// note-on can record for this call (spec.md §4.3).
	MaxReleasedGroups = 8
)
