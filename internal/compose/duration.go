package compose

// Timing constants shared across the engine. The narration buffer leaves a
// short tail of background after speech ends.
const (
	DefaultDurationSeconds = 18.0
	NarrationBufferSeconds = 2.0
)

// ResolveDuration determines the authoritative output length for one render.
//
// A usable narration clip overrides the hint entirely: the video runs for the
// narration plus the buffer, even when that exceeds what the caller asked for.
// Without narration the hint stands, falling back to the nominal default when
// the hint is unset. Narration that failed to load upstream arrives here as a
// nil clip and therefore never influences the duration.
func ResolveDuration(hint float64, narration *Clip, buffer float64) float64 {
	if narration.Usable() {
		if buffer < 0 {
			buffer = 0
		}
		return narration.Duration + buffer
	}
	if hint <= 0 {
		return DefaultDurationSeconds
	}
	return hint
}
