package ucsc

// nextToggle decides whether a request must toggle the server's reverse display
// and what the display state will be afterwards.
//
// with reverse display enabled, a "-" region is shown flipped and a "+" region
// unflipped. "." regions keep whatever state the previous region left.
func nextToggle(strand Strand, flipped, enabled bool) (toggle bool, next bool) {
	if !enabled {
		return false, flipped
	}
	switch {
	case strand == StrandReverse && !flipped:
		return true, true
	case strand == StrandForward && flipped:
		return true, false
	}
	return false, flipped
}
