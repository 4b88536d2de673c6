package types

import "github.com/farcloser/mdfdiff/internal/numerics"

// BytesPerFrame is the frame size of the canonical input format: 16-bit
// stereo, 2 channels * 2 bytes.
const BytesPerFrame = 4

// Recompute derives ElementSeconds/BlockSeconds for every BlockType and the
// layout-level TotalChunks/RegularChunks counters. Called once at load time
// and again by SetPlatformMsPerFrame.
func (l *Layout) Recompute() {
	l.TotalChunks = 0
	l.RegularChunks = 0

	for i := range l.Types {
		bt := &l.Types[i]
		bt.ElementSeconds = float64(bt.Frames) * l.PlatformMsPerFrame / 1000
		bt.BlockSeconds = float64(bt.ElementCount) * bt.ElementSeconds

		l.TotalChunks += bt.ElementCount

		if bt.Kind != KindSilence && bt.Kind != KindSync && bt.Kind != KindControl {
			l.RegularChunks += bt.ElementCount
		}
	}
}

// SetPlatformMsPerFrame replaces the timing constant and recomputes every
// derived field.
func (l *Layout) SetPlatformMsPerFrame(ms float64) {
	l.PlatformMsPerFrame = ms
	l.Recompute()
}

// elementAt maps a flattened element position to its owning BlockType index
// and the element's repetition index within that type.
func (l *Layout) elementAt(pos int) (typeIdx, subIdx int, ok bool) {
	remaining := pos

	for i, bt := range l.Types {
		if remaining < bt.ElementCount {
			return i, remaining, true
		}

		remaining -= bt.ElementCount
	}

	return 0, 0, false
}

// BlockType returns the BlockType owning element pos, or nil if pos is out
// of range.
func (l *Layout) BlockType(pos int) *BlockType {
	idx, _, ok := l.elementAt(pos)
	if !ok {
		return nil
	}

	return &l.Types[idx]
}

// BlockName returns the name of the BlockType owning element pos.
func (l *Layout) BlockName(pos int) string {
	bt := l.BlockType(pos)
	if bt == nil {
		return ""
	}

	return bt.Name
}

// BlockColour returns the display colour of the BlockType owning element pos.
func (l *Layout) BlockColour(pos int) string {
	bt := l.BlockType(pos)
	if bt == nil {
		return ""
	}

	return bt.Colour
}

// BlockSubIndex returns pos's repetition index within its enclosing
// BlockType (0-based).
func (l *Layout) BlockSubIndex(pos int) int {
	_, sub, ok := l.elementAt(pos)
	if !ok {
		return -1
	}

	return sub
}

// BlockDuration returns the duration in seconds of element pos.
func (l *Layout) BlockDuration(pos int) float64 {
	bt := l.BlockType(pos)
	if bt == nil {
		return 0
	}

	return bt.ElementSeconds
}

// ElementTimeOffset returns the cumulative time in seconds of every element
// strictly before pos, i.e. the start time of element pos within the
// pattern (excluding the sync-pulse anchors, which are external to the
// layout: a Sync BlockType's frames are consumed finding the pulse, not
// spent inside the timed pattern, so it contributes zero to the running
// offset regardless of its declared frame count).
func (l *Layout) ElementTimeOffset(pos int) float64 {
	var offset float64

	remaining := pos

	for _, bt := range l.Types {
		if remaining <= 0 {
			break
		}

		n := remaining
		if n > bt.ElementCount {
			n = bt.ElementCount
		}

		if bt.Kind != KindSync {
			offset += float64(n) * bt.ElementSeconds
		}

		remaining -= n
	}

	return offset
}

// FirstSilenceIndex returns the flattened position of the first element
// belonging to a Silence BlockType, or -1 if the layout has none.
func (l *Layout) FirstSilenceIndex() int {
	pos := 0

	for _, bt := range l.Types {
		if bt.Kind == KindSilence {
			return pos
		}

		pos += bt.ElementCount
	}

	return -1
}

// LastSilenceByteOffset returns the byte offset, relative to the start of
// the pattern (i.e. relative to the leading sync anchor), of the end of the
// last Silence block in the layout. It is the point from which the
// trailing pulse-train search begins.
func (l *Layout) LastSilenceByteOffset(samplesPerSec int) int64 {
	pos := 0
	endSeconds := -1.0

	for _, bt := range l.Types {
		if bt.Kind == KindSilence {
			candidate := l.ElementTimeOffset(pos+bt.ElementCount) //nolint:gosec // pos is bounded by TotalChunks
			if candidate > endSeconds {
				endSeconds = candidate
			}
		}

		pos += bt.ElementCount
	}

	if endSeconds < 0 {
		return 0
	}

	return numerics.RoundUp4(endSeconds * float64(samplesPerSec) * BytesPerFrame)
}

// LastSyncFrameOffset returns the time offset, in seconds, of the end of the
// last Sync-kind block declared in the layout.
func (l *Layout) LastSyncFrameOffset() float64 {
	pos := 0
	offset := 0.0

	for _, bt := range l.Types {
		if bt.Kind == KindSync {
			offset = l.ElementTimeOffset(pos + bt.ElementCount)
		}

		pos += bt.ElementCount
	}

	return offset
}
