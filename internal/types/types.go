// Package types holds the data model shared by every pipeline stage: the
// WAV format descriptor, the block-layout model, and the per-signal
// analysis results that flow from the Sync Detector through the Matcher.
package types

// BitDepth is the sample width of a PCM stream, in bits.
type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes a decoded PCM stream: sample rate, bit depth and
// channel count, as read from a WAV fmt chunk.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// BlockKind classifies a BlockType's role in the test pattern.
type BlockKind int

const (
	KindSilence BlockKind = iota
	KindSync
	KindControl
	KindUser
)

func (k BlockKind) String() string {
	switch k {
	case KindSilence:
		return "silence"
	case KindSync:
		return "sync"
	case KindControl:
		return "control"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// BlockType is a class of contiguous chunks in the test pattern: a named,
// repeated element with a fixed per-frame duration and display colour.
// ElementSeconds and BlockSeconds are derived from Frames and the layout's
// PlatformMsPerFrame; see Layout.Recompute.
type BlockType struct {
	Name           string
	Kind           BlockKind
	UserID         int // meaningful only when Kind == KindUser or KindControl
	ElementCount   int
	Frames         int
	Colour         string
	ElementSeconds float64
	BlockSeconds   float64
}

// Layout is the parsed, immutable block-layout file: an ordered sequence of
// BlockTypes plus the platform timing constant that converts frames to
// seconds. TotalChunks and RegularChunks are derived at load time.
type Layout struct {
	Name             string
	PlatformMsPerFrame float64
	Types            []BlockType

	TotalChunks   int
	RegularChunks int
}

// Peak is a single ranked frequency-domain bin inside one block. MatchedIndex
// is 0 until the Matcher pairs it with a peak in the corresponding block of
// the other signal, in which case it holds 1 + the matched peak's index.
type Peak struct {
	Hertz       float64
	Magnitude   float64
	AmplitudeDb float64
	PhaseDeg    float64
	MatchedIndex int
}

// BlockResult is the Frequency Analyzer's output for one block: its ranked
// peak list (length MaxFreq, magnitude descending, trailing entries zero),
// plus the FFT parameters used to produce it.
type BlockResult struct {
	Peaks       []Peak
	FFTSeconds  float64
	FFTBinCount int
	Spectrum    []complex128 // retained only if the caller asked for it
}

// FirstZeroHertz returns the index of the first Peak with Hertz == 0, or
// len(b.Peaks) if every peak is populated. Peaks at or after this index are
// considered absent (§3 invariant i).
func (b BlockResult) FirstZeroHertz() int {
	for i, p := range b.Peaks {
		if p.Hertz == 0 {
			return i
		}
	}

	return len(b.Peaks)
}

// Signal is one fully analyzed recording: its source WAV format, every
// block's result, and (optionally) the noise floor measured from the
// layout's first Silence block.
type Signal struct {
	SourceFile string
	Format     PCMFormat
	Blocks     []BlockResult

	HasFloor bool
	FloorHz  float64
	FloorDb  float64

	// Warnings holds advisory, non-fatal diagnostics (DC offset, clipped
	// calibration pulses, silence-floor sanity) surfaced by
	// internal/diagnostics. They never affect the pipeline's numeric
	// output, only what is reported alongside it.
	Warnings []string
}

// AmplitudeDifference is a matched peak pair whose dB levels differ by more
// than the configured tolerance.
type AmplitudeDifference struct {
	Hertz  float64
	RefDb  float64
	DiffDb float64
}

// MissingFrequency is a reference peak with no corresponding test peak
// within HzWidth.
type MissingFrequency struct {
	Hertz float64
	Db    float64
}

// BlockDifferences holds the Matcher's output for a single block.
type BlockDifferences struct {
	AmplDiffs    []AmplitudeDifference
	MissingFreqs []MissingFrequency
}

// Differences is the Matcher's full output across every block of a signal
// pair: one BlockDifferences per block index, in layout order.
type Differences struct {
	Blocks []BlockDifferences
}
