package mdfdiff

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/farcloser/mdfdiff/internal/analyzer"
	"github.com/farcloser/mdfdiff/internal/blockfft"
	"github.com/farcloser/mdfdiff/internal/diagnostics"
	"github.com/farcloser/mdfdiff/internal/match"
	"github.com/farcloser/mdfdiff/internal/normalize"
	sync_ "github.com/farcloser/mdfdiff/internal/sync"
	"github.com/farcloser/mdfdiff/internal/types"
	"github.com/farcloser/mdfdiff/internal/wavfile"
)

// ReaderFactory returns a fresh reader over the same underlying WAV data.
// Only one pass is needed by Analyze itself (the WAV Reader loads the
// whole payload up front, per §4.2), but callers composing Analyze with an
// upstream conversion step (internal/integration/ffmpeg) still want the
// "give me a reader" seam, so the signature is kept.
type ReaderFactory func() (io.Reader, error)

// Analyze runs the full pipeline (§2) over one WAV recording: sync
// detection, block extraction, frequency analysis, and normalization. The
// returned Signal is not yet compared against anything; call Compare with
// two analyzed signals to produce Differences.
//
// For Params.Normalize == normalize.PolicyRelative, Analyze applies
// PolicyGlobal to establish a baseline by itself; use AnalyzePair to
// analyze two signals under true relative normalization.
func Analyze(factory ReaderFactory, lay *types.Layout, params Params) (*types.Signal, error) {
	r, err := factory()
	if err != nil {
		return nil, err
	}

	file, err := wavfile.Load(r)
	if err != nil {
		return nil, err
	}

	signal, err := analyzeFile(file, lay, params)
	if err != nil {
		return nil, err
	}

	switch params.Normalize {
	case normalize.PolicyRelative, normalize.PolicyGlobal:
		normalize.ApplyGlobal(signal, normalizeParams(params))
	case normalize.PolicyLocal:
		normalize.ApplyLocal(signal, normalizeParams(params))
	}

	normalize.FindFloor(signal, lay.FirstSilenceIndex())

	return signal, nil
}

// AnalyzePair analyzes reference then test under true PolicyRelative
// normalization: test is rescaled against the magnitude maximum established
// by reference. For any other policy this is equivalent to two independent
// Analyze calls.
func AnalyzePair(
	refFactory, testFactory ReaderFactory, lay *types.Layout, params Params,
) (reference, test *types.Signal, err error) {
	if params.Normalize != normalize.PolicyRelative {
		reference, err = Analyze(refFactory, lay, params)
		if err != nil {
			return nil, nil, err
		}

		test, err = Analyze(testFactory, lay, params)

		return reference, test, err
	}

	refReader, err := refFactory()
	if err != nil {
		return nil, nil, err
	}

	refFile, err := wavfile.Load(refReader)
	if err != nil {
		return nil, nil, err
	}

	reference, err = analyzeFile(refFile, lay, params)
	if err != nil {
		return nil, nil, err
	}

	m := normalize.RelativeFirst(reference, normalizeParams(params))
	normalize.FindFloor(reference, lay.FirstSilenceIndex())

	testReader, err := testFactory()
	if err != nil {
		return nil, nil, err
	}

	testFile, err := wavfile.Load(testReader)
	if err != nil {
		return nil, nil, err
	}

	test, err = analyzeFile(testFile, lay, params)
	if err != nil {
		return nil, nil, err
	}

	normalize.RelativeSecond(test, m, normalizeParams(params))
	normalize.FindFloor(test, lay.FirstSilenceIndex())

	return reference, test, nil
}

func normalizeParams(params Params) normalize.Params {
	return normalize.Params{SignificantVolume: params.SignificantVolume}
}

func analyzeFile(file *wavfile.File, lay *types.Layout, params Params) (*types.Signal, error) {
	syncParams := sync_.Params{Channel: params.Channel, GapTolerance: params.SyncGapTolerance}

	leading, err := sync_.DetectLeadingPulse(file, syncParams)
	if err != nil {
		return nil, fmt.Errorf("leading pulse: %w", err)
	}

	lastSilenceBytes := lay.LastSilenceByteOffset(file.Format.SampleRate)

	if _, terr := sync_.DetectTrailingPulse(file, leading, lastSilenceBytes, syncParams); terr != nil {
		slog.Debug("mdfdiff.analyzeFile", "stage", "trailing-sync-missing", "error", terr)
	}

	signal := &types.Signal{
		Format: file.Format,
		Blocks: make([]types.BlockResult, lay.TotalChunks),
	}

	cache := blockfft.NewCache(params.Window)
	planner := analyzer.NewPlanner()

	totalFrames := file.Frames()

	analyzeBlock := func(k int) {
		duration := lay.BlockDuration(k)
		n := int(duration * float64(file.Format.SampleRate))

		if n <= 0 {
			return
		}

		startFrame := blockfft.BlockStartFrame(leading, lay.ElementTimeOffset(k), file.Format.SampleRate)

		samples := blockfft.Frames(n, int(startFrame), totalFrames, params.Channel, file.Frame)
		samples = blockfft.Apply(samples, cache)

		signal.Blocks[k] = analyzer.Analyze(samples, file.Format.SampleRate, planner, analyzer.Params{
			StartHz:        params.StartHz,
			EndHz:          params.EndHz,
			MaxFreq:        params.MaxFreq,
			RetainSpectrum: params.RetainSpectrum,
		})
	}

	if params.Workers > 1 {
		group := new(errgroup.Group)
		group.SetLimit(params.Workers)

		for k := 0; k < lay.TotalChunks; k++ {
			k := k

			group.Go(func() error {
				analyzeBlock(k)

				return nil
			})
		}

		_ = group.Wait() // analyzeBlock never returns an error; each block writes its own signal.Blocks[k] slot
	} else {
		for k := 0; k < lay.TotalChunks; k++ {
			analyzeBlock(k)
		}
	}

	if params.RunDiagnostics {
		silenceStart, silenceFrames := 0, 0

		if idx := lay.FirstSilenceIndex(); idx >= 0 {
			start := blockfft.BlockStartFrame(leading, lay.ElementTimeOffset(idx), file.Format.SampleRate)
			silenceStart = int(start)
			silenceFrames = int(lay.BlockDuration(idx) * float64(file.Format.SampleRate))
		}

		signal.Warnings = diagnostics.Run(file, silenceStart, silenceFrames)
	}

	return signal, nil
}

// Compare pairs peaks of reference against test, block by block, and
// returns the Differences (§4.7). Both signals must already be normalized
// and must share the same block count (i.e. were analyzed against the same
// layout).
func Compare(reference, test *types.Signal, params Params) types.Differences {
	normalize.ClearMatched(reference)
	normalize.ClearMatched(test)

	return match.Compare(reference, test, match.Params{
		HzWidth:   params.HzWidth,
		Tolerance: params.Tolerance,
	})
}

// BlockView is one block's worth of data as surfaced by IterateBlocks.
type BlockView struct {
	Index  int
	Name   string
	Colour string
	Kind   types.BlockKind
	Peaks  []types.Peak
}

// IterateBlocks walks signal's blocks in layout order, invoking fn with
// each block's index, name, colour, kind, and peak list (§6).
func IterateBlocks(signal *types.Signal, lay *types.Layout, fn func(BlockView)) {
	for i, block := range signal.Blocks {
		fn(BlockView{
			Index:  i,
			Name:   lay.BlockName(i),
			Colour: lay.BlockColour(i),
			Kind:   blockKind(lay, i),
			Peaks:  block.Peaks,
		})
	}
}

func blockKind(lay *types.Layout, pos int) types.BlockKind {
	bt := lay.BlockType(pos)
	if bt == nil {
		return types.KindControl
	}

	return bt.Kind
}
