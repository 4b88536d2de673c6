package layout_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/farcloser/mdfdiff/internal/herrors"
	"github.com/farcloser/mdfdiff/internal/layout"
	"github.com/farcloser/mdfdiff/internal/types"
)

const sampleLayout = "MDFourierAudioBlockFile 1.0\n" +
	"fixture\n" +
	"16.6666666\n" +
	"3\n" +
	"Sync s 1 10 0x000000\n" +
	"Silence n 1 60 0x000000\n" +
	"Tone1k 1 2 60 0xFF0000\n"

func TestLoadParsesLayout(t *testing.T) {
	lay, err := layout.Load(strings.NewReader(sampleLayout))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if lay.Name != "fixture" {
		t.Errorf("Name = %q, want %q", lay.Name, "fixture")
	}

	if len(lay.Types) != 3 {
		t.Fatalf("len(Types) = %d, want 3", len(lay.Types))
	}

	// 1 sync element + 1 silence element + 2 tone elements.
	if lay.TotalChunks != 4 {
		t.Errorf("TotalChunks = %d, want 4", lay.TotalChunks)
	}

	// Only the Tone1k (User-kind) elements count as regular chunks.
	if lay.RegularChunks != 2 {
		t.Errorf("RegularChunks = %d, want 2", lay.RegularChunks)
	}
}

func TestLoadDerivesElementDurations(t *testing.T) {
	lay, err := layout.Load(strings.NewReader(sampleLayout))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// 60 frames * 16.6666666ms / 1000 = 1.0 second per Tone1k element.
	toneIdx := 2 // flattened position of the first Tone1k element (after sync, silence)

	want := 1.0
	if got := lay.BlockDuration(toneIdx); math.Abs(got-want) > 1e-6 {
		t.Errorf("BlockDuration(%d) = %v, want %v", toneIdx, got, want)
	}

	if name := lay.BlockName(toneIdx); name != "Tone1k" {
		t.Errorf("BlockName(%d) = %q, want Tone1k", toneIdx, name)
	}
}

func TestElementTimeOffsetExcludesSyncBlock(t *testing.T) {
	// Reproduces spec's worked example: (Sync,s,1,10), (Silence,n,1,60),
	// (Tone,1,5,30) at platformMsPerFrame=16.6883 gives
	// blockTimeOffset(2) = 0.0*1 + 16.6883*60/1000*1 = 1.001298s. The Sync
	// block's 10 frames must contribute nothing: sync anchors are found
	// before the timed pattern starts, not spent inside it.
	body := "MDFourierAudioBlockFile 1.0\n" +
		"fixture\n" +
		"16.6883\n" +
		"3\n" +
		"Sync s 1 10 0x000000\n" +
		"Silence n 1 60 0x000000\n" +
		"Tone 1 5 30 0xFF0000\n"

	lay, err := layout.Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := 1.001298
	if got := lay.ElementTimeOffset(2); math.Abs(got-want) > 1e-6 {
		t.Errorf("ElementTimeOffset(2) = %v, want %v", got, want)
	}
}

func TestFirstSilenceIndex(t *testing.T) {
	lay, err := layout.Load(strings.NewReader(sampleLayout))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if idx := lay.FirstSilenceIndex(); idx != 1 {
		t.Errorf("FirstSilenceIndex() = %d, want 1 (after the single sync element)", idx)
	}
}

func TestSetPlatformMsPerFrameRecomputesDurations(t *testing.T) {
	lay, err := layout.Load(strings.NewReader(sampleLayout))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	toneIdx := 2
	before := lay.BlockDuration(toneIdx)

	lay.SetPlatformMsPerFrame(lay.PlatformMsPerFrame * 2)

	after := lay.BlockDuration(toneIdx)
	if math.Abs(after-2*before) > 1e-6 {
		t.Errorf("after doubling PlatformMsPerFrame, BlockDuration = %v, want %v", after, 2*before)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	_, err := layout.Load(strings.NewReader("not a layout file\n"))
	if !errors.Is(err, herrors.ErrMalformedLayout) {
		t.Errorf("error = %v, want wrapping %v", err, herrors.ErrMalformedLayout)
	}
}

func TestLoadRejectsEmptyTypeList(t *testing.T) {
	body := "MDFourierAudioBlockFile 1.0\nfixture\n16.6666666\n0\n"

	_, err := layout.Load(strings.NewReader(body))
	if !errors.Is(err, herrors.ErrEmptyLayout) {
		t.Errorf("error = %v, want wrapping %v", err, herrors.ErrEmptyLayout)
	}
}

func TestLoadParsesKindTokens(t *testing.T) {
	body := "MDFourierAudioBlockFile 1.0\n" +
		"fixture\n" +
		"16.6666666\n" +
		"3\n" +
		"Silence n 1 60 0x000000\n" +
		"Sync s 1 10 0x000000\n" +
		"Background -1 1 60 0x000000\n"

	lay, err := layout.Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantKinds := []types.BlockKind{types.KindSilence, types.KindSync, types.KindControl}
	for i, want := range wantKinds {
		if got := lay.Types[i].Kind; got != want {
			t.Errorf("Types[%d].Kind = %v, want %v", i, got, want)
		}
	}
}
