//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mdfdiff"
	"github.com/farcloser/mdfdiff/internal/layout"
	"github.com/farcloser/mdfdiff/internal/types"
	"github.com/farcloser/mdfdiff/internal/weighting"
)

const outputFile = "mdfdiff-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoPairs      = errors.New("no matching reference/test .wav pairs found")
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Compare every reference/test.wav pair under a folder and write a JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "layout",
				Aliases:  []string{"l"},
				Usage:    "Block-layout file shared by every pair",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.IntFlag{
				Name:  "output-filter-function",
				Usage: "Severity weighting curve, 0..6 (§4.8), used for each pair's worst_severity figure",
				Value: 2,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument: folder path")
			}

			folder := cmd.Args().First()
			workers := max(int(cmd.Int("workers")), 1) //nolint:gosec // bounded CLI input

			outputFilterFunction := int(cmd.Int("output-filter-function")) //nolint:gosec // bounded CLI input
			if outputFilterFunction < 0 || outputFilterFunction > 6 {
				return fmt.Errorf("output-filter-function %d out of range (want 0..6)", outputFilterFunction)
			}

			lay, err := loadLayout(cmd.String("layout"))
			if err != nil {
				return err
			}

			return runReport(folder, lay, workers, outputFilterFunction)
		},
	}
}

// pair is one matched reference/test.wav found under folder/reference and
// folder/test, sharing the same base filename.
type pair struct {
	name      string
	reference string
	test      string
}

func runReport(folder string, lay *types.Layout, workers, outputFilterFunction int) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	pairs, err := collectPairs(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(pairs) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoPairs)
	}

	fmt.Fprintf(os.Stderr, "Found %d pair(s) to compare (%d workers)\n", len(pairs), workers)

	startTime := time.Now()
	results := make([]Record, len(pairs))

	var progress atomic.Int64

	sem := make(chan struct{}, workers)

	var waitGroup sync.WaitGroup

	for idx, p := range pairs {
		waitGroup.Add(1)

		go func(idx int, p pair) {
			defer waitGroup.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = processPair(p, lay, outputFilterFunction)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(pairs), p.name)
		}(idx, p)
	}

	waitGroup.Wait()

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	for idx := range results {
		if results[idx].Error != "" {
			failed++
		}

		if err := enc.Encode(&results[idx]); err != nil {
			slog.Error("writing record", "pair", pairs[idx].name, "error", err)
		}
	}

	out.Close()

	if err := compressFile(outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nDone: %d pairs in %s (%d failed)\n", len(pairs), elapsed.Truncate(time.Millisecond), failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n\n", outputFile, outputFile)

	return runDigest(outputFile, 0)
}

func processPair(p pair, lay *types.Layout, outputFilterFunction int) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	refFactory := func() (io.Reader, error) { return os.Open(p.reference) } //nolint:gosec
	testFactory := func() (io.Reader, error) { return os.Open(p.test) }     //nolint:gosec

	params := mdfdiff.DefaultParams()
	params.OutputFilterFunction = outputFilterFunction

	analyzeStart := time.Now()

	reference, test, err := mdfdiff.AnalyzePair(refFactory, testFactory, lay, params)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))

	if err != nil {
		return Record{Reference: p.reference, Test: p.test, Error: fmt.Sprintf("analysis failed: %v", err), Timing: timing}
	}

	compareStart := time.Now()
	diffs := mdfdiff.Compare(reference, test, params)
	timing.CompareMs = durationMs(time.Since(compareStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	return Record{
		Reference: p.reference,
		Test:      p.test,
		Summary:   summarize(reference, diffs, outputFilterFunction),
		Timing:    timing,
	}
}

func summarize(reference *types.Signal, diffs types.Differences, outputFilterFunction int) *RecordSummary {
	summary := &RecordSummary{BlockCount: len(diffs.Blocks)}

	for _, bd := range diffs.Blocks {
		summary.AmplitudeDiffCount += len(bd.AmplDiffs)
		summary.MissingFreqCount += len(bd.MissingFreqs)

		for _, d := range bd.AmplDiffs {
			pErr := weighting.PError(reference.FloorDb, d.RefDb)
			if s := weighting.Weight(pErr, outputFilterFunction); s > summary.WorstSeverity {
				summary.WorstSeverity = s
			}
		}
	}

	return summary
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func collectPairs(root string) ([]pair, error) {
	refDir := filepath.Join(root, "reference")
	testDir := filepath.Join(root, "test")

	refFiles, err := listWavFiles(refDir)
	if err != nil {
		return nil, err
	}

	var pairs []pair

	for _, name := range refFiles {
		testPath := filepath.Join(testDir, name)
		if _, err := os.Stat(testPath); err != nil {
			continue
		}

		pairs = append(pairs, pair{
			name:      name,
			reference: filepath.Join(refDir, name),
			test:      testPath,
		})
	}

	slices.SortFunc(pairs, func(a, b pair) int { return strings.Compare(a.name, b.name) })

	return pairs, nil
}

func listWavFiles(dir string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".wav") {
			names = append(names, filepath.Base(path))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}

func loadLayout(path string) (*types.Layout, error) {
	f, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified layout files
	if err != nil {
		return nil, fmt.Errorf("opening layout: %w", err)
	}
	defer f.Close()

	lay, err := layout.Load(f)
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}

	return lay, nil
}
