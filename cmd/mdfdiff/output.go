//nolint:wrapcheck
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/mdfdiff"
	"github.com/farcloser/mdfdiff/internal/output"
	"github.com/farcloser/mdfdiff/internal/types"
)

func outputSignal(sourcePath string, lay *types.Layout, signal *types.Signal, formatName string, justResults bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	meta := output.SignalToMap(lay, signal)
	if formatName == "console" && !justResults {
		meta = friendlySignal(signal, meta)
	}

	data := &format.Data{Object: sourcePath, Meta: meta}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func outputDifferences(
	sourcePath string, lay *types.Layout, reference *types.Signal, diffs types.Differences,
	params mdfdiff.Params, formatName string, justResults bool,
) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	meta := output.DifferencesToMap(lay, diffs)
	if formatName == "console" && !justResults {
		meta = friendlyDifferences(lay, reference, params, diffs, meta)
	}

	data := &format.Data{Object: sourcePath, Meta: meta}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// friendlySignal appends a human-readable per-block peak summary to meta,
// one "[block N] K peak(s) tracked" line per block, prefixed "!!" when the
// block tracked no peaks.
func friendlySignal(signal *types.Signal, meta map[string]any) map[string]any {
	lines := make([]any, 0, len(signal.Blocks))

	for i, block := range signal.Blocks {
		n := block.FirstZeroHertz()
		marker := "  "

		if n == 0 {
			marker = "!!"
		}

		lines = append(lines, fmt.Sprintf("%s [block %d] %d peak(s) tracked", marker, i, n))
	}

	meta["summary"] = lines

	return meta
}

// friendlyDifferences appends a summary line per block that has any
// amplitude difference or missing frequency, marking blocks that have a
// missing frequency or whose worst amplitude difference exceeds twice the
// configured tolerance. The line's
// severity figure is the §4.8 weighting curve selected by
// params.OutputFilterFunction, applied against the reference signal's noise
// floor; it is advisory colour-intensity only and never changes marker
// selection beyond the tolerance check.
func friendlyDifferences(
	lay *types.Layout, reference *types.Signal, params mdfdiff.Params, diffs types.Differences, meta map[string]any,
) map[string]any {
	var lines []any

	for i, bd := range diffs.Blocks {
		if len(bd.AmplDiffs) == 0 && len(bd.MissingFreqs) == 0 {
			continue
		}

		name := ""
		if lay != nil {
			name = lay.BlockName(i)
		}

		marker := "  "
		if len(bd.MissingFreqs) > 0 || worstAmplDiff(bd) > 2*params.Tolerance {
			marker = "!!"
		}

		severity := worstSeverity(reference, bd, params.OutputFilterFunction)

		lines = append(lines, fmt.Sprintf(
			"%s [block %d %s] %d amplitude diff(s) (severity %.2f), %d missing frequenc(ies)",
			marker, i, name, len(bd.AmplDiffs), severity, len(bd.MissingFreqs),
		))
	}

	if lines == nil {
		lines = []any{"no differences found"}
	}

	meta["summary"] = lines

	return meta
}

func worstAmplDiff(bd types.BlockDifferences) float64 {
	var worst float64

	for _, d := range bd.AmplDiffs {
		if abs := math.Abs(d.DiffDb); abs > worst {
			worst = abs
		}
	}

	return worst
}

func worstSeverity(reference *types.Signal, bd types.BlockDifferences, option int) float64 {
	if reference == nil || !reference.HasFloor {
		return 0
	}

	var worst float64

	for _, d := range bd.AmplDiffs {
		if s := mdfdiff.Severity(reference.FloorDb, d.RefDb, option); s > worst {
			worst = s
		}
	}

	return worst
}
