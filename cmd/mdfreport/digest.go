package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Summarize a mdfdiff JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "severity-above",
				Usage: "List pairs whose worst severity exceeds this threshold",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: path to report.jsonl")
			}

			return runDigest(cmd.Args().First(), cmd.Float("severity-above"))
		},
	}
}

func runDigest(reportPath string, severityAbove float64) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if severityAbove > 0 {
		printAboveThreshold(records, severityAbove)
	}

	return nil
}

func printAboveThreshold(records []digestRecord, threshold float64) {
	fmt.Println()
	fmt.Printf("--- Pairs above severity %.2f ---\n", threshold)

	found := false

	for _, rec := range records {
		if rec.Summary == nil || rec.Summary.WorstSeverity <= threshold {
			continue
		}

		found = true

		fmt.Printf("  %.3f  %s\n", rec.Summary.WorstSeverity, rec.Test)
	}

	if !found {
		fmt.Println("  (none)")
	}
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0

	var (
		totalAmplDiffs, totalMissing int
		worstOverall                 float64
		worstPair                    string
	)

	severityBuckets := map[string]int{"clean": 0, "mild": 0, "moderate": 0, "severe": 0}

	for _, rec := range records {
		if rec.Error != "" || rec.Summary == nil {
			failed++

			continue
		}

		totalAmplDiffs += rec.Summary.AmplitudeDiffCount
		totalMissing += rec.Summary.MissingFreqCount

		severityBuckets[severityBucket(rec.Summary.WorstSeverity)]++

		if rec.Summary.WorstSeverity > worstOverall {
			worstOverall = rec.Summary.WorstSeverity
			worstPair = rec.Test
		}
	}

	compared := total - failed

	fmt.Println("=== mdfdiff Report Digest ===")
	fmt.Println()
	fmt.Printf("Total pairs:   %d\n", total)
	fmt.Printf("Failed:        %d\n", failed)
	fmt.Printf("Compared:      %d\n", compared)
	fmt.Println()

	fmt.Println("--- Worst Severity ---")
	fmt.Printf("  Clean:     %d\n", severityBuckets["clean"])
	fmt.Printf("  Mild:      %d\n", severityBuckets["mild"])
	fmt.Printf("  Moderate:  %d\n", severityBuckets["moderate"])
	fmt.Printf("  Severe:    %d\n", severityBuckets["severe"])
	fmt.Println()

	fmt.Printf("Amplitude differences (total): %d\n", totalAmplDiffs)
	fmt.Printf("Missing frequencies (total):   %d\n", totalMissing)

	if worstPair != "" {
		fmt.Printf("Worst pair: %s (severity %.3f)\n", worstPair, worstOverall)
	}

	printWorstPairs(records)
}

func severityBucket(s float64) string {
	switch {
	case s >= 0.75:
		return "severe"
	case s >= 0.4:
		return "moderate"
	case s > 0:
		return "mild"
	default:
		return "clean"
	}
}

func printWorstPairs(records []digestRecord) {
	type entry struct {
		test     string
		severity float64
	}

	var entries []entry

	for _, rec := range records {
		if rec.Summary == nil {
			continue
		}

		entries = append(entries, entry{test: rec.Test, severity: rec.Summary.WorstSeverity})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].severity > entries[j].severity })

	const topN = 10
	if len(entries) > topN {
		entries = entries[:topN]
	}

	if len(entries) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("--- Worst Pairs ---")

	for _, e := range entries {
		fmt.Printf("  %.3f  %s\n", e.severity, e.test)
	}
}
