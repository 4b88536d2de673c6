//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mdfdiff"
	"github.com/farcloser/mdfdiff/internal/layout"
	"github.com/farcloser/mdfdiff/internal/types"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze one recording's frequency content against a layout",
		ArgsUsage: "<file | ->",
		Flags:     sharedFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d, expected 1 (file path or \"-\")", errInvalidArgCount, cmd.NArg())
			}

			lay, err := loadLayout(cmd.String("layout"))
			if err != nil {
				return err
			}

			params, err := paramsFromCmd(cmd)
			if err != nil {
				return err
			}

			inputPath := cmd.Args().First()

			factory, err := readerFactory(inputPath)
			if err != nil {
				return err
			}

			signal, err := mdfdiff.Analyze(factory, lay, params)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputSignal(inputPath, lay, signal, cmd.String("format"), cmd.Bool("just-results"))
		},
	}
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
