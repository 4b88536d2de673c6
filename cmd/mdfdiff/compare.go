//nolint:wrapcheck
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mdfdiff"
)

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two recordings of the same test pattern block by block",
		ArgsUsage: "<reference.wav> <test.wav>",
		Flags:     sharedFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("%w: got %d, expected 2 (reference, test)", errInvalidArgCount, cmd.NArg())
			}

			lay, err := loadLayout(cmd.String("layout"))
			if err != nil {
				return err
			}

			params, err := paramsFromCmd(cmd)
			if err != nil {
				return err
			}

			refPath := cmd.Args().Get(0)
			testPath := cmd.Args().Get(1)

			refFactory, err := readerFactory(refPath)
			if err != nil {
				return err
			}

			testFactory, err := readerFactory(testPath)
			if err != nil {
				return err
			}

			reference, test, err := mdfdiff.AnalyzePair(refFactory, testFactory, lay, params)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			diffs := mdfdiff.Compare(reference, test, params)

			return outputDifferences(testPath, lay, reference, diffs, params, cmd.String("format"), cmd.Bool("just-results"))
		},
	}
}
