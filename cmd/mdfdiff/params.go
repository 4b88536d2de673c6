package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mdfdiff"
	"github.com/farcloser/mdfdiff/internal/blockfft"
	"github.com/farcloser/mdfdiff/internal/normalize"
)

// sharedFlags are recognized by both the analyze and compare subcommands.
func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "layout",
			Aliases:  []string{"l"},
			Usage:    "Block-layout file describing the test pattern",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "channel",
			Usage: "Downmix channel: left, right, sum",
			Value: "sum",
		},
		&cli.StringFlag{
			Name:  "window",
			Usage: "FFT window function: none, hann, hamming, flattop, tukey",
			Value: "hann",
		},
		&cli.StringFlag{
			Name:  "normalize",
			Usage: "Normalization policy: global, relative, local",
			Value: "global",
		},
		&cli.FloatFlag{
			Name:  "start-hz",
			Usage: "Low edge of the analyzed band",
			Value: 20,
		},
		&cli.FloatFlag{
			Name:  "end-hz",
			Usage: "High edge of the analyzed band",
			Value: 20000,
		},
		&cli.IntFlag{
			Name:  "max-freq",
			Usage: "Peaks tracked per block",
			Value: 2000,
		},
		&cli.FloatFlag{
			Name:  "hz-width",
			Usage: "Matching tolerance in Hz",
			Value: 2.6,
		},
		&cli.FloatFlag{
			Name:  "tolerance",
			Usage: "Amplitude-difference tolerance in dB",
			Value: 3,
		},
		&cli.FloatFlag{
			Name:  "significant-volume",
			Usage: "Floor below which peaks are not significant, in dB",
			Value: -100,
		},
		&cli.BoolFlag{
			Name:  "diagnostics",
			Usage: "Run advisory pre-flight WAV sanity checks",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Per-block analysis concurrency (1 runs sequentially)",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "output-filter-function",
			Usage: "Severity weighting curve, 0..6 (§4.8); colours the console difference report",
			Value: 2,
		},
		&cli.BoolFlag{
			Name:  "just-results",
			Usage: "Suppress the friendly per-block console summary, printing only the structured result",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
	}
}

func paramsFromCmd(cmd *cli.Command) (mdfdiff.Params, error) {
	params := mdfdiff.DefaultParams()

	channel, err := parseChannel(cmd.String("channel"))
	if err != nil {
		return params, err
	}

	window, err := parseWindow(cmd.String("window"))
	if err != nil {
		return params, err
	}

	policy, err := parsePolicy(cmd.String("normalize"))
	if err != nil {
		return params, err
	}

	outputFilterFunction := int(cmd.Int("output-filter-function")) //nolint:gosec // bounded CLI input
	if outputFilterFunction < 0 || outputFilterFunction > 6 {
		return params, fmt.Errorf("%w: output-filter-function %d (want 0..6)", errInvalidFlagValue, outputFilterFunction)
	}

	params.Channel = channel
	params.Window = window
	params.Normalize = policy
	params.StartHz = cmd.Float("start-hz")
	params.EndHz = cmd.Float("end-hz")
	params.MaxFreq = int(cmd.Int("max-freq")) //nolint:gosec // bounded CLI input
	params.HzWidth = cmd.Float("hz-width")
	params.Tolerance = cmd.Float("tolerance")
	params.SignificantVolume = cmd.Float("significant-volume")
	params.RunDiagnostics = cmd.Bool("diagnostics")
	params.Workers = int(cmd.Int("workers")) //nolint:gosec // bounded CLI input
	params.OutputFilterFunction = outputFilterFunction

	return params, nil
}

func parseChannel(raw string) (blockfft.Channel, error) {
	switch raw {
	case "left":
		return blockfft.ChannelLeft, nil
	case "right":
		return blockfft.ChannelRight, nil
	case "sum":
		return blockfft.ChannelSum, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidFlagValue, raw)
	}
}

func parseWindow(raw string) (blockfft.Kind, error) {
	switch raw {
	case "none":
		return blockfft.None, nil
	case "hann":
		return blockfft.Hann, nil
	case "hamming":
		return blockfft.Hamming, nil
	case "flattop":
		return blockfft.FlatTop, nil
	case "tukey":
		return blockfft.Tukey, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidFlagValue, raw)
	}
}

func parsePolicy(raw string) (normalize.Policy, error) {
	switch raw {
	case "global":
		return normalize.PolicyGlobal, nil
	case "relative":
		return normalize.PolicyRelative, nil
	case "local":
		return normalize.PolicyLocal, nil
	default:
		return 0, fmt.Errorf("%w: %q", errInvalidFlagValue, raw)
	}
}

// readerFactory returns a factory that produces fresh readers for multi-pass
// analysis: for files it re-opens the file each time, for stdin it buffers
// the entire input once.
func readerFactory(source string) (mdfdiff.ReaderFactory, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return func() (io.Reader, error) {
			return bytes.NewReader(data), nil
		}, nil
	}

	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	return func() (io.Reader, error) {
		return os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
	}, nil
}
