//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/mdfdiff/internal/integration/ffmpeg"
	"github.com/farcloser/mdfdiff/internal/integration/ffprobe"
	"github.com/farcloser/mdfdiff/internal/types"
	"github.com/farcloser/mdfdiff/internal/wavfile"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Transcode an arbitrary container to the canonical 16-bit stereo WAV analyze/compare expect",
		ArgsUsage: "<input> <output.wav>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("%w: got %d, expected 2 (input, output.wav)", errInvalidArgCount, cmd.NArg())
			}

			inputPath := cmd.Args().Get(0)
			outputPath := cmd.Args().Get(1)
			streamIndex := int(cmd.Int("stream")) //nolint:gosec // bounded CLI input

			probeResult, err := ffprobe.Probe(ctx, inputPath)
			if err != nil {
				return fmt.Errorf("probing file: %w", err)
			}

			stream, err := findAudioStream(probeResult, streamIndex)
			if err != nil {
				return err
			}

			sampleRate, err := strconv.Atoi(stream.SampleRate)
			if err != nil || sampleRate <= 0 {
				return fmt.Errorf("invalid sample rate from probe: %q", stream.SampleRate)
			}

			in, err := os.Open(inputPath) //nolint:gosec // CLI tool opens user-specified audio files
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer in.Close()

			var pcmBuf bytes.Buffer

			extractFormat := &types.PCMFormat{BitDepth: types.Depth16}

			if err = ffmpeg.ExtractStream(ctx, in, &pcmBuf, streamIndex, extractFormat); err != nil {
				return fmt.Errorf("extracting PCM: %w", err)
			}

			out, err := os.Create(outputPath) //nolint:gosec // CLI tool writes user-specified output path
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer out.Close()

			if err := wavfile.WriteCanonical(out, sampleRate, pcmBuf.Bytes()); err != nil {
				return fmt.Errorf("writing wav: %w", err)
			}

			fmt.Fprintf(os.Stdout, "wrote %s (%d Hz, %d bytes PCM)\n", outputPath, sampleRate, pcmBuf.Len())

			return nil
		},
	}
}

func findAudioStream(result *ffprobe.Result, streamIndex int) (*ffprobe.Stream, error) {
	audioCount := 0

	for i := range result.Streams {
		if result.Streams[i].CodecType == "audio" {
			if audioCount == streamIndex {
				return &result.Streams[i], nil
			}

			audioCount++
		}
	}

	return nil, fmt.Errorf("audio stream index %d not found (file has %d audio streams)", streamIndex, audioCount)
}
