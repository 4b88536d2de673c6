// Package layout parses the declarative block-layout text format that
// describes a test pattern's structure: named block types, their repeat
// counts, per-frame duration, and display colour.
package layout

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/farcloser/mdfdiff/internal/herrors"
	"github.com/farcloser/mdfdiff/internal/types"
)

const (
	magic      = "MDFourierAudioBlockFile"
	maxVersion = 1.0
)

// Load reads a layout file from r per the grammar:
//
//	"MDFourierAudioBlockFile" <version>
//	<layoutName>
//	<platformMsPerFrame>
//	<typeCount>
//	<typeName> <kindToken> <elementCount> <frames> <colour>   (repeated typeCount times)
func Load(r io.Reader) (*types.Layout, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}

	version, err := parseHeader(line)
	if err != nil {
		return nil, err
	}

	if version > maxVersion {
		return nil, fmt.Errorf("%w: %.2f", herrors.ErrUnsupportedVersion, version)
	}

	name, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}

	msLine, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}

	msPerFrame, err := strconv.ParseFloat(strings.TrimSpace(msLine), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: platformMsPerFrame: %w", herrors.ErrMalformedLayout, err)
	}

	countLine, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}

	typeCount, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return nil, fmt.Errorf("%w: typeCount: %w", herrors.ErrMalformedLayout, err)
	}

	if typeCount == 0 {
		return nil, herrors.ErrEmptyLayout
	}

	types_ := make([]types.BlockType, 0, typeCount)

	for i := 0; i < typeCount; i++ {
		tLine, lerr := nextLine(scanner)
		if lerr != nil {
			return nil, lerr
		}

		bt, perr := parseBlockType(tLine)
		if perr != nil {
			return nil, perr
		}

		types_ = append(types_, bt)
	}

	l := &types.Layout{
		Name:               name,
		PlatformMsPerFrame: msPerFrame,
		Types:              types_,
	}
	l.Recompute()

	if l.TotalChunks == 0 {
		return nil, herrors.ErrEmptyLayout
	}

	return l, nil
}

func nextLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", herrors.ErrMalformedLayout, err)
		}

		return "", fmt.Errorf("%w: unexpected end of file", herrors.ErrMalformedLayout)
	}

	return scanner.Text(), nil
}

func parseHeader(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != magic {
		return 0, fmt.Errorf("%w: bad header %q", herrors.ErrMalformedLayout, line)
	}

	version, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: version: %w", herrors.ErrMalformedLayout, err)
	}

	return version, nil
}

func parseBlockType(line string) (types.BlockType, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return types.BlockType{}, fmt.Errorf("%w: bad type line %q", herrors.ErrMalformedLayout, line)
	}

	elementCount, err := strconv.Atoi(fields[2])
	if err != nil {
		return types.BlockType{}, fmt.Errorf("%w: elementCount: %w", herrors.ErrMalformedLayout, err)
	}

	frames, err := strconv.Atoi(fields[3])
	if err != nil {
		return types.BlockType{}, fmt.Errorf("%w: frames: %w", herrors.ErrMalformedLayout, err)
	}

	kind, userID, err := parseKind(fields[1])
	if err != nil {
		return types.BlockType{}, err
	}

	if elementCount < 1 || frames < 1 {
		return types.BlockType{}, fmt.Errorf("%w: elementCount/frames must be >= 1: %q", herrors.ErrMalformedLayout, line)
	}

	return types.BlockType{
		Name:         fields[0],
		Kind:         kind,
		UserID:       userID,
		ElementCount: elementCount,
		Frames:       frames,
		Colour:       fields[4],
	}, nil
}

// parseKind decodes the kindToken grammar: "n" -> Silence, "s" -> Sync,
// otherwise a signed integer where <= 0 is Control and > 0 is User.
func parseKind(token string) (types.BlockKind, int, error) {
	switch token {
	case "n":
		return types.KindSilence, 0, nil
	case "s":
		return types.KindSync, 0, nil
	}

	id, err := strconv.Atoi(token)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: kindToken %q: %w", herrors.ErrMalformedLayout, token, err)
	}

	if id > 0 {
		return types.KindUser, id, nil
	}

	return types.KindControl, id, nil
}
