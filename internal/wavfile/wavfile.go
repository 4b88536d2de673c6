// Package wavfile reads a canonical 16-bit stereo PCM RIFF/WAVE file: the
// fmt and data chunk headers, and the sample payload as one owned buffer.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/mdfdiff/internal/herrors"
	"github.com/farcloser/mdfdiff/internal/types"
)

const (
	pcmFormatTag  = 1
	requiredDepth = 16
	requiredChans = 2
)

// File is a fully loaded canonical WAV: its format and the raw sample
// payload, little-endian 16-bit stereo frames.
type File struct {
	Format  types.PCMFormat
	Payload []byte
}

// Load reads r as a canonical RIFF/WAVE/PCM file and returns its format and
// sample payload. It requires PCM format tag 1, 16-bit depth, 2 channels;
// any other shape is ErrMalformedWav.
func Load(r io.Reader) (*File, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE file", herrors.ErrMalformedWav)
	}

	var format types.PCMFormat

	var payload []byte

	for {
		var chunkHdr [8]byte

		if _, err := io.ReadFull(r, chunkHdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}

			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		chunkID := string(chunkHdr[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHdr[4:8])

		switch chunkID {
		case "fmt ":
			fmtBody := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtBody); err != nil {
				return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
			}

			var err error

			format, err = parseFmtChunk(fmtBody)
			if err != nil {
				return nil, err
			}
		case "data":
			payload = make([]byte, chunkSize)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
			}
		}

		if chunkSize%2 == 1 {
			var pad [1]byte
			if _, err := io.ReadFull(r, pad[:]); err != nil {
				break
			}
		}
	}

	if format.SampleRate == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", herrors.ErrMalformedWav)
	}

	if payload == nil {
		return nil, fmt.Errorf("%w: missing data chunk", herrors.ErrMalformedWav)
	}

	return &File{Format: format, Payload: payload}, nil
}

func parseFmtChunk(body []byte) (types.PCMFormat, error) {
	if len(body) < 16 {
		return types.PCMFormat{}, fmt.Errorf("%w: fmt chunk too short", herrors.ErrMalformedWav)
	}

	audioFormat := binary.LittleEndian.Uint16(body[0:2])
	channels := binary.LittleEndian.Uint16(body[2:4])
	sampleRate := binary.LittleEndian.Uint32(body[4:8])
	bitsPerSample := binary.LittleEndian.Uint16(body[14:16])

	if audioFormat != pcmFormatTag {
		return types.PCMFormat{}, fmt.Errorf("%w: unsupported audio format tag %d", herrors.ErrMalformedWav, audioFormat)
	}

	if bitsPerSample != requiredDepth {
		return types.PCMFormat{}, fmt.Errorf("%w: expected %d-bit PCM, got %d", herrors.ErrMalformedWav, requiredDepth, bitsPerSample)
	}

	if channels != requiredChans {
		return types.PCMFormat{}, fmt.Errorf("%w: expected stereo, got %d channels", herrors.ErrMalformedWav, channels)
	}

	return types.PCMFormat{
		SampleRate: int(sampleRate),
		BitDepth:   types.Depth16,
		Channels:   uint(channels),
	}, nil
}

// Frames returns the number of stereo sample frames in the payload.
func (f *File) Frames() int {
	return len(f.Payload) / types.BytesPerFrame
}

// Frame decodes the 16-bit stereo samples at frame index i.
func (f *File) Frame(i int) (left, right int16) {
	off := i * types.BytesPerFrame

	left = int16(binary.LittleEndian.Uint16(f.Payload[off:]))
	right = int16(binary.LittleEndian.Uint16(f.Payload[off+2:]))

	return left, right
}

// WriteCanonical writes payload as a minimal RIFF/WAVE/PCM file: 16-bit
// stereo, the counterpart to Load. Used by the conversion path to hand
// ffmpeg's extracted PCM stream to the rest of the pipeline as a plain WAV.
func WriteCanonical(w io.Writer, sampleRate int, payload []byte) error {
	const (
		fmtChunkSize = 16
		headerSize   = 44
	)

	dataSize := uint32(len(payload)) //nolint:gosec // bounded by extracted audio length
	riffSize := uint32(headerSize-8) + dataSize

	var hdr [headerSize]byte

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], riffSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(hdr[20:22], pcmFormatTag)
	binary.LittleEndian.PutUint16(hdr[22:24], requiredChans)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate)) //nolint:gosec // validated positive sample rate
	byteRate := uint32(sampleRate) * requiredChans * requiredDepth / 8
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], requiredChans*requiredDepth/8)
	binary.LittleEndian.PutUint16(hdr[34:36], requiredDepth)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("%w: %w", herrors.ErrWriteFailure, err)
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("%w: %w", herrors.ErrWriteFailure, err)
	}

	return nil
}
