package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Large multi-minute captures transcode slower than ffprobe's metadata-only pass.
	timeout = 120 * time.Second
	codec   = "pcm_s16le"
)
