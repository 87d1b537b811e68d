package audiofile

import "errors"

var (
	ErrNotWavFile        = errors.New("audiofile: not a WAV file")
	ErrNotAiffFile       = errors.New("audiofile: not an AIFF file")
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	ErrUnsupportedDepth  = errors.New("audiofile: unsupported bit depth")
	ErrNoChannels        = errors.New("audiofile: source has no channels")
)
