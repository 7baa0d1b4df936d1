// Package source decodes audio files into interleaved float32 samples.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedBitDepth is returned when wav bit depth is not supported.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit pcm wav is supported")
	// ErrInvalidWav is returned when wav header cannot be parsed.
	ErrInvalidWav = errors.New("wav is not valid")
	// ErrUnsupportedChannels is returned when source is neither mono nor stereo.
	ErrUnsupportedChannels = errors.New("only mono and stereo sources are supported")
)

// Source reads interleaved samples normalized to [-1, 1].
type Source interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with interleaved samples and returns the
	// number of values written. It returns io.EOF when the stream is over.
	ReadSamples(dst []float32) (int, error)
	Close() error
}

// Open opens a file and picks the decoder by its extension.
func Open(path string) (Source, error) {
	var decode func(*os.File) (Source, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		decode = decodeWav
	case ".mp3":
		decode = decodeMp3
	case ".ogg", ".oga":
		decode = decodeVorbis
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}

// fileCloser closes the underlying file of decoders that don't own it.
type fileCloser struct {
	io.Closer
}

func (c fileCloser) Close() error {
	if c.Closer == nil {
		return nil
	}
	return c.Closer.Close()
}
