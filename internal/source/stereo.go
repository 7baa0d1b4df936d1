package source

import (
	"fmt"
	"io"
)

// maxEmptyReads limits reads that return neither samples nor error.
const maxEmptyReads = 100

// Stereo splits interleaved source into left and right blocks. Mono
// sources are duplicated into both channels.
type Stereo struct {
	src Source
	buf []float32
}

// NewStereo wraps mono or stereo source.
func NewStereo(src Source) (*Stereo, error) {
	if c := src.Channels(); c != 1 && c != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedChannels, c)
	}
	return &Stereo{src: src}, nil
}

// Read fills left and right and returns number of frames read. The last
// block of the stream can be incomplete. io.EOF is returned when no frames
// are left.
func (s *Stereo) Read(left, right []float32) (int, error) {
	channels := s.src.Channels()
	size := len(left) * channels
	if cap(s.buf) < size {
		s.buf = make([]float32, size)
	}
	s.buf = s.buf[:size]

	read, empty := 0, 0
	for read < size {
		n, err := s.src.ReadSamples(s.buf[read:])
		read += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if n > 0 {
			empty = 0
			continue
		}
		if empty++; empty == maxEmptyReads {
			return 0, io.ErrNoProgress
		}
	}

	frames := read / channels
	if frames == 0 {
		return 0, io.EOF
	}
	for i := 0; i < frames; i++ {
		if channels == 1 {
			left[i], right[i] = s.buf[i], s.buf[i]
			continue
		}
		left[i], right[i] = s.buf[2*i], s.buf[2*i+1]
	}
	return frames, nil
}
