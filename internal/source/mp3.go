package source

import (
	"encoding/binary"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Reader is implemented by go-mp3 decoder.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// Mp3 reads mp3 files. Decoded signal is always stereo.
type Mp3 struct {
	fileCloser
	decoder mp3Reader
	buf     []byte
}

// NewMp3 creates mp3 source.
func NewMp3(r io.Reader) (*Mp3, error) {
	decoder, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &Mp3{decoder: decoder}, nil
}

func decodeMp3(f *os.File) (Source, error) {
	m, err := NewMp3(f)
	if err != nil {
		return nil, err
	}
	m.fileCloser = fileCloser{f}
	return m, nil
}

// SampleRate of the stream.
func (m *Mp3) SampleRate() int {
	return m.decoder.SampleRate()
}

// Channels of the stream.
func (m *Mp3) Channels() int {
	return 2
}

// ReadSamples implements Source.
func (m *Mp3) ReadSamples(dst []float32) (int, error) {
	size := len(dst) * 2
	if cap(m.buf) < size {
		m.buf = make([]byte, size)
	}
	// decoder output is 16-bit little endian
	n, err := io.ReadFull(m.decoder, m.buf[:size])
	samples := n / 2
	for i := 0; i < samples; i++ {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(m.buf[2*i:]))) / 32768
	}
	switch err {
	case nil:
		return samples, nil
	case io.EOF, io.ErrUnexpectedEOF:
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, nil
	}
	return samples, err
}
