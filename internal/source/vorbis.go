package source

import (
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisReader is implemented by oggvorbis reader.
type vorbisReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// Vorbis reads ogg vorbis files.
type Vorbis struct {
	fileCloser
	decoder vorbisReader
}

// NewVorbis creates ogg vorbis source.
func NewVorbis(r io.Reader) (*Vorbis, error) {
	decoder, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Vorbis{decoder: decoder}, nil
}

func decodeVorbis(f *os.File) (Source, error) {
	v, err := NewVorbis(f)
	if err != nil {
		return nil, err
	}
	v.fileCloser = fileCloser{f}
	return v, nil
}

// SampleRate of the stream.
func (v *Vorbis) SampleRate() int {
	return v.decoder.SampleRate()
}

// Channels of the stream.
func (v *Vorbis) Channels() int {
	return v.decoder.Channels()
}

// ReadSamples implements Source.
func (v *Vorbis) ReadSamples(dst []float32) (int, error) {
	n, err := v.decoder.Read(dst)
	if err == io.EOF && n > 0 {
		return n, nil
	}
	return n, err
}
