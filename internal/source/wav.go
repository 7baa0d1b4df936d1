package source

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavPCMFormat = 1

// Wav reads pcm wav files.
type Wav struct {
	fileCloser
	decoder *wav.Decoder
	ib      *audio.IntBuffer
	scale   float32
}

// NewWav creates wav source from a seekable reader.
func NewWav(r io.ReadSeeker) (*Wav, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWav
	}
	if decoder.WavAudioFormat != wavPCMFormat {
		return nil, ErrUnsupportedBitDepth
	}
	switch decoder.BitDepth {
	case 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}
	return &Wav{
		decoder: decoder,
		ib: &audio.IntBuffer{
			Format:         decoder.Format(),
			SourceBitDepth: int(decoder.BitDepth),
		},
		scale: 1 / float32(int64(1)<<(decoder.BitDepth-1)),
	}, nil
}

func decodeWav(f *os.File) (Source, error) {
	w, err := NewWav(f)
	if err != nil {
		return nil, err
	}
	w.fileCloser = fileCloser{f}
	return w, nil
}

// SampleRate of the file.
func (w *Wav) SampleRate() int {
	return int(w.decoder.SampleRate)
}

// Channels of the file.
func (w *Wav) Channels() int {
	return int(w.decoder.NumChans)
}

// ReadSamples implements Source.
func (w *Wav) ReadSamples(dst []float32) (int, error) {
	if cap(w.ib.Data) < len(dst) {
		w.ib.Data = make([]int, len(dst))
	}
	w.ib.Data = w.ib.Data[:len(dst)]
	n, err := w.decoder.PCMBuffer(w.ib)
	if err != nil && err != io.EOF {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(w.ib.Data[i]) * w.scale
	}
	return n, nil
}
