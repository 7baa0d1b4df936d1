//go:build unix

package writefifo

import (
	"errors"
	"fmt"

	"pipelined.dev/writefifo/fifo"
	"pipelined.dev/writefifo/quantize"
)

var (
	// ErrChannelMismatch is returned when left and right channels have different length.
	ErrChannelMismatch = errors.New("channels have different length")
	// ErrBlockLength is returned when block length differs from the prepared one.
	ErrBlockLength = errors.New("unexpected block length")
	// ErrNumChannels is returned when a sink is bound to non-stereo signal.
	ErrNumChannels = errors.New("only stereo signal is supported")
)

// BlockWriter is the lifecycle driven by a host audio engine. The host
// creates the writer, prepares it when processing starts or block length
// changes, writes one block per callback and closes it on teardown.
type BlockWriter interface {
	Prepare(blockLength int) error
	Process(left, right []float32) error
	Close() error
}

// Bridge converts float stereo blocks into 16-bit PCM and writes them into
// a fifo. It must be used from a single goroutine.
type Bridge struct {
	transport   *fifo.Transport
	blockLength int
	buf         []byte
}

var _ BlockWriter = (*Bridge)(nil)

// New opens a fifo at provided path. Empty path means fifo.DefaultPath.
func New(path string, options ...fifo.Option) (*Bridge, error) {
	t, err := fifo.New(path, options...)
	if err != nil {
		return nil, err
	}
	return &Bridge{transport: t}, nil
}

// Prepare sizes fifo buffer and scratch buffer for the block length.
func (b *Bridge) Prepare(blockLength int) error {
	if err := b.transport.Prepare(blockLength); err != nil {
		return err
	}
	b.blockLength = blockLength
	if size := quantize.Size(blockLength); cap(b.buf) < size {
		b.buf = make([]byte, size)
	}
	return nil
}

// Process quantizes a block and writes it into the fifo. It blocks if
// fifo buffer is full.
func (b *Bridge) Process(left, right []float32) error {
	if len(left) != len(right) {
		return fmt.Errorf("%w: left %d right %d", ErrChannelMismatch, len(left), len(right))
	}
	if b.transport.State() == fifo.Prepared && len(left) != b.blockLength {
		return fmt.Errorf("%w: %d, prepared %d", ErrBlockLength, len(left), b.blockLength)
	}
	b.buf = quantize.Quantize(b.buf, left, right)
	return b.transport.Write(b.buf)
}

// Close closes the fifo. Closing a bridge that was never opened is a no-op.
func (b *Bridge) Close() error {
	if b.transport == nil {
		return nil
	}
	return b.transport.Close()
}

// Transport returns underlying fifo transport.
func (b *Bridge) Transport() *fifo.Transport {
	return b.transport
}

// Sink binds bridge to a pipe. Buffers shorter than bufferSize are padded
// with silence.
func (b *Bridge) Sink(pipeID string, sampleRate, numChannels, bufferSize int) (func([][]float64) error, error) {
	if numChannels != quantize.NumChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrNumChannels, numChannels)
	}
	if err := b.Prepare(bufferSize); err != nil {
		return nil, err
	}
	left := make([]float32, bufferSize)
	right := make([]float32, bufferSize)
	return func(in [][]float64) error {
		if len(in) != numChannels {
			return fmt.Errorf("%w: %d channels", ErrNumChannels, len(in))
		}
		if len(in[0]) != len(in[1]) {
			return fmt.Errorf("%w: left %d right %d", ErrChannelMismatch, len(in[0]), len(in[1]))
		}
		if len(in[0]) > bufferSize {
			return fmt.Errorf("%w: %d, prepared %d", ErrBlockLength, len(in[0]), bufferSize)
		}
		n := copyFloat32(left, in[0])
		copyFloat32(right, in[1])
		for i := n; i < bufferSize; i++ {
			left[i], right[i] = 0, 0
		}
		return b.Process(left, right)
	}, nil
}

func copyFloat32(dst []float32, src []float64) int {
	for i := range src {
		dst[i] = float32(src[i])
	}
	return len(src)
}
