//go:build unix

package writefifo_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"

	"pipelined.dev/writefifo"
	"pipelined.dev/writefifo/fifo"
	"pipelined.dev/writefifo/log"
	"pipelined.dev/writefifo/quantize"
)

const blockLength = 4

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// openReader creates a fifo and opens its read side.
func openReader(t *testing.T) (string, *os.File) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fifo")
	require.NoError(t, unix.Mkfifo(path, 0666))
	r, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return path, r
}

func TestBridge(t *testing.T) {
	path, r := openReader(t)

	logger := log.GetLogger()
	var out bytes.Buffer
	logger.SetOutput(&out)
	logger.SetLevel(logrus.DebugLevel)

	b, err := writefifo.New(path, fifo.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, b.Prepare(blockLength))

	left := []float32{1.0, -1.0, 0.0, 0.5}
	right := []float32{-0.5, 0.0, 1.0, -1.0}
	require.NoError(t, b.Process(left, right))

	buf := make([]byte, quantize.Size(blockLength))
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	l, rr := quantize.Deinterleave(buf)
	assert.Equal(t, []int16{32767, -32767, 0, 16383}, l)
	assert.Equal(t, []int16{-16383, 0, 32767, -32767}, rr)

	require.NoError(t, b.Close())
	assert.Equal(t, fifo.Closed, b.Transport().State())

	logs := out.String()
	assert.Contains(t, logs, "path = "+path)
	assert.Contains(t, logs, "already exists")
	assert.Contains(t, logs, "pipe size = 512 bytes")
	assert.Contains(t, logs, b.Transport().ID())
}

func TestBridgeErrors(t *testing.T) {
	path, _ := openReader(t)
	b, err := writefifo.New(path)
	require.NoError(t, err)
	defer b.Close()

	// not prepared
	err = b.Process(make([]float32, blockLength), make([]float32, blockLength))
	assert.True(t, errors.Is(err, fifo.ErrInvalidState))

	require.NoError(t, b.Prepare(blockLength))
	err = b.Process(make([]float32, blockLength), make([]float32, blockLength-1))
	assert.True(t, errors.Is(err, writefifo.ErrChannelMismatch))
	err = b.Process(make([]float32, 2*blockLength), make([]float32, 2*blockLength))
	assert.True(t, errors.Is(err, writefifo.ErrBlockLength))

	// block length change requires prepare
	require.NoError(t, b.Prepare(2*blockLength))
	assert.NoError(t, b.Process(make([]float32, 2*blockLength), make([]float32, 2*blockLength)))
}

func TestBridgeBrokenPipe(t *testing.T) {
	b, err := writefifo.New(filepath.Join(t.TempDir(), "nested", "fifo"))
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Prepare(blockLength))

	err = b.Process(make([]float32, blockLength), make([]float32, blockLength))
	assert.True(t, errors.Is(err, fifo.ErrBrokenPipe))
}

func TestBridgeCloseZeroValue(t *testing.T) {
	var b writefifo.Bridge
	assert.NoError(t, b.Close())
	assert.Nil(t, b.Transport())
}

func TestSink(t *testing.T) {
	path, r := openReader(t)
	b, err := writefifo.New(path)
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Sink("pipe", 44100, 1, blockLength)
	assert.True(t, errors.Is(err, writefifo.ErrNumChannels))

	fn, err := b.Sink("pipe", 44100, 2, blockLength)
	require.NoError(t, err)
	assert.Equal(t, blockLength, b.Transport().BlockLength())

	require.NoError(t, fn([][]float64{{1, 0.5, 0, -1}, {-1, -0.5, 0, 1}}))
	// last buffer is padded with silence
	require.NoError(t, fn([][]float64{{0.5}, {-0.5}}))

	err = fn([][]float64{{1, 2, 3, 4, 5}, {1, 2, 3, 4, 5}})
	assert.True(t, errors.Is(err, writefifo.ErrBlockLength))
	err = fn([][]float64{{1}, {1, 2}})
	assert.True(t, errors.Is(err, writefifo.ErrChannelMismatch))
	err = fn([][]float64{{1}})
	assert.True(t, errors.Is(err, writefifo.ErrNumChannels))

	buf := make([]byte, 2*quantize.Size(blockLength))
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	l, rr := quantize.Deinterleave(buf)
	assert.Equal(t, []int16{32767, 16383, 0, -32767, 16383, 0, 0, 0}, l)
	assert.Equal(t, []int16{-32767, -16383, 0, 32767, -16383, 0, 0, 0}, rr)
}
