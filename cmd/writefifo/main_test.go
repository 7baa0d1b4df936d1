//go:build unix

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"pipelined.dev/writefifo/quantize"
)

func TestInit(t *testing.T) {
	//check if commands are registered
	assert.Equal(t, 2, len(commands))
}

func TestRunUsage(t *testing.T) {
	c := config{args: []string{"writefifo"}}
	assert.Equal(t, errorExitCode, c.run(context.Background()))

	c = config{args: []string{"writefifo", "unknown"}}
	assert.Equal(t, errorExitCode, c.run(context.Background()))

	c = config{args: []string{"writefifo", "stream"}}
	assert.Equal(t, errorExitCode, c.run(context.Background()))

	c = config{args: []string{"writefifo", "tone", "-block", "0"}}
	assert.Equal(t, errorExitCode, c.run(context.Background()))
}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
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

func TestTone(t *testing.T) {
	path, r := openReader(t)
	teePath := filepath.Join(t.TempDir(), "tee.wav")
	cmd := &toneCommand{
		session: session{
			fifo:        path,
			blockLength: 64,
			tee:         teePath,
			logger:      silentLogger(),
		},
		frequency:  1000,
		amplitude:  0.5,
		sampleRate: 8000,
		seconds:    0.1,
	}
	require.NoError(t, cmd.Run(context.Background()))

	// 800 frames padded to 13 blocks of 64 frames
	received := make([]byte, quantize.Size(13*64))
	_, err := io.ReadFull(r, received)
	require.NoError(t, err)
	left, right := quantize.Deinterleave(received)
	assert.Equal(t, left, right)
	assert.Equal(t, int16(0), left[0])
	assert.Equal(t, quantize.Sample(0.5*0.70710677), left[1])
	for _, v := range left[800:] {
		assert.Equal(t, int16(0), v)
	}

	f, err := os.Open(teePath)
	require.NoError(t, err)
	defer f.Close()
	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	assert.Equal(t, uint32(8000), d.SampleRate)
	assert.Equal(t, uint16(2), d.NumChans)
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, len(left)*2, len(buf.Data))
	for i := range left {
		assert.Equal(t, int(left[i]), buf.Data[2*i])
	}
}

func TestInterrupted(t *testing.T) {
	path, _ := openReader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd := &toneCommand{
		session: session{
			fifo:        path,
			blockLength: 64,
			realtime:    true,
			logger:      silentLogger(),
		},
		frequency:  440,
		amplitude:  0.5,
		sampleRate: 44100,
		seconds:    10,
	}
	start := time.Now()
	require.NoError(t, cmd.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestBlockDuration(t *testing.T) {
	assert.Equal(t, time.Millisecond, blockDuration(48000, 48))
	assert.Equal(t, 1451247*time.Nanosecond, blockDuration(44100, 64))
}

func TestStream(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(in)
	require.NoError(t, err)
	e := wav.NewEncoder(f, 44100, 16, 2, 1)
	require.NoError(t, e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		SourceBitDepth: 16,
		Data:           []int{16384, -16384, 8192, -8192, 0, 32767},
	}))
	require.NoError(t, e.Close())
	require.NoError(t, f.Close())

	path, r := openReader(t)
	c := config{args: []string{"writefifo", "stream", "-in", in, "-fifo", path, "-block", "2"}}
	assert.Equal(t, successExitCode, c.run(context.Background()))

	received := make([]byte, quantize.Size(4))
	_, err = io.ReadFull(r, received)
	require.NoError(t, err)
	left, right := quantize.Deinterleave(received)
	assert.Equal(t, []int16{16383, 8191, 0, 0}, left)
	assert.Equal(t, []int16{-16383, -8191, 32766, 0}, right)
}
