//go:build unix

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"pipelined.dev/writefifo"
	"pipelined.dev/writefifo/fifo"
	"pipelined.dev/writefifo/log"
	"pipelined.dev/writefifo/metric"
	"pipelined.dev/writefifo/quantize"
)

const defaultBlockLength = 64

// session drives a bridge the way an audio host does: prepare once and
// then write one block per callback.
type session struct {
	fifo        string
	blockLength int
	realtime    bool
	tee         string

	logger *logrus.Logger
}

// blockFunc fills left and right with the next block and returns number
// of frames. It returns io.EOF when signal is over.
type blockFunc func(left, right []float32) (int, error)

func (s *session) register(fs *flag.FlagSet) {
	fs.StringVar(&s.fifo, "fifo", fifo.DefaultPath, "fifo path, created with parent directories if missing")
	fs.IntVar(&s.blockLength, "block", defaultBlockLength, "block length in frames")
	fs.BoolVar(&s.realtime, "realtime", false, "pace blocks at the sample rate")
	fs.StringVar(&s.tee, "tee", "", "wav file to save written signal to")
}

func (s *session) validate() error {
	if s.blockLength <= 0 {
		return fmt.Errorf("invalid -block value: %d", s.blockLength)
	}
	return nil
}

func (s *session) run(ctx context.Context, sampleRate int, next blockFunc) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	b, err := writefifo.New(s.fifo, fifo.WithLogger(s.logger), fifo.WithMetric())
	if err != nil {
		return err
	}
	defer b.Close()
	if err := b.Prepare(s.blockLength); err != nil {
		return err
	}

	var t *tee
	if s.tee != "" {
		if t, err = newTee(s.tee, sampleRate); err != nil {
			return err
		}
		defer t.Close()
	}

	var tick <-chan time.Time
	if s.realtime {
		ticker := time.NewTicker(blockDuration(sampleRate, s.blockLength))
		defer ticker.Stop()
		tick = ticker.C
	}

	left := make([]float32, s.blockLength)
	right := make([]float32, s.blockLength)
	for {
		n, err := next(left, right)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for i := n; i < s.blockLength; i++ {
			left[i], right[i] = 0, 0
		}

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
		if ctx.Err() != nil {
			s.logger.Info("interrupted")
			return nil
		}

		if err := b.Process(left, right); err != nil {
			if errors.Is(err, fifo.ErrBrokenPipe) {
				return fmt.Errorf("consumer disconnected: %w", err)
			}
			return err
		}
		if t != nil {
			if err := t.write(left, right); err != nil {
				return err
			}
		}
	}

	fields := logrus.Fields{}
	for k, v := range metric.Get(b.Transport().Path()) {
		fields[k] = v
	}
	s.logger.WithFields(fields).Info("done")
	return nil
}

func blockDuration(sampleRate, blockLength int) time.Duration {
	return time.Duration(blockLength) * time.Second / time.Duration(sampleRate)
}

// tee saves written signal into wav file.
type tee struct {
	file       *os.File
	encoder    *wav.Encoder
	sampleRate int
	buf        []byte
}

func newTee(path string, sampleRate int) (*tee, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &tee{
		file:       f,
		encoder:    wav.NewEncoder(f, sampleRate, quantize.BitDepth, quantize.NumChannels, 1),
		sampleRate: sampleRate,
	}, nil
}

func (t *tee) write(left, right []float32) error {
	t.buf = quantize.Quantize(t.buf, left, right)
	return t.encoder.Write(quantize.AsIntBuffer(t.buf, t.sampleRate))
}

// Close flushes encoder and closes the file.
func (t *tee) Close() error {
	if err := t.encoder.Close(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}
