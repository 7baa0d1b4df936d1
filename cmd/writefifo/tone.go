//go:build unix

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
)

type toneCommand struct {
	session
	frequency  float64
	amplitude  float64
	sampleRate int
	seconds    float64
}

func (cmd *toneCommand) Name() string {
	return "tone"
}

func (cmd *toneCommand) Help() string {
	return "Stream a sine test tone into the fifo"
}

func (cmd *toneCommand) Register(fs *flag.FlagSet) {
	fs.Float64Var(&cmd.frequency, "freq", 440, "tone frequency in Hz")
	fs.Float64Var(&cmd.amplitude, "amp", 0.5, "tone amplitude")
	fs.IntVar(&cmd.sampleRate, "rate", 44100, "sample rate in Hz")
	fs.Float64Var(&cmd.seconds, "seconds", 1, "tone duration in seconds")
	cmd.session.register(fs)
}

func (cmd *toneCommand) Run(ctx context.Context) error {
	if cmd.sampleRate <= 0 {
		return fmt.Errorf("invalid -rate value: %d", cmd.sampleRate)
	}
	if cmd.seconds < 0 {
		return fmt.Errorf("invalid -seconds value: %v", cmd.seconds)
	}
	return cmd.run(ctx, cmd.sampleRate, cmd.generator())
}

// generator returns blocks of sine signal, the same in both channels.
func (cmd *toneCommand) generator() blockFunc {
	total := int(cmd.seconds * float64(cmd.sampleRate))
	step := 2 * math.Pi * cmd.frequency / float64(cmd.sampleRate)
	pos := 0
	return func(left, right []float32) (int, error) {
		if pos >= total {
			return 0, io.EOF
		}
		n := len(left)
		if total-pos < n {
			n = total - pos
		}
		for i := 0; i < n; i++ {
			v := float32(cmd.amplitude * math.Sin(step*float64(pos+i)))
			left[i], right[i] = v, v
		}
		pos += n
		return n, nil
	}
}
