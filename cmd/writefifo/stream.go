//go:build unix

package main

import (
	"context"
	"errors"
	"flag"

	"pipelined.dev/writefifo/internal/source"
)

type streamCommand struct {
	session
	in string
}

func (cmd *streamCommand) Name() string {
	return "stream"
}

func (cmd *streamCommand) Help() string {
	return "Stream wav, mp3 or ogg vorbis file into the fifo"
}

func (cmd *streamCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input audio file (required)")
	cmd.session.register(fs)
}

func (cmd *streamCommand) Run(ctx context.Context) error {
	if cmd.in == "" {
		return errors.New("missing -in required flag")
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	src, err := source.Open(cmd.in)
	if err != nil {
		return err
	}
	defer src.Close()
	stereo, err := source.NewStereo(src)
	if err != nil {
		return err
	}
	return cmd.run(ctx, src.SampleRate(), stereo.Read)
}
