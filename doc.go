/*
Package writefifo streams real-time stereo audio into a named pipe.

Concept

An audio host delivers signal in fixed-size blocks of float samples, one
block per channel, on its processing thread. Bridge converts every block
into interleaved signed 16-bit PCM and writes it into a fifo, where an
independent consumer, like a recorder or a network relay, reads it at its
own pace:

    Host - calls Prepare once block length is known and Process per block;
    Quantizer - scales samples by 32767 and truncates toward zero;
    Transport - owns the fifo and performs blocking writes.

Lifecycle

    b, err := writefifo.New("/tmp/audio/fifo", fifo.WithLogger(log.GetLogger()))
    err = b.Prepare(64)
    for block := range blocks {
        if err := b.Process(block.Left, block.Right); err != nil {
            // errors.Is(err, fifo.ErrBrokenPipe) means consumer is gone
        }
    }
    err = b.Close()

New creates missing directories and the fifo, or reuses an existing fifo.
Prepare enlarges the kernel buffer of the fifo to hold 32 blocks, so a
consumer can fall behind for 32 block durations before Process blocks the
host thread.

Wire format

The fifo carries raw interleaved 16-bit stereo samples in native byte order,
L,R,L,R..., without headers or framing. Sample rate is agreed out of band.
Out-of-range samples wrap around instead of being clamped.

Pipes

Bridge also implements the sink component signature of pipelined pipes:

    fn, err := b.Sink(pipeID, sampleRate, 2, bufferSize)
*/
package writefifo
