/*
Package fifo writes quantized audio blocks into a named pipe.

Transport owns the whole lifecycle of the pipe. New creates missing parent
directories and the fifo itself, or reuses an existing one, and opens it for
writing:

    t, err := fifo.New("/tmp/audio/fifo", fifo.WithLogger(log.GetLogger()))

Once the host knows its block length, Prepare sizes the kernel buffer of the
pipe to hold NumBufferedBlocks blocks:

    err = t.Prepare(64)

Write is called once per block. It blocks while the kernel buffer is full,
so the buffer size defines how long a slow consumer is tolerated before the
calling thread stalls. If the consumer is gone, Write returns an error that
matches ErrBrokenPipe; reconnection is up to the caller.

The stream is raw interleaved signed 16-bit stereo in native byte order,
without any header or framing.
*/
package fifo
