//go:build unix

package fifo

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"pipelined.dev/writefifo/log"
	"pipelined.dev/writefifo/metric"
)

const (
	// NumChannels is the number of channels in a block.
	NumChannels = 2
	// BytesPerSample is the size of a quantized sample.
	BytesPerSample = 2
	// NumBufferedBlocks is the number of blocks kernel buffer should absorb
	// before a write blocks.
	NumBufferedBlocks = 32
)

// BufferSize returns the kernel buffer capacity requested for the block length.
func BufferSize(blockLength int) int {
	return blockLength * NumChannels * BytesPerSample * NumBufferedBlocks
}

// Transport writes quantized blocks into a named pipe. It's not safe for
// concurrent use: all methods are expected to be called from the host
// processing thread.
type Transport struct {
	id                string
	path              string
	reused            bool
	fd                int
	state             State
	blockLength       int
	bufferSize        int
	grantedBufferSize int

	// write is replaced in tests to simulate partial writes.
	write   func(fd int, p []byte) (int, error)
	metered bool
	meter   *metric.Meter
	log     log.Logger
}

// Option provides a way to set functional parameters to transport.
type Option func(t *Transport) error

// WithLogger sets logger to transport. If this option is not provided,
// silent logger is used.
func WithLogger(logger log.Logger) Option {
	return func(t *Transport) error {
		if fl, ok := logger.(logrus.FieldLogger); ok {
			t.log = fl.WithField("fifo", t.id)
			return nil
		}
		t.log = logger
		return nil
	}
}

// WithMetric enables write metrics for the fifo path. Transport is
// counted only once the fifo is opened.
func WithMetric() Option {
	return func(t *Transport) error {
		t.metered = true
		return nil
	}
}

// New creates the fifo if needed and opens it for writing. Returned
// transport is in Ready state.
func New(path string, options ...Option) (*Transport, error) {
	t := &Transport{
		id:    xid.New().String(),
		path:  resolvePath(path),
		fd:    -1,
		write: unix.Write,
		log:   log.Silent{},
	}
	for _, option := range options {
		if err := option(t); err != nil {
			return nil, err
		}
	}
	t.log.Info(fmt.Sprintf("path = %s", t.path))

	if isFifo(t.path) {
		t.reused = true
		t.log.Info(fmt.Sprintf("%s already exists", t.path))
	} else {
		t.log.Info(fmt.Sprintf("creating %s", t.path))
		created, err := mkdirParents(t.path)
		for _, dir := range created {
			t.log.Debug(fmt.Sprintf("created directory %s", dir))
		}
		if err != nil {
			return nil, newError("mkdir", t.path, ErrPath, err)
		}
		if err := makeFifo(t.path); err != nil {
			return nil, newError("mkfifo", t.path, ErrFifoCreate, err)
		}
	}

	fd, err := openWrite(t.path)
	if err != nil {
		return nil, newError("open", t.path, ErrOpen, err)
	}
	t.fd = fd
	if t.metered {
		t.meter = metric.NewMeter(t.path)
	}
	t.state = Ready
	return t, nil
}

// openWrite opens the fifo for writing. Opening write side blocks until
// there is a reader, so a transient non-blocking reader is opened first.
func openWrite(path string) (int, error) {
	var readFd, writeFd int
	err := ignoringEINTR(func() (err error) {
		readFd, err = unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		return
	})
	if err != nil {
		return -1, err
	}
	err = ignoringEINTR(func() (err error) {
		writeFd, err = unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
		return
	})
	if closeErr := unix.Close(readFd); err == nil && closeErr != nil {
		unix.Close(writeFd)
		return -1, closeErr
	}
	if err != nil {
		return -1, err
	}
	return writeFd, nil
}

// Prepare sizes the kernel buffer of the fifo to absorb NumBufferedBlocks
// blocks of provided length. It must be called again if block length
// changes. Failure to resize the buffer is not an error: the fifo keeps
// default buffering.
func (t *Transport) Prepare(blockLength int) error {
	if t.state != Ready && t.state != Prepared {
		return fmt.Errorf("%w: prepare in %v state", ErrInvalidState, t.state)
	}
	if blockLength < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockLength, blockLength)
	}
	t.blockLength = blockLength
	t.bufferSize = BufferSize(blockLength)
	t.log.Info(fmt.Sprintf("pipe size = %d bytes", t.bufferSize))

	granted, err := setPipeSize(t.fd, t.bufferSize)
	if err != nil {
		t.log.Info(fmt.Sprintf("using default pipe size: %v", err))
	} else {
		t.log.Debug(fmt.Sprintf("granted pipe size = %d bytes", granted))
	}
	t.grantedBufferSize = granted
	t.state = Prepared
	return nil
}

// Write writes the whole buffer into the fifo. It blocks while kernel
// buffer is full. Partial writes are retried until all bytes are written.
func (t *Transport) Write(buf []byte) error {
	if t.state != Prepared {
		return fmt.Errorf("%w: write in %v state", ErrInvalidState, t.state)
	}
	start := time.Now()
	for written := 0; written < len(buf); {
		n, err := t.write(t.fd, buf[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EPIPE:
			return newError("write", t.path, ErrBrokenPipe, err)
		case err != nil:
			return newError("write", t.path, ErrWrite, err)
		case n <= 0:
			return newError("write", t.path, ErrWrite, io.ErrShortWrite)
		}
		if written < len(buf) {
			t.meter.ShortWrite()
		}
	}
	t.meter.Measure(int64(len(buf)), time.Since(start))
	return nil
}

// Close releases the write descriptor. Transport cannot be used after
// Close. It's safe to call Close multiple times and on a transport that
// was never opened.
func (t *Transport) Close() error {
	switch t.state {
	case Closed:
		return nil
	case Uninitialized:
		// zero value doesn't own a descriptor: fd 0 is not ours.
		t.state = Closed
		return nil
	}
	t.state = Closed
	if t.fd < 0 {
		return nil
	}
	err := unix.Close(t.fd)
	t.fd = -1
	t.log.Info(fmt.Sprintf("closed %s", t.path))
	if err != nil {
		return newError("close", t.path, ErrClose, err)
	}
	return nil
}

// ID returns unique id of transport.
func (t *Transport) ID() string {
	return t.id
}

// Path returns resolved fifo path.
func (t *Transport) Path() string {
	return t.path
}

// Reused returns true if fifo existed before transport was created.
func (t *Transport) Reused() bool {
	return t.reused
}

// State returns current state of transport.
func (t *Transport) State() State {
	return t.state
}

// BlockLength returns the block length provided with the last Prepare call.
func (t *Transport) BlockLength() int {
	return t.blockLength
}

// BufferSize returns kernel buffer capacity requested by the last Prepare call.
func (t *Transport) BufferSize() int {
	return t.bufferSize
}

// GrantedBufferSize returns kernel buffer capacity reported by the system.
// It's zero if the platform doesn't allow to resize fifo buffers.
func (t *Transport) GrantedBufferSize() int {
	return t.grantedBufferSize
}
