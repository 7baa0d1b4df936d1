//go:build unix && !linux

package fifo

import "errors"

var errPipeSizeUnsupported = errors.New("pipe buffer size cannot be changed on this platform")

func setPipeSize(fd, size int) (int, error) {
	return 0, errPipeSizeUnsupported
}
