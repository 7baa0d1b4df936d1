package fifo

import "golang.org/x/sys/unix"

// setPipeSize enlarges kernel buffer of the pipe to at least size bytes.
// Buffer is never shrunk. It returns the capacity reported by the kernel.
func setPipeSize(fd, size int) (int, error) {
	current, err := unix.FcntlInt(uintptr(fd), unix.F_GETPIPE_SZ, 0)
	if err != nil {
		return 0, err
	}
	if current >= size {
		return current, nil
	}
	granted, err := unix.FcntlInt(uintptr(fd), unix.F_SETPIPE_SZ, size)
	if err != nil {
		return current, err
	}
	return granted, nil
}
