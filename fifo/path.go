//go:build unix

package fifo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	// DefaultPath is used when empty path is provided.
	DefaultPath = "fifo"

	dirMode  = 0777
	fifoMode = 0666
)

func resolvePath(path string) string {
	if path == "" {
		return DefaultPath
	}
	return path
}

// isFifo follows symlinks.
func isFifo(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode()&fs.ModeNamedPipe != 0
}

// mkdirParents creates all missing parent directories of path. Missing
// ancestors are collected walking up and created root to leaf. It returns
// directories it has created.
func mkdirParents(path string) ([]string, error) {
	var missing []string
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		fi, err := os.Stat(dir)
		if err == nil {
			if !fi.IsDir() {
				return nil, &fs.PathError{Op: "mkdir", Path: dir, Err: unix.ENOTDIR}
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		missing = append(missing, dir)
		if filepath.Dir(dir) == dir {
			break
		}
	}

	created := make([]string, 0, len(missing))
	for i := len(missing) - 1; i >= 0; i-- {
		err := ignoringEINTR(func() error {
			return unix.Mkdir(missing[i], dirMode)
		})
		switch {
		case err == nil:
			created = append(created, missing[i])
		case errors.Is(err, unix.EEXIST):
		default:
			return created, &fs.PathError{Op: "mkdir", Path: missing[i], Err: err}
		}
	}
	return created, nil
}

// makeFifo creates the fifo special file. Existing fifo is not an error,
// but any other existing file is.
func makeFifo(path string) error {
	err := ignoringEINTR(func() error {
		return unix.Mkfifo(path, fifoMode)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EEXIST) && isFifo(path) {
		return nil
	}
	return &fs.PathError{Op: "mkfifo", Path: path, Err: err}
}

func ignoringEINTR(fn func() error) error {
	for {
		err := fn()
		if err != unix.EINTR {
			return err
		}
	}
}
