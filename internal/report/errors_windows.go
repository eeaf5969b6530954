//go:build windows

package report

import (
	"errors"
	"syscall"
)

// ERROR_DIR_NOT_EMPTY
const errDirNotEmpty syscall.Errno = 145

func isNotEmpty(err error) bool {
	return errors.Is(err, errDirNotEmpty)
}
