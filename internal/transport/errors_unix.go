//go:build !windows

package transport

import (
	"errors"
	"syscall"
)

func isRefusedSyscallErr(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
