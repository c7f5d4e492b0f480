//go:build windows

package transport

import "strings"

func isRefusedSyscallErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "refused")
}
