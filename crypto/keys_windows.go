//go:build windows

package crypto

import (
	errors "github.com/go-errors/errors"
)

// Windows has no process umask. The file modes are still set
// explicitly after writing.
func setUmask(mask int) int {
	return 0
}

func chownKeys(owner string, paths ...string) error {
	return errors.New("Setting key ownership is not supported on windows")
}
