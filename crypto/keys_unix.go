//go:build !windows

package crypto

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

func setUmask(mask int) int {
	return unix.Umask(mask)
}

// Only the owning user is changed, the group is left alone.
func chownKeys(owner string, paths ...string) error {
	u, err := user.Lookup(owner)
	if err != nil {
		return err
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid %q for %v: %w", u.Uid, owner, err)
	}

	for _, path := range paths {
		err = os.Chown(path, uid, -1)
		if err != nil {
			return err
		}
	}
	return nil
}
