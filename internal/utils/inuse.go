package utils

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsFileInUse probes whether another process holds the file open by taking a
// non-blocking exclusive lock. The probe is advisory: a failed exclusive open
// while the path still exists is treated as in-use. A vanished path is not
// in-use; deletion will surface its own error.
func IsFileInUse(path string) bool {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		// Unreadable but present. EBUSY-style open failures count as in-use;
		// permission problems are reported by the delete itself.
		return !os.IsPermission(err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return true
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return false
}
