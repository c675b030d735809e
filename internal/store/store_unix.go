//go:build !windows

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// checkOwnership refuses a database (or, before it exists, its directory)
// owned by a different user than the running process (e.g. under sudo).
func checkOwnership(path string) error {
	target := path
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		target = filepath.Dir(path)
		info, err = os.Stat(target)
	}
	if err != nil {
		return nil
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if euid := os.Geteuid(); int(st.Uid) != euid {
		return fmt.Errorf("store: %s is owned by uid %d, running as uid %d", target, st.Uid, euid)
	}
	return nil
}
