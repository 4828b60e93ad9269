//go:build unix

package tailer

import (
	"os"
	"syscall"
)

// fileIdentity extracts the inode number backing info, used to detect
// rotation (replace-on-rename, copytruncate-with-new-inode). Returns 0 if
// the platform's stat_t is not available, in which case rotation detection
// degrades to size-based (truncation) detection only.
func fileIdentity(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
