//go:build !unix

package tailer

import "os"

// fileIdentity has no portable equivalent outside POSIX stat_t. Returning 0
// means rotation detection degrades to size-based (truncation) detection
// only, as documented on Tailer.Poll.
func fileIdentity(info os.FileInfo) uint64 {
	return 0
}
