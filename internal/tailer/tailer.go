// Package tailer implements the stateful, poll-driven file reader that
// yields exactly the new, complete lines appended to a path since the last
// poll, across file rotations and truncations.
//
// Adapted from the fsnotify-driven file watcher in
// internal/conv.Tailer/fileStream (gastownhall/tmux-adapter): this version
// trades the push (channel) model for the pull (poll) model spec.md
// requires, and replaces bufio.Scanner-style line reading — which emits an
// unterminated trailing fragment as a final "line" at EOF — with manual,
// newline-gated scanning so a partial trailing line is never observed.
package tailer

import (
	"io"
	"os"
)

// fileState is the tracking record for one tailed path: an open handle,
// the offset of the next unread byte, and the stable identity used to
// detect rotation.
type fileState struct {
	file     *os.File
	position int64
	identity uint64 // inode on POSIX hosts; 0 where unavailable
}

// Tailer tracks poll state for a set of paths. A single Tailer instance is
// not safe for concurrent Poll calls on the same path — each pipeline owns
// its own Tailer.
type Tailer struct {
	states map[string]*fileState
}

// New creates an empty Tailer.
func New() *Tailer {
	return &Tailer{states: make(map[string]*fileState)}
}

// Poll reads any new, complete lines appended to path since the last call.
//
//  1. If path cannot be stat'd (missing, permission denied), returns an
//     empty slice with no error; any existing state is left untouched so the
//     file can appear later without a restart.
//  2. On the first successful poll for a path, the file is opened and the
//     read position seeked to end-of-file — pre-existing content is never
//     replayed.
//  3. A change in file identity (inode) is treated as rotation: state is
//     discarded and the path is re-opened at end-of-file, as in step 2. Any
//     bytes left unread in the rotated-away file are lost; this is the
//     documented trade-off of polling-based tailing (spec.md §4.2). Where
//     the identity is unavailable (0), this check is skipped and only the
//     truncation check below applies.
//  4. A current size smaller than the stored position is treated as
//     truncation: the position resets to 0 and reading resumes from the
//     start of the file.
//  5. Bytes are read from the stored position to end-of-file; only text up
//     to the last newline is ever emitted, and the stored position only
//     ever advances to just past that newline — an unterminated trailing
//     fragment is left for the next poll to complete.
func (t *Tailer) Poll(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil
	}

	identity := fileIdentity(info)
	size := info.Size()

	st, ok := t.states[path]
	if ok && identity != 0 && st.identity != 0 && identity != st.identity {
		_ = st.file.Close()
		delete(t.states, path)
		ok = false
	}

	if !ok {
		f, err := os.Open(path)
		if err != nil {
			// Transient: permission race, or the file vanished between Stat
			// and Open. Retry on the next poll.
			return nil, nil
		}
		pos, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		t.states[path] = &fileState{file: f, position: pos, identity: identity}
		return nil, nil
	}

	if size < st.position {
		st.position = 0
	}

	if _, err := st.file.Seek(st.position, io.SeekStart); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(st.file)
	if err != nil {
		return nil, err
	}

	lines, consumed := splitCompleteLines(data)
	st.position += int64(consumed)
	st.identity = identity

	return lines, nil
}

// splitCompleteLines returns every complete (newline-terminated) line in
// data, with the trailing \n and an optional trailing \r stripped, plus the
// number of bytes consumed — i.e. the offset just past the last newline
// found. Bytes after that offset are an incomplete trailing fragment and
// must not be emitted or counted as consumed.
func splitCompleteLines(data []byte) ([]string, int) {
	var lines []string
	start := 0
	consumed := 0

	for i, b := range data {
		if b != '\n' {
			continue
		}
		line := data[start:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		lines = append(lines, string(line))
		start = i + 1
		consumed = start
	}

	return lines, consumed
}

// Close releases every open file handle this Tailer holds. It is not part
// of the polling contract — spec.md keeps no persisted state across
// restarts — but frees descriptors promptly on pipeline shutdown.
func (t *Tailer) Close() {
	for path, st := range t.states {
		_ = st.file.Close()
		delete(t.states, path)
	}
}
