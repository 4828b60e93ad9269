// Package entry defines the unit of data that flows from a tailed file,
// through a filter and buffer, to a destination.
package entry

// LogEntry is one surviving line read from a tailed file, tagged with the
// configured path it came from. path is the path as configured, not
// necessarily an absolute or canonicalized path.
type LogEntry struct {
	Path string `json:"path"`
	Line string `json:"line"`
}
