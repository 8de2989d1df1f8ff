// Package info parses the text block returned by the INFO command.
package info

import "strings"

// Parse flattens INFO output into key/value pairs. Blank lines and "#" section
// headers are skipped, as are lines without a "key:" prefix, so unknown
// server output never fails the parse. Later duplicates win.
func Parse(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		out[line[:idx]] = strings.TrimSpace(line[idx+1:])
	}
	return out
}
