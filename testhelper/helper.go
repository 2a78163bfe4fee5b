package testhelper

import (
	"strings"
	"testing"
)

// TrimIndent removes the leading newline of a raw string literal and the
// indentation of its first line from every line, so expected output can be
// written indented along with the test code.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(strings.TrimPrefix(src, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	first := lines[0]
	indent := first[:len(first)-len(strings.TrimLeft(first, " \t"))]

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	// closing backquote line
	if last := len(lines) - 1; strings.TrimSpace(lines[last]) == "" {
		lines[last] = ""
	}

	return strings.Join(lines, "\n")
}
