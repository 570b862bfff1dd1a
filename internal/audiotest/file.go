// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"os"
	"testing"
)

// TempFile creates an empty file in a per-test directory. It is closed when
// the test ends.
func TempFile(tb testing.TB, pattern string) *os.File {
	tb.Helper()

	f, err := os.CreateTemp(tb.TempDir(), pattern)
	if err != nil {
		tb.Fatalf("create temp file: %v", err)
	}
	tb.Cleanup(func() { _ = f.Close() })
	return f
}

// Rewind seeks f back to its start, for reading back what was written.
func Rewind(tb testing.TB, f io.Seeker) {
	tb.Helper()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		tb.Fatalf("rewind: %v", err)
	}
}
