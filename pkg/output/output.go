// Package output appends free domains to the result file.
package output

import (
	"fmt"
	"os"
)

// Writer appends one domain per line and syncs after every record so a run
// can be interrupted at any point without losing confirmed results
type Writer struct {
	path  string
	file  *os.File
	count int
}

// Open opens path for appending, creating it if needed. Existing content is
// never truncated.
func Open(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Writer{path: path, file: file}, nil
}

// Append writes domain on its own line and flushes it to disk
func (w *Writer) Append(domain string) error {
	if _, err := fmt.Fprintln(w.file, domain); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended by this writer
func (w *Writer) Count() int {
	return w.count
}

// Path returns the file path
func (w *Writer) Path() string {
	return w.path
}

// Close closes the file
func (w *Writer) Close() error {
	return w.file.Close()
}
