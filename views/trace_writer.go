package views

import (
	"bufio"
	"fmt"
	"strings"

	"can-datalogger/services/storage"
)

// TraceWriter is a buffered append-only line writer over one trace file.
//
// Design notes:
//   - bufio absorbs per-record write overhead; Sync() is driven by the
//     session logger's flush cadence, never by the hot path.
//   - Size() is exact byte accounting of everything accepted (header
//     included), so the rotation ceiling check does not drift from the
//     true file size regardless of buffering.
type TraceWriter struct {
	file  storage.File
	buf   *bufio.Writer
	bytes int64
	rows  uint64
}

const defaultBufSize = 32 * 1024

// NewTraceWriter creates the named file in the store and writes its
// header row. On header failure the file is closed and an error
// returned; no half-written stream is left open.
func NewTraceWriter(store storage.Store, name string, header []string, bufSize int) (*TraceWriter, error) {
	f, err := store.Create(name)
	if err != nil {
		return nil, fmt.Errorf("views: open trace %s: %w", name, err)
	}
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	w := &TraceWriter{
		file: f,
		buf:  bufio.NewWriterSize(f, bufSize),
	}
	if err := w.writeLine(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("views: write header %s: %w", name, err)
	}
	return w, nil
}

func (w *TraceWriter) writeLine(fields []string) error {
	line := strings.Join(fields, ",")
	n, err := w.buf.WriteString(line)
	w.bytes += int64(n)
	if err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	w.bytes++
	return nil
}

// WriteRow appends one record line.
func (w *TraceWriter) WriteRow(row []string) error {
	if err := w.writeLine(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Size returns the bytes accepted so far, header included.
func (w *TraceWriter) Size() int64 { return w.bytes }

// Rows returns the number of record lines written (excludes header).
func (w *TraceWriter) Rows() uint64 { return w.rows }

// Sync drains the buffer and commits it to the medium.
func (w *TraceWriter) Sync() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes remaining data and closes the file.
func (w *TraceWriter) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
