package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter serializes line writes to one or more sinks behind a mutex with
// a shared buffer, so handler calls from concurrent updates never interleave.
type asyncWriter struct {
	mu      sync.Mutex
	writers []*bufio.Writer
	closed  bool
}

func newAsyncWriter(outputs []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 4096
	}
	ws := make([]*bufio.Writer, 0, len(outputs))
	for _, out := range outputs {
		if out == nil {
			continue
		}
		ws = append(ws, bufio.NewWriterSize(out, bufSize))
	}
	return &asyncWriter{writers: ws}
}

// Write appends one formatted log line to every sink.
func (w *asyncWriter) Write(line []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("logger: writer closed")
	}
	var errs []error
	for _, bw := range w.writers {
		if _, err := bw.Write(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush drains buffered output to the underlying sinks.
func (w *asyncWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, bw := range w.writers {
		if err := bw.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and marks the writer unusable.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	var errs []error
	for _, bw := range w.writers {
		if err := bw.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
