package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultBufferSize is the buffer size for log file writes
const DefaultBufferSize = 32 * 1024

// DefaultFlushInterval is the default interval for auto-flushing buffered writes
const DefaultFlushInterval = 5 * time.Second

// LogFilePermissions restricts log files to the owner
const LogFilePermissions = 0o600

// BufferedFileWriter wraps a file with buffered I/O.
// It is thread-safe and flushes periodically in the background.
type BufferedFileWriter struct {
	mu          sync.Mutex
	file        *os.File
	writer      *bufio.Writer
	filePath    string
	stopFlush   chan struct{}
	flushDone   chan struct{}
	flushTicker *time.Ticker
	closed      bool
}

// NewBufferedFileWriter opens filePath in append mode and starts the auto-flush loop.
func NewBufferedFileWriter(filePath string, flushInterval time.Duration) (*BufferedFileWriter, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path from user config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	w := &BufferedFileWriter{
		file:        file,
		writer:      bufio.NewWriterSize(file, DefaultBufferSize),
		filePath:    filePath,
		stopFlush:   make(chan struct{}),
		flushDone:   make(chan struct{}),
		flushTicker: time.NewTicker(flushInterval),
	}
	go w.autoFlushLoop()

	return w, nil
}

func (w *BufferedFileWriter) autoFlushLoop() {
	defer close(w.flushDone)

	for {
		select {
		case <-w.stopFlush:
			return
		case <-w.flushTicker.C:
			// Errors surface on the next Write
			_ = w.Flush()
		}
	}
}

// Write writes data to the buffer. Thread-safe.
func (w *BufferedFileWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0, fmt.Errorf("writer is closed")
	}

	return w.writer.Write(p)
}

// Flush flushes the buffer to OS file buffers. Thread-safe.
func (w *BufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

// Close flushes, syncs and closes the underlying file. Close is idempotent.
func (w *BufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.flushTicker.Stop()
	close(w.stopFlush)
	<-w.flushDone

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if err := w.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush buffer: %w", err))
	}
	if err := w.file.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("failed to sync file: %w", err))
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close file: %w", err))
	}
	w.file = nil
	w.writer = nil

	return errors.Join(errs...)
}

// FilePath returns the path of the underlying file
func (w *BufferedFileWriter) FilePath() string {
	return w.filePath
}

var (
	_ io.Writer = (*BufferedFileWriter)(nil)
	_ io.Closer = (*BufferedFileWriter)(nil)
)
