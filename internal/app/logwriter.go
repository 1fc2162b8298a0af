package app

import (
	"bytes"
	"strings"
	"sync"
)

// logWriter turns a byte stream into complete lines for the log pane.
type logWriter struct {
	mu   sync.Mutex
	buf  []byte
	emit func(string)
}

func newLogWriter(emit func(string)) *logWriter {
	return &logWriter{emit: emit}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		if strings.TrimSpace(line) != "" {
			w.emit(line)
		}
	}
	return len(p), nil
}
