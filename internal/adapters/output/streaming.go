// internal/adapters/output/streaming.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"emailscope/internal/core/domain"
	"emailscope/internal/core/ports"
	"emailscope/internal/platform/errors"
	"emailscope/internal/platform/logx"
)

// StreamingWriter escribe cada evento del pipeline como una línea JSON
// (JSONL) a medida que ocurre, de modo que un proceso externo pueda seguir
// la ejecución con tail -f. Implementa ports.Notifier.
type StreamingWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
	lines  int
	closed bool
	logger logx.Logger
}

var _ ports.Notifier = (*StreamingWriter)(nil)

// NewStreamingWriter crea el fichero dir/<dominio>/emailscope_<dominio>_<ts>.events.jsonl.
func NewStreamingWriter(dir, domainName string, logger logx.Logger) (*StreamingWriter, error) {
	path, err := reportPath(dir, domainName, "events.jsonl", time.Now())
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrExportFailed, "open %s: %v", path, err)
	}

	sw := NewStreamingWriterTo(f, logger)
	sw.closer = f
	sw.path = path
	return sw, nil
}

// NewStreamingWriterTo escribe en un io.Writer arbitrario (stdout, tests).
func NewStreamingWriterTo(w io.Writer, logger logx.Logger) *StreamingWriter {
	if logger == nil {
		logger = logx.New()
	}
	return &StreamingWriter{
		w:      w,
		logger: logger.With("component", "streaming-writer"),
	}
}

// Notify implementa ports.Notifier.
func (s *StreamingWriter) Notify(_ context.Context, event ports.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.Wrap(domain.ErrExportFailed, "stream closed")
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return errors.Wrapf(domain.ErrExportFailed, "write event: %v", err)
	}
	s.lines++
	return nil
}

// Close implementa ports.Notifier. Idempotente.
func (s *StreamingWriter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Debug("event stream closed", "file", filepath.Base(s.path), "events", s.lines)
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Path retorna la ruta del fichero, o "" si escribe a un io.Writer.
func (s *StreamingWriter) Path() string {
	return s.path
}

// Lines retorna cuántos eventos se han escrito.
func (s *StreamingWriter) Lines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}
