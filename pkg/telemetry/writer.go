// Package telemetry persists raw stroke samples to per-session columnar
// files. Each session owns at most one open writer; every batch becomes one
// appended row group, and appends never read the existing file back.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

// SchemaVersion is stamped into every TelemetryChunk this writer produces.
const SchemaVersion = 1

// StrokeRow is the columnar schema of a telemetry file.
type StrokeRow struct {
	X         float32 `parquet:"x"`
	Y         float32 `parquet:"y"`
	Pressure  float32 `parquet:"pressure"`
	Timestamp float64 `parquet:"timestamp"`
	Tilt      float32 `parquet:"tilt"`
	TiltX     float32 `parquet:"tilt_x"`
	TiltY     float32 `parquet:"tilt_y"`
}

// sessionWriter owns one open columnar file. Access is serialized per
// session by its own mutex; the pool map has a separate lock.
type sessionWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *parquet.GenericWriter[StrokeRow]
	path   string
	total  int
}

// WriterPool is the process-global registry of open session writers.
type WriterPool struct {
	mu      sync.Mutex
	baseDir string
	writers map[string]*sessionWriter
	// totals outlives individual writers: a session closed and reopened
	// keeps accumulating, so chunk row counts always sum to the last
	// written total.
	totals map[string]int
	closed bool
}

// NewWriterPool creates the pool writing under baseDir.
func NewWriterPool(baseDir string) (*WriterPool, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &WriterPool{
		baseDir: baseDir,
		writers: make(map[string]*sessionWriter),
		totals:  make(map[string]int),
	}, nil
}

// SessionPath returns the columnar file path for a session.
func (p *WriterPool) SessionPath(sessionID string) string {
	return filepath.Join(p.baseDir, fmt.Sprintf("session_%s.parquet", sessionID))
}

// SaveStrokes appends one batch as a new row group, opening the session file
// on first write, and returns the chunk metadata with both the batch count
// and the new running total.
func (p *WriterPool) SaveStrokes(sessionID, artifactID string, samples []models.StrokeSample) (*models.TelemetryChunk, error) {
	sw, err := p.acquire(sessionID)
	if err != nil {
		return nil, err
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	rows := make([]StrokeRow, len(samples))
	for i, s := range samples {
		rows[i] = StrokeRow{
			X: s.X, Y: s.Y, Pressure: s.Pressure,
			Timestamp: s.Timestamp,
			Tilt:      s.Tilt, TiltX: s.TiltX, TiltY: s.TiltY,
		}
	}
	if len(rows) > 0 {
		if _, err := sw.writer.Write(rows); err != nil {
			return nil, fmt.Errorf("failed to write stroke batch: %w", err)
		}
	}
	// Flush closes the current row group so each batch is one group.
	if err := sw.writer.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush row group: %w", err)
	}
	sw.total += len(rows)
	p.mu.Lock()
	p.totals[sessionID] = sw.total
	p.mu.Unlock()

	return &models.TelemetryChunk{
		ID:               uuid.New().String(),
		SessionID:        sessionID,
		ArtifactID:       artifactID,
		ParquetPath:      sw.path,
		ChunkRowCount:    len(rows),
		TotalSessionRows: sw.total,
		CreatedAt:        time.Now().UTC(),
		SchemaVersion:    SchemaVersion,
	}, nil
}

// acquire returns the open writer for the session, creating file and writer
// on first use.
func (p *WriterPool) acquire(sessionID string) (*sessionWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("writer pool is closed")
	}
	if sw, ok := p.writers[sessionID]; ok {
		return sw, nil
	}

	path := p.SessionPath(sessionID)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry file: %w", err)
	}

	sw := &sessionWriter{
		file:   file,
		writer: parquet.NewGenericWriter[StrokeRow](file),
		path:   path,
		total:  p.totals[sessionID],
	}
	p.writers[sessionID] = sw
	slog.Info("Opened telemetry writer", "session_id", sessionID, "path", path)
	return sw, nil
}

// CloseSession flushes and releases the session's writer. A later write
// reopens the file fresh. No-op when the session has no open writer.
func (p *WriterPool) CloseSession(sessionID string) error {
	p.mu.Lock()
	sw, ok := p.writers[sessionID]
	delete(p.writers, sessionID)
	p.mu.Unlock()

	if !ok {
		return nil
	}
	return sw.close()
}

// Close flushes and releases every open writer. Called once at process
// shutdown.
func (p *WriterPool) Close() error {
	p.mu.Lock()
	writers := p.writers
	p.writers = make(map[string]*sessionWriter)
	p.closed = true
	p.mu.Unlock()

	var g errgroup.Group
	for sessionID, sw := range writers {
		g.Go(func() error {
			if err := sw.close(); err != nil {
				return fmt.Errorf("failed to close telemetry writer for session %s: %w", sessionID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// OpenSessions returns the ids of sessions with an open writer.
func (p *WriterPool) OpenSessions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.writers))
	for id := range p.writers {
		out = append(out, id)
	}
	return out
}

func (sw *sessionWriter) close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if err := sw.writer.Close(); err != nil {
		_ = sw.file.Close()
		return err
	}
	return sw.file.Close()
}
