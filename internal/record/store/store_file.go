package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"registrar/internal/platform/metrics"
	"registrar/internal/record/models"
	"registrar/pkg/platform/sentinel"
)

// DefaultPath is the records file used when none is configured.
const DefaultPath = "data.txt"

// FileStore holds every record in memory and mirrors them to a flat file.
// Every Put rewrites the whole file; Load replaces the whole in-memory set.
// The write lock is held across a put and its rewrite, so concurrent saves
// reach the file one at a time.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]*models.Record
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

func WithLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) FileOption {
	return func(s *FileStore) {
		s.metrics = m
	}
}

// NewFile creates an empty store bound to path. Call Load to read existing records.
func NewFile(path string, opts ...FileOption) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	s := &FileStore{
		path:    path,
		records: make(map[string]*models.Record),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file the store persists to.
func (s *FileStore) Path() string {
	return s.path
}

// Put inserts or replaces the record and rewrites the file. A record with a
// line break in any field is rejected untouched. If the rewrite fails, the
// previous in-memory entry is restored before the error is returned.
func (s *FileStore) Put(ctx context.Context, rec *models.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("put record: identifier is required")
	}
	if err := CheckEncodable(rec); err != nil {
		return fmt.Errorf("put record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[rec.ID]
	s.records[rec.ID] = rec.Clone()

	if err := s.writeLocked(ctx, s.path); err != nil {
		if existed {
			s.records[rec.ID] = prev
		} else {
			delete(s.records, rec.ID)
		}
		return err
	}
	s.reportCount()
	return nil
}

func (s *FileStore) FindByID(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *FileStore) List(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.records), nil
}

func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Load replaces the in-memory state with the contents of the store's file.
func (s *FileStore) Load(ctx context.Context) (int, error) {
	return s.LoadFrom(ctx, s.path)
}

// LoadFrom replaces the in-memory state with the records parsed from path.
// A missing file yields an empty store. On a read error the current state is kept.
func (s *FileStore) LoadFrom(ctx context.Context, path string) (int, error) {
	start := time.Now()

	records, skipped, err := readFile(path)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load records file",
			"path", path,
			"error", err,
		)
		return 0, err
	}

	s.mu.Lock()
	s.records = records
	s.reportCount()
	s.mu.Unlock()

	if skipped > 0 {
		s.logger.DebugContext(ctx, "skipped malformed record lines",
			"path", path,
			"skipped", skipped,
		)
	}
	if s.metrics != nil {
		s.metrics.AddLinesSkipped(skipped)
		s.metrics.ObserveLoad(start)
	}
	return len(records), nil
}

// Save rewrites the store's file from the in-memory state.
func (s *FileStore) Save(ctx context.Context) error {
	return s.SaveTo(ctx, s.path)
}

// SaveTo writes every record to path, overwriting it.
func (s *FileStore) SaveTo(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, path)
}

func (s *FileStore) writeLocked(ctx context.Context, path string) error {
	start := time.Now()

	f, err := os.Create(path)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to open records file for writing",
			"path", path,
			"error", err,
		)
		return fmt.Errorf("open records file: %w", err)
	}
	if err := WriteRecords(f, sortedRecords(s.records)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write records file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close records file: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObservePersist(start)
	}
	return nil
}

func (s *FileStore) reportCount() {
	if s.metrics != nil {
		s.metrics.SetStoredRecords(len(s.records))
	}
}

func readFile(path string) (map[string]*models.Record, int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]*models.Record), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	records, skipped, err := ReadRecords(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("read records file: %w", err)
	}
	return records, skipped, nil
}
