package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Source labels for Snapshot, in fallback order.
const (
	SourceRemote = "remote CSV"
	SourceFile   = "local file"
	SourceSample = "built-in sample"
	SourceUpload = "uploaded file"
)

// Store holds the current benchmark table. Reads and swaps are safe for
// concurrent use; a swap replaces the whole table at once so readers never
// see a partial load.
type Store struct {
	mu         sync.RWMutex
	industries []Industry
	source     string
	loadedAt   time.Time
	logger     *zap.Logger
}

// Snapshot describes the current table and where it came from.
type Snapshot struct {
	Industries []Industry
	Source     string
	LoadedAt   time.Time
}

// NewStore constructs an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Load populates the store using the original tool's fallback ladder:
// remote fetch first, then the configured local file, then the built-in
// sample. It only fails when a configured local file exists but cannot be
// parsed; the sample always succeeds.
func (s *Store) Load(ctx context.Context, fetcher Fetcher, localPath string) error {
	if fetcher != nil {
		if industries, err := fetcher.Fetch(ctx); err == nil {
			s.swap(industries, fetcher.Name())
			return nil
		}
	}

	if localPath != "" {
		industries, err := loadFile(localPath)
		if err != nil {
			return fmt.Errorf("failed to load dataset file %s: %w", localPath, err)
		}
		s.swap(industries, SourceFile)
		return nil
	}

	s.swap(Sample(), SourceSample)
	return nil
}

// Replace swaps in an externally supplied table, e.g. from an upload.
func (s *Store) Replace(industries []Industry, source string) error {
	if len(industries) == 0 {
		return fmt.Errorf("replacement dataset is empty")
	}
	s.swap(industries, source)
	return nil
}

// Snapshot returns a copy of the current table with its provenance.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	industries := make([]Industry, len(s.industries))
	copy(industries, s.industries)
	return Snapshot{Industries: industries, Source: s.source, LoadedAt: s.loadedAt}
}

// Industries returns a copy of the current table.
func (s *Store) Industries() []Industry {
	return s.Snapshot().Industries
}

// Find looks up an industry by exact name.
func (s *Store) Find(name string) (Industry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, industry := range s.industries {
		if industry.Name == name {
			return industry, true
		}
	}
	return Industry{}, false
}

// ScheduleRefresh re-fetches the remote table on the given cron schedule
// (e.g. "@every 24h"). A failed refresh keeps the current table. The
// returned cron is already started; the caller stops it on shutdown.
func (s *Store) ScheduleRefresh(ctx context.Context, schedule string, fetcher Fetcher) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		industries, err := fetcher.Fetch(ctx)
		if err != nil {
			s.logger.Warn("scheduled dataset refresh failed; keeping current table",
				zap.String("op", "dataset.ScheduleRefresh"),
				zap.Error(err),
			)
			return
		}
		s.swap(industries, fetcher.Name())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

func (s *Store) swap(industries []Industry, source string) {
	s.mu.Lock()
	s.industries = industries
	s.source = source
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		zap.String("op", "dataset.swap"),
		zap.String("source", source),
		zap.Int("industries", len(industries)),
	)
}

func loadFile(path string) ([]Industry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()
	return ParseCSV(file)
}
