// Package spool provides a local file-based spool for reports whose
// delivery failed. Each entry is a timestamped JSON file; data persists
// across crashes and reboots, and auto-cleanup enforces a size limit.
// Spooled reports exist only to be retried, never for trend comparison.
package spool

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is one undelivered report: which channel failed and what to send.
type Entry struct {
	Channel  string    `json:"channel"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	StoredAt time.Time `json:"stored_at"`
}

// Spool stores undelivered reports as individual JSON files in a directory.
type Spool struct {
	dir       string
	maxSizeMB int
	logger    *zap.Logger
	mu        sync.Mutex
}

// New creates a spool at the given directory path.
// The directory is created if it does not exist.
func New(dir string, maxSizeMB int, logger *zap.Logger) (*Spool, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	return &Spool{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		logger:    logger,
	}, nil
}

// Store saves an entry to a timestamped JSON file. If the spool exceeds
// the configured size limit, the oldest entry is dropped first.
func (s *Spool) Store(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentSizeMB() >= s.maxSizeMB {
		s.logger.Warn("Spool full, dropping oldest entry")
		s.dropOldest()
	}

	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}

	filename := filepath.Join(s.dir, time.Now().UTC().Format("20060102T150405.000000000")+".json")
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0640)
}

// Drain reads all spooled entries and removes the corresponding files.
// Corrupted files are removed and logged. Entries come back in
// chronological order.
func (s *Spool) Drain() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var drained []Entry
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Failed to read spooled entry, removing",
				zap.String("file", name), zap.Error(err))
			os.Remove(path)
			continue
		}

		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			s.logger.Warn("Corrupted spool entry, removing",
				zap.String("file", name), zap.Error(err))
			os.Remove(path)
			continue
		}

		drained = append(drained, e)
		os.Remove(path)
	}

	return drained, nil
}

// currentSizeMB returns the total size of all spooled files in megabytes.
func (s *Spool) currentSizeMB() int {
	var total int64
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
	}
	return int(total / (1024 * 1024))
}

// dropOldest removes the oldest spooled file by name (timestamped names
// sort chronologically).
func (s *Spool) dropOldest() {
	entries, err := os.ReadDir(s.dir)
	if err != nil || len(entries) == 0 {
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	os.Remove(filepath.Join(s.dir, names[0]))
}
