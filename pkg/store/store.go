// Package store writes the flat, timestamp-named text files an intake run
// leaves behind and reads prompt templates from disk.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Save creates or truncates the file at path and writes content verbatim.
// The parent directory is created when missing.
func Save(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// Load returns the full text content of the file at path. Byte sequences
// that are not valid UTF-8 are dropped rather than reported.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// Stamp formats t the way output file names carry it: unix seconds with a
// microsecond fraction.
func Stamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}

// Store names and writes the artifacts of a single run.
type Store struct {
	logsDir  string
	debugDir string
	started  time.Time
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used to stamp file names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store writing artifacts under logsDir and the debug log
// under debugDir. The process start time is captured here.
func New(logsDir, debugDir string, opts ...Option) *Store {
	s := &Store{
		logsDir:  logsDir,
		debugDir: debugDir,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.now()
	return s
}

// DebugLogPath returns the single debug log path for this run.
func (s *Store) DebugLogPath() string {
	return filepath.Join(s.debugDir, fmt.Sprintf("log_%s.log", Stamp(s.started)))
}

// ArtifactPath returns an unused, timestamp-derived path for an artifact of
// the given kind. A numeric suffix is added if the stamped name is taken.
func (s *Store) ArtifactPath(kind string) (string, error) {
	stamp := Stamp(s.now())
	path := filepath.Join(s.logsDir, fmt.Sprintf("log_%s_%s.txt", stamp, kind))

	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("could not stat %s: %w", path, err)
		}
		path = filepath.Join(s.logsDir, fmt.Sprintf("log_%s_%s_%d.txt", stamp, kind, n))
	}
}

// SaveArtifact writes content to a fresh artifact path and returns it.
func (s *Store) SaveArtifact(kind, content string) (string, error) {
	path, err := s.ArtifactPath(kind)
	if err != nil {
		return "", err
	}
	if err := Save(path, content); err != nil {
		return "", err
	}
	return path, nil
}
