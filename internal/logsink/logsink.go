// Package logsink appends log output to day-keyed files and retains only
// the most recent ones.
package logsink

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxFiles keeps a year of daily logs.
	DefaultMaxFiles = 366

	fileSuffix = ".log"
	dayLayout  = "20060102"
)

// Sink is an io.Writer that appends to <dir>/<YYYYMMDD>.log and prunes the
// oldest files, by sorted filename, once the retention cap is exceeded.
type Sink struct {
	dir      string
	maxFiles int
	now      func() time.Time

	mu sync.Mutex
}

// New creates the sink and its directory.
func New(dir string, maxFiles int) (*Sink, error) {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Sink{dir: dir, maxFiles: maxFiles, now: time.Now}, nil
}

// Write appends p to today's log file.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.now().Format(dayLayout) + fileSuffix
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := f.Write(p)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	return n, s.prune()
}

func (s *Sink) prune() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileSuffix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= s.maxFiles {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-s.maxFiles] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
