package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store persists checkpoint state to a JSON file. Single-writer discipline is
// assumed: one runner instance per checkpoint file.
type Store struct {
	Path   string
	Logger *log.Logger
}

// Load reads prior state from disk. A missing or unreadable file is never
// fatal: it is logged and an empty state is returned, so a corrupt checkpoint
// degrades to "start fresh".
func (s *Store) Load() *State {
	if s == nil || s.Path == "" {
		return NewState()
	}

	b, err := os.ReadFile(s.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logf("checkpoint: read %q: %v (starting fresh)", s.Path, err)
		}
		return NewState()
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		s.logf("checkpoint: parse %q: %v (starting fresh)", s.Path, err)
		return NewState()
	}
	if st.Timestamp == "" {
		st.Timestamp = time.Now().Format(TimestampFormat)
	}
	st.reindex()

	s.logf("checkpoint: loaded %q (%d completed)", s.Path, st.CompletedCount())
	return &st
}

// Save serializes the full state, overwriting prior content (last writer
// wins). The write goes through a temp file and rename so a crash mid-save
// cannot corrupt the previous checkpoint.
func (s *Store) Save(st *State) error {
	if s == nil || s.Path == "" {
		return errors.New("checkpoint: empty store path")
	}
	if st == nil {
		return errors.New("checkpoint: nil state")
	}

	sort.Ints(st.CompletedQuestions)
	st.LastSaved = time.Now().Format(time.RFC3339)

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("checkpoint: create dir: %w", err)
		}
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("checkpoint: rename %q: %w", s.Path, err)
	}

	s.logf("checkpoint: saved %q (%d completed)", s.Path, st.CompletedCount())
	return nil
}

func (s *Store) logf(format string, args ...any) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Printf(format, args...)
}
