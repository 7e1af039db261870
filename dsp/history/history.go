// Package history implements a linear undo/redo store of immutable
// (PitchTrack, NoteList) snapshots, in the same functional-options shape
// as dsp/core's ProcessorConfig.
package history

import (
	"github.com/ppquadrat/tonyweb-core/dsp/notemodel"
	"github.com/ppquadrat/tonyweb-core/dsp/yinfft"
)

// Snapshot is one immutable committed state. Callers receive references to
// the track and notes they pass in, not copies; the store never mutates a
// committed Snapshot's fields.
type Snapshot struct {
	Track yinfft.PitchTrack
	Notes notemodel.List
}

// Config configures a Store.
type Config struct {
	// MaxSnapshots caps history length; 0 means unbounded. When exceeded,
	// the oldest snapshot is evicted and the index re-based.
	MaxSnapshots int
}

// Option mutates a Config.
type Option func(*Config)

// WithMaxSnapshots caps the store to n snapshots, evicting from the head.
func WithMaxSnapshots(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxSnapshots = n
		}
	}
}

// ApplyOptions builds a Config from defaults plus opts.
func ApplyOptions(opts ...Option) Config {
	var cfg Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Store is a linear history of Snapshots with a current index.
//
// Invariant: 0 <= index < len(snapshots) whenever len(snapshots) > 0; the
// index never points past either end.
type Store struct {
	cfg       Config
	snapshots []Snapshot
	index     int
}

// New constructs a Store. If initial is non-nil, it becomes the first
// committed snapshot.
func New(initial *Snapshot, opts ...Option) *Store {
	s := &Store{cfg: ApplyOptions(opts...), index: -1}
	if initial != nil {
		s.Commit(*initial)
	}
	return s
}

// Commit truncates any redo tail past the current index and appends snap
// as the new current snapshot.
func (s *Store) Commit(snap Snapshot) {
	s.snapshots = append(s.snapshots[:s.index+1], snap)
	s.index = len(s.snapshots) - 1

	if s.cfg.MaxSnapshots > 0 && len(s.snapshots) > s.cfg.MaxSnapshots {
		evict := len(s.snapshots) - s.cfg.MaxSnapshots
		s.snapshots = s.snapshots[evict:]
		s.index -= evict
	}
}

// Reset discards all history and starts fresh at snap.
func (s *Store) Reset(snap Snapshot) {
	s.snapshots = []Snapshot{snap}
	s.index = 0
}

// Current returns the snapshot at the current index. ok is false if the
// store has never been committed to.
func (s *Store) Current() (Snapshot, bool) {
	if s.index < 0 || s.index >= len(s.snapshots) {
		return Snapshot{}, false
	}
	return s.snapshots[s.index], true
}

// CanUndo reports whether Undo would move the index.
func (s *Store) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether Redo would move the index.
func (s *Store) CanRedo() bool { return s.index < len(s.snapshots)-1 }

// Undo moves the index back one snapshot, if possible, and returns the
// resulting current snapshot.
func (s *Store) Undo() (Snapshot, bool) {
	if !s.CanUndo() {
		return s.Current()
	}
	s.index--
	return s.Current()
}

// Redo moves the index forward one snapshot, if possible, and returns the
// resulting current snapshot.
func (s *Store) Redo() (Snapshot, bool) {
	if !s.CanRedo() {
		return s.Current()
	}
	s.index++
	return s.Current()
}

// Len returns the number of committed snapshots.
func (s *Store) Len() int { return len(s.snapshots) }
