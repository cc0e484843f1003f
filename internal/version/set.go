package version

import (
	"fmt"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// Entry is one label of a release version set.
type Entry struct {
	Label   Label
	Version SemVer
	// Unfrozen marks a version that is still moving; its stamp carries a trailing "+".
	Unfrozen bool
}

// Stamp returns the identifier written into source for this entry.
func (e Entry) Stamp() string {
	if e.Unfrozen {
		return e.Version.String() + "+"
	}
	return e.Version.String()
}

// Set is the ordered, immutable mapping label -> version for one session.
// Exactly one entry is primary.
type Set struct {
	entries []Entry
	primary Label
}

// NewSet validates and freezes entries in declared order.
func NewSet(primary Label, entries ...Entry) (Set, error) {
	if len(entries) == 0 {
		return Set{}, fmt.Errorf("version set is empty: %w", relerrors.ErrEmptyValue)
	}

	seen := make(map[Label]bool, len(entries))
	for _, e := range entries {
		if e.Label == "" || e.Version.IsZero() {
			return Set{}, fmt.Errorf("version set entry %q is incomplete: %w", e.Label, relerrors.ErrEmptyValue)
		}
		if seen[e.Label] {
			return Set{}, fmt.Errorf("label %q listed twice: %w", e.Label, relerrors.ErrInvalidVersion)
		}
		seen[e.Label] = true
	}
	if !seen[primary] {
		return Set{}, fmt.Errorf("primary label %q not in set: %w", primary, relerrors.ErrInvalidVersion)
	}

	frozen := make([]Entry, len(entries))
	copy(frozen, entries)
	return Set{entries: frozen, primary: primary}, nil
}

// Len returns the number of labels.
func (s Set) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in declared order.
func (s Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Labels returns the labels in declared order.
func (s Set) Labels() []Label {
	out := make([]Label, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Label
	}
	return out
}

// Get returns the entry for label.
func (s Set) Get(label Label) (Entry, bool) {
	for _, e := range s.entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Primary returns the primary entry.
func (s Set) Primary() Entry {
	e, _ := s.Get(s.primary)
	return e
}

// PrimaryLabel returns the label of the primary entry.
func (s Set) PrimaryLabel() Label { return s.primary }
