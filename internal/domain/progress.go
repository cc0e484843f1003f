package domain

import (
	"fmt"
	"strings"
	"time"
)

// Stage names a phase of the session for the progress journal.
type Stage string

// Session stages in execution order.
const (
	StageWorkspace Stage = "workspace"
	StageResolve   Stage = "resolve"
	StagePlan      Stage = "plan"
	StagePrepare   Stage = "prepare"
	StageBuild     Stage = "build"
	StagePush      Stage = "push"
	StageArtifacts Stage = "artifacts"
	StageHosting   Stage = "hosting"
	StageAnnounce  Stage = "announce"
)

// ProgressEntry records one completed unit of work.
type ProgressEntry struct {
	Stage  Stage     `json:"stage"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// Progress is the append-only journal of completed work. On failure it tells
// the operator exactly what already happened.
type Progress struct {
	entries []ProgressEntry
}

// Record appends an entry.
func (p *Progress) Record(stage Stage, detail string, at time.Time) {
	p.entries = append(p.entries, ProgressEntry{Stage: stage, Detail: detail, At: at})
}

// Entries returns a copy of the journal.
func (p *Progress) Entries() []ProgressEntry {
	out := make([]ProgressEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len returns the number of entries.
func (p *Progress) Len() int { return len(p.entries) }

// Last returns the most recent entry.
func (p *Progress) Last() (ProgressEntry, bool) {
	if len(p.entries) == 0 {
		return ProgressEntry{}, false
	}
	return p.entries[len(p.entries)-1], true
}

// Lines renders one "stage: detail" line per entry.
func (p *Progress) Lines() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = fmt.Sprintf("%s: %s", e.Stage, e.Detail)
	}
	return out
}

// String joins Lines with newlines.
func (p *Progress) String() string { return strings.Join(p.Lines(), "\n") }
