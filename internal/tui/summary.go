package tui

import (
	"fmt"
	"io"

	"github.com/mrz1836/relcut/internal/domain"
	"github.com/mrz1836/relcut/internal/session"
)

// RenderSummary writes what a successful session published.
func RenderSummary(w io.Writer, r *session.Report) {
	out := NewOutput(w)
	s := r.Session
	if s.IsMock() {
		out.Warning(fmt.Sprintf("Mock session %s complete. Nothing was published.", s.ID()))
	} else {
		out.Success(fmt.Sprintf("Session %s complete.", s.ID()))
	}

	t := NewTable(w, "LABEL", "VERSION", "ARTIFACTS")
	for _, b := range r.Built {
		t.AddRow(b.Step.Label().String(), b.Step.Version().String(), b.ArtifactDir)
	}
	t.Render()

	o := r.Outcome
	if len(o.Branches) > 0 {
		out.Info(fmt.Sprintf("branches: %v", o.Branches))
	}
	if o.Uploaded > 0 {
		out.Info(fmt.Sprintf("uploaded %d file(s)", o.Uploaded))
	}
	for _, img := range o.Images {
		out.Info("image " + img)
	}
	if o.ReleaseURL != "" {
		out.Info("release " + o.ReleaseURL)
	}
	if len(r.Message.To) > 0 {
		out.Info(fmt.Sprintf("announced to %v", append(append([]string{}, r.Message.To...), r.Message.Cc...)))
	}
}

// RenderJournal writes the progress journal, used after a failure to show
// what already happened.
func RenderJournal(w io.Writer, p *domain.Progress) {
	styles := NewOutputStyles()
	if p == nil || p.Len() == 0 {
		_, _ = fmt.Fprintln(w, styles.Dim.Render("No steps completed."))
		return
	}
	_, _ = fmt.Fprintln(w, StyleBold.Render("Completed before the failure:"))
	for _, e := range p.Entries() {
		_, _ = fmt.Fprintf(w, "  %s %s %s\n",
			styles.Dim.Render(e.At.Format("15:04:05")),
			styles.Info.Render(string(e.Stage)),
			e.Detail)
	}
}
