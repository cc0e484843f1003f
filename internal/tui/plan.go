package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mrz1836/relcut/internal/domain"
)

// RenderPlan writes the ordered plan before any tree mutation.
func RenderPlan(w io.Writer, s domain.Session, steps []domain.Step) {
	CheckNoColor()
	styles := NewOutputStyles()

	title := fmt.Sprintf("Release plan for %s", s.Branch())
	if s.CreatesBranch() {
		title += fmt.Sprintf(" (new branch from %s)", s.Parent())
	}
	_, _ = fmt.Fprintln(w, StyleBold.Render(title))
	_, _ = fmt.Fprintln(w, styles.Dim.Render(fmt.Sprintf("candidate %s  session %s", s.Candidate(), s.ID())))
	if s.IsMock() {
		_, _ = fmt.Fprintln(w, styles.Warning.Render("MOCK RUN: pushes use --dry-run and uploads are skipped. Pass --nomock to publish."))
	}
	_, _ = fmt.Fprintln(w)

	t := NewTable(w, "#", "LABEL", "VERSION", "STAMP", "BRANCH", "CHECKOUT", "")
	for i, st := range steps {
		stamp := "-"
		if st.Label().IsStamped() {
			stamp = st.Entry.Stamp()
		}
		row := []string{strconv.Itoa(i + 1), st.Label().String(), st.Version().String(), stamp, st.Branch.String(), st.Checkout.String(), ""}
		if st.Primary {
			row[6] = "primary"
			t.AddStyledRow(styles.Info, row...)
			continue
		}
		t.AddRow(row...)
	}
	t.Render()
	_, _ = fmt.Fprintln(w)
}
