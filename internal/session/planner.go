// Package session plans and drives a release session: it orders the
// resolved labels, runs prepare and build for each, and only then opens the
// publish and announce phases.
package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/version"
)

// Plan orders the session's labels into steps. Labels tagged on the parent
// branch come first, then the label that creates the branch, then the rest
// in declared order.
func Plan(s domain.Session) []domain.Step {
	entries := s.Versions().Entries()
	primary := s.Versions().PrimaryLabel()

	steps := make([]domain.Step, 0, len(entries))
	created := false
	for _, e := range entries {
		st := domain.Step{
			Entry:    e,
			Branch:   s.Branch(),
			Checkout: domain.OnBranch,
			Primary:  e.Label == primary,
		}
		if s.CreatesBranch() {
			switch {
			case onParent(s, e.Label):
				st.Branch = s.Parent()
				st.Checkout = domain.OnParent
			case !created:
				st.Parent = s.Parent()
				st.Checkout = domain.CreateBranch
				created = true
			}
		}
		steps = append(steps, st)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return checkoutRank(steps[i].Checkout) < checkoutRank(steps[j].Checkout)
	})
	return steps
}

// onParent reports whether label is tagged on the parent when this session
// creates a minor release branch from master.
func onParent(s domain.Session, label version.Label) bool {
	return s.Parent().IsMaster() && label == version.LabelAlpha
}

func checkoutRank(m domain.CheckoutMode) int {
	switch m {
	case domain.OnParent:
		return 0
	case domain.CreateBranch:
		return 1
	case domain.OnBranch:
		return 2
	}
	return 3
}

// Gate opens the publish phase only after every planned step has built.
type Gate struct {
	planned []version.Label
	built   map[version.Label]bool
}

// NewGate creates a closed gate for steps.
func NewGate(steps []domain.Step) *Gate {
	g := &Gate{built: make(map[version.Label]bool, len(steps))}
	for _, st := range steps {
		g.planned = append(g.planned, st.Label())
	}
	return g
}

// MarkBuilt records that label has finished its build.
func (g *Gate) MarkBuilt(label version.Label) {
	g.built[label] = true
}

// Built reports whether label has been built.
func (g *Gate) Built(label version.Label) bool { return g.built[label] }

// Open returns nil once every planned label is built.
func (g *Gate) Open() error {
	var missing []string
	for _, l := range g.planned {
		if !g.built[l] {
			missing = append(missing, l.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: not built: %s", relerrors.ErrPublishGateClosed, strings.Join(missing, ", "))
	}
	return nil
}
