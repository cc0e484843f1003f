// Package announce composes and delivers the notification sent after a
// release session publishes.
package announce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/clock"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
)

// DefaultCommand submits a message read from stdin, taking recipients from its headers.
const DefaultCommand = "sendmail -t"

// Config holds the mail settings.
type Config struct {
	// Command is the submission command line. Defaults to DefaultCommand.
	Command string
	From    string
	// Operator receives mock announcements.
	Operator string
	To       []string
	Cc       []string
}

// VersionLine is one tagged version in an announcement.
type VersionLine struct {
	Label   string
	Version string
	Primary bool
}

// Data is the template input.
type Data struct {
	SessionID  string
	Branch     string
	Parent     string
	Primary    string
	Candidate  string
	Versions   []VersionLine
	Notes      string
	ReleaseURL string
	Mock       bool
}

// DataFor fills Data from a session and its publish results.
func DataFor(s domain.Session, notes, releaseURL string) Data {
	d := Data{
		SessionID:  s.ID(),
		Branch:     s.Branch().String(),
		Primary:    s.Primary().Version.String(),
		Candidate:  s.Candidate().String(),
		Notes:      notes,
		ReleaseURL: releaseURL,
		Mock:       s.IsMock(),
	}
	if s.CreatesBranch() {
		d.Parent = s.Parent().String()
	}
	primary := s.Versions().PrimaryLabel()
	for _, e := range s.Versions().Entries() {
		d.Versions = append(d.Versions, VersionLine{
			Label:   e.Label.String(),
			Version: e.Version.String(),
			Primary: e.Label == primary,
		})
	}
	return d
}

// Kind returns the announcement kind for d.
func (d Data) Kind() Kind {
	if d.Parent != "" {
		return BranchCreated
	}
	return ReleasePublished
}

// Announcer sends announcements through the mail command.
type Announcer struct {
	cfg    Config
	ctrl   *execmode.Controller
	clock  clock.Clock
	logger zerolog.Logger
}

// New creates an Announcer. A nil clock uses the system time.
func New(cfg Config, ctrl *execmode.Controller, clk clock.Clock, logger zerolog.Logger) *Announcer {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Announcer{cfg: cfg, ctrl: ctrl, clock: clk, logger: logger}
}

// Compose builds the message for d. Mock runs address only the operator.
func (a *Announcer) Compose(d Data) (Message, error) {
	text, html, err := render(d.Kind(), d)
	if err != nil {
		return Message{}, relerrors.Announce("compose", fmt.Errorf("%w: %w", relerrors.ErrMailFailed, err))
	}

	m := Message{
		From:    a.cfg.From,
		Subject: subject(d),
		Text:    text,
		HTML:    html,
		Date:    a.clock.Now(),
	}
	if d.Mock {
		if a.cfg.Operator != "" {
			m.To = []string{a.cfg.Operator}
		}
	} else {
		m.To = a.cfg.To
		m.Cc = a.cfg.Cc
	}
	if len(m.To) == 0 {
		return Message{}, relerrors.Announce("compose", fmt.Errorf("%w: no recipients for %s run", relerrors.ErrMailFailed, modeName(d.Mock)))
	}
	if m.From == "" {
		m.From = m.To[0]
	}
	return m, nil
}

// Send composes and submits the announcement for d. A mock run with no
// operator address sends nothing and returns the zero Message.
func (a *Announcer) Send(ctx context.Context, d Data) (Message, error) {
	if d.Mock && a.cfg.Operator == "" {
		a.logger.Info().Str("session", d.SessionID).Msg("no operator address, skipping mock announcement")
		return Message{}, nil
	}
	m, err := a.Compose(d)
	if err != nil {
		return Message{}, err
	}
	raw, err := m.Bytes()
	if err != nil {
		return Message{}, relerrors.Announce("compose", fmt.Errorf("%w: %w", relerrors.ErrMailFailed, err))
	}

	fields := strings.Fields(a.cfg.Command)
	// Delivery is not an effect: a mock run still mails the operator.
	res := a.ctrl.Run(ctx, execmode.Command{Name: fields[0], Args: fields[1:], Stdin: string(raw)})
	if !res.OK {
		return Message{}, relerrors.Announce("send", fmt.Errorf("%w: %w", relerrors.ErrMailFailed, res.Err))
	}

	a.logger.Info().
		Strs("to", m.To).
		Strs("cc", m.Cc).
		Str("subject", m.Subject).
		Msg("announcement sent")
	return m, nil
}

func subject(d Data) string {
	var s string
	switch d.Kind() {
	case BranchCreated:
		s = fmt.Sprintf("Release branch %s created (%s)", d.Branch, d.Primary)
	default:
		s = fmt.Sprintf("Released %s on %s", d.Primary, d.Branch)
	}
	if d.Mock {
		s = "[MOCK] " + s
	}
	return s
}

func modeName(mock bool) string {
	if mock {
		return "mock"
	}
	return "real"
}
