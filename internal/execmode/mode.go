// Package execmode is the single boundary through which relcut touches the
// outside world. A Controller carries the session's execution Mode; every
// command and every SDK call that has an externally visible effect goes
// through it, so call sites never branch on mock versus real.
package execmode

// Mode selects between a dry run and a real release.
type Mode int

const (
	// Mock performs every local step but turns external effects into dry runs or no-ops.
	Mock Mode = iota
	// Real performs every step.
	Real
)

// FromNoMock maps the --nomock flag to a Mode.
func FromNoMock(nomock bool) Mode {
	if nomock {
		return Real
	}
	return Mock
}

// String returns "mock" or "real".
func (m Mode) String() string {
	if m == Real {
		return "real"
	}
	return "mock"
}

// IsMock reports whether m is Mock.
func (m Mode) IsMock() bool { return m != Real }
