package version

import "strings"

// Label names one flavor of release within a session.
type Label string

// Release labels. A beta within an existing series is still keyed by
// LabelBeta; its version carries the beta.N pre-release.
const (
	LabelAlpha    Label = "alpha"
	LabelBeta     Label = "beta"
	LabelOfficial Label = "official"
)

// String returns the label name.
func (l Label) String() string { return string(l) }

// IsBetaFamily reports whether l is beta or beta.N.
func (l Label) IsBetaFamily() bool {
	return l == LabelBeta || strings.HasPrefix(string(l), string(LabelBeta)+".")
}

// IsStamped reports whether preparing l rewrites the version source file.
// Alpha tags are never stamped.
func (l Label) IsStamped() bool {
	return l.IsBetaFamily() || l == LabelOfficial
}

// IsOfficial reports whether l publishes the official storage manifest.
func (l Label) IsOfficial() bool { return l == LabelOfficial }
