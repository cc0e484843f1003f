package resolver

import (
	"github.com/mrz1836/relcut/internal/version"
)

// versionSet applies the branch policy. parent is non-zero for a new branch.
func versionSet(branch, parent version.Branch, candidate version.BuildID, official bool) (version.Set, error) {
	base := candidate.Base()

	switch {
	case !parent.IsZero() && !branch.HasPatch():
		return version.NewSet(version.LabelBeta,
			version.Entry{
				Label:   version.LabelAlpha,
				Version: version.Series(branch.Major(), branch.Minor(), 0, version.SeriesAlpha, 0),
			},
			version.Entry{
				Label:    version.LabelBeta,
				Version:  version.Series(branch.Major(), branch.Minor(), 0, version.SeriesBeta, 0),
				Unfrozen: true,
			},
		)

	case !parent.IsZero():
		return version.NewSet(version.LabelBeta,
			version.Entry{
				Label:    version.LabelBeta,
				Version:  version.Series(branch.Major(), branch.Minor(), branch.Patch(), version.SeriesBeta, 0),
				Unfrozen: true,
			},
		)

	case branch.IsMaster():
		return version.NewSet(version.LabelAlpha,
			version.Entry{Label: version.LabelAlpha, Version: nextAlpha(base)},
		)

	case official:
		beta := nextBeta(base)
		return version.NewSet(version.LabelOfficial,
			version.Entry{Label: version.LabelBeta, Version: beta, Unfrozen: true},
			version.Entry{Label: version.LabelOfficial, Version: beta.Core()},
		)

	default:
		return version.NewSet(version.LabelBeta,
			version.Entry{Label: version.LabelBeta, Version: nextBeta(base), Unfrozen: true},
		)
	}
}

// nextAlpha bumps an alpha.N candidate, otherwise opens the next minor at alpha.0.
func nextAlpha(base version.SemVer) version.SemVer {
	if next, ok := base.NextInSeries(version.SeriesAlpha); ok {
		return next
	}
	return version.Series(base.Major(), base.Minor()+1, 0, version.SeriesAlpha, 0)
}

// nextBeta bumps a beta.N candidate. A released candidate moves to the next
// patch at beta.0; any other pre-release restarts its core at beta.0.
func nextBeta(base version.SemVer) version.SemVer {
	if next, ok := base.NextInSeries(version.SeriesBeta); ok {
		return next
	}
	if base.Prerelease() == "" {
		return version.Series(base.Major(), base.Minor(), base.Patch()+1, version.SeriesBeta, 0)
	}
	return version.Series(base.Major(), base.Minor(), base.Patch(), version.SeriesBeta, 0)
}
