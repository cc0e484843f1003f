package prepare

import (
	"fmt"
	"os"
	"regexp"

	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/version"
)

// stampIdentifiers are the variables rewritten in the version source file.
//
//nolint:gochecknoglobals // fixed identifier set
var stampIdentifiers = []string{"gitMajor", "gitMinor", "gitVersion"}

// Values returns the stamped identifier values for entry. Unfrozen entries
// carry a trailing "+" on gitMinor and gitVersion.
func Values(e version.Entry) map[string]string {
	minor := e.Version.GitMinor()
	if e.Unfrozen {
		minor += "+"
	}
	return map[string]string{
		"gitMajor":   e.Version.GitMajor(),
		"gitMinor":   minor,
		"gitVersion": e.Stamp(),
	}
}

// Stamp rewrites the identifiers in path and reports whether the file changed.
// Every identifier must be present.
func Stamp(path string, e version.Entry) (bool, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from configuration
	if err != nil {
		return false, fmt.Errorf("failed to read version file: %w", err)
	}

	out, err := rewrite(data, Values(e))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if string(out) == string(data) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat version file: %w", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write version file: %w", err)
	}
	return true, nil
}

func rewrite(data []byte, values map[string]string) ([]byte, error) {
	out := data
	for _, id := range stampIdentifiers {
		re := regexp.MustCompile(`(?m)^(\s*` + id + `\s+(?:string\s*)?=\s*)"[^"]*"`)
		if !re.Match(out) {
			return nil, fmt.Errorf("identifier %s not found: %w", id, relerrors.ErrInvalidVersion)
		}
		out = re.ReplaceAll(out, []byte(`${1}"`+values[id]+`"`))
	}
	return out, nil
}
