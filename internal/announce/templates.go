package announce

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Kind selects the announcement body.
type Kind string

const (
	// BranchCreated announces a new release branch.
	BranchCreated Kind = "branch_created"
	// ReleasePublished announces releases on an existing branch.
	ReleasePublished Kind = "release_published"
)

// bodies holds the parsed plain text and HTML template for one kind.
type bodies struct {
	text *template.Template
	html *htmltemplate.Template
}

//nolint:gochecknoglobals // parsed once from the embedded templates
var registry = mustLoad(BranchCreated, ReleasePublished)

func mustLoad(kinds ...Kind) map[Kind]bodies {
	out := make(map[Kind]bodies, len(kinds))
	for _, k := range kinds {
		text, err := template.ParseFS(templateFS, "templates/"+string(k)+".txt.tmpl", "templates/common.txt.tmpl")
		if err != nil {
			// Templates are embedded; a parse failure is a build defect.
			panic(fmt.Sprintf("parse %s text template: %v", k, err))
		}
		html, err := htmltemplate.ParseFS(templateFS, "templates/"+string(k)+".html.tmpl", "templates/common.html.tmpl")
		if err != nil {
			panic(fmt.Sprintf("parse %s html template: %v", k, err))
		}
		out[k] = bodies{text: text, html: html}
	}
	return out
}

// render executes both bodies for kind.
func render(kind Kind, data Data) (string, string, error) {
	b, ok := registry[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown announcement %q", errTemplate, kind)
	}

	var text, html bytes.Buffer
	if err := b.text.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("%w: %s text: %w", errTemplate, kind, err)
	}
	if err := b.html.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("%w: %s html: %w", errTemplate, kind, err)
	}
	return text.String(), html.String(), nil
}
