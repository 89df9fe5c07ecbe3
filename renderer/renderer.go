package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embedded embed.FS

// templates holds the *.md templates at its root.
var templates = func() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}()

// RenderResults renders the valued transaction list to a markdown string.
func RenderResults(r *Results) string {
	partials := map[string]string{
		"results_title":  "results_title.md",
		"results_rows":   "results_rows.md",
		"results_totals": "results_totals.md",
	}
	if len(r.Rows) == 0 {
		// An empty file name results in an empty template.
		partials["results_totals"] = ""
	}
	return renderTemplate("results", "results.md", partials, r)
}

// RenderTimeline renders the cumulative portfolio value to a markdown string.
func RenderTimeline(t *Timeline) string {
	partials := map[string]string{
		"timeline_title":  "timeline_title.md",
		"timeline_points": "timeline_points.md",
	}
	return renderTemplate("timeline", "timeline.md", partials, t)
}

// RenderSearch renders instrument search results to a markdown string.
func RenderSearch(s *Search) string {
	partials := map[string]string{
		"search_title": "search_title.md",
		"search_hits":  "search_hits.md",
	}
	return renderTemplate("search", "search.md", partials, s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
