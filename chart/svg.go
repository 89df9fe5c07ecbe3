package chart

import (
	"fmt"
	"io"
	"text/template"
)

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{"num": num}).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" role="img">
{{- if .Axes.X.X2}}
<line x1="{{num .Axes.X.X1}}" y1="{{num .Axes.X.Y1}}" x2="{{num .Axes.X.X2}}" y2="{{num .Axes.X.Y2}}" stroke="#94a3b8"/>
<line x1="{{num .Axes.Y.X1}}" y1="{{num .Axes.Y.Y1}}" x2="{{num .Axes.Y.X2}}" y2="{{num .Axes.Y.Y2}}" stroke="#94a3b8"/>
{{- end}}
{{- range .YTicks}}
<text x="{{num .X}}" y="{{num .Y}}" font-size="9" text-anchor="end" dx="-4">{{html .Label}}</text>
{{- end}}
{{- range .XTicks}}
<text x="{{num .X}}" y="{{num .Y}}" font-size="9" text-anchor="middle" dy="12">{{html .Label}}</text>
{{- end}}
{{- if .Path}}
<path d="{{.Area}}" fill="#34d399" fill-opacity="0.2" stroke="none"/>
<path d="{{.Path}}" fill="none" stroke="#34d399" stroke-width="2"/>
{{- end}}
</svg>
`))

// WriteSVG renders g as a standalone SVG document.
func WriteSVG(w io.Writer, g Geometry) error {
	if err := svgTemplate.Execute(w, g); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
