package analysis

import (
	"fmt"

	"github.com/flosch/pongo2"
)

// DefaultTextTemplate is the pongo2 template used for plain-text reports.
const DefaultTextTemplate = `{% autoescape off %}Strategy: {{ strategy }}
Image: {{ width }}x{{ height }}
Percentage of white spots: {{ coverage_percent|floatformat:2 }}%
{% if has_mean_delta %}Average delta E: {{ mean_delta|floatformat:2 }}
{% endif %}{% if annotated_path %}Annotated image: {{ annotated_path }}
Binary image: {{ binary_path }}
{% endif %}{% endautoescape %}`

var defaultTextTemplate = pongo2.Must(pongo2.FromString(DefaultTextTemplate))

// RenderText renders report as plain text. An empty templatePath uses
// DefaultTextTemplate; otherwise the pongo2 template at templatePath is used.
//
// Templates see the flat context built by templateContext, not the Report
// struct, so they do not depend on Go field names.
func RenderText(report *Report, templatePath string) (string, error) {
	tpl := defaultTextTemplate
	if templatePath != "" {
		var err error
		tpl, err = pongo2.FromFile(templatePath)
		if err != nil {
			return "", fmt.Errorf("failed to load template: %w", err)
		}
	}

	out, err := tpl.Execute(templateContext(report))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}

func templateContext(r *Report) pongo2.Context {
	ctx := pongo2.Context{
		"strategy":         string(r.Strategy),
		"width":            r.Width,
		"height":           r.Height,
		"coverage_percent": r.CoveragePercent,
		"spot_pixels":      r.SpotPixels,
		"total_pixels":     r.TotalPixels,
		"marker_color":     r.Marker,
		"has_mean_delta":   r.MeanDelta != nil,
		"mean_delta":       0.0,
		"annotated_path":   "",
		"binary_path":      "",
	}
	if r.MeanDelta != nil {
		ctx["mean_delta"] = *r.MeanDelta
	}
	if r.Export != nil {
		ctx["annotated_path"] = r.Export.AnnotatedPath
		ctx["binary_path"] = r.Export.BinaryPath
	}
	return ctx
}
