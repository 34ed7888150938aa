package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ironsheep/white-spot-mcp/internal/analysis"
	"github.com/ironsheep/white-spot-mcp/internal/imaging"
	"github.com/ironsheep/white-spot-mcp/internal/spots"
	"github.com/spf13/cobra"
)

type detectFlags struct {
	region        []int
	quadrant      string
	lightnessMin  float64
	aTolerance    float64
	bTolerance    float64
	reference     []float64
	maxDistance   float64
	metric        string
	export        bool
	annotatedName string
	binaryName    string
	format        string
	template      string
}

func newDetectCmd(a *app) *cobra.Command {
	var f detectFlags

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect white spots in one image and print the report",
		Example: `  spots detect photo.jpg
  spots detect --strategy delta --max-distance 20 photo.jpg
  spots detect --export --output-dir out/ --format text photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(f.format) {
			case "json", "text":
			default:
				return fmt.Errorf("unknown format: %q (want json or text)", f.format)
			}
			req, err := f.request(cmd, args[0])
			if err != nil {
				return err
			}
			report, err := analysis.New(nil, a.cfg.Defaults).Run(req)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, f.format, f.template)
		},
	}

	flags := cmd.Flags()
	flags.IntSliceVar(&f.region, "region", nil, "analyse only x1,y1,x2,y2 (x2, y2 exclusive)")
	flags.StringVar(&f.quadrant, "quadrant", "", "analyse only a named part: "+strings.Join(imaging.Quadrants, ", "))
	flags.Float64Var(&f.lightnessMin, "lightness-min", 0, "box: minimum L")
	flags.Float64Var(&f.aTolerance, "a-tolerance", 0, "box: maximum |a|")
	flags.Float64Var(&f.bTolerance, "b-tolerance", 0, "box: maximum |b|")
	flags.Float64SliceVar(&f.reference, "reference", nil, "delta: reference color as L,a,b")
	flags.Float64Var(&f.maxDistance, "max-distance", 0, "delta: match distances strictly below this")
	flags.StringVar(&f.metric, "metric", "", "delta: euclidean or ciede2000")
	flags.BoolVar(&f.export, "export", false, "write the annotated and binary PNG files")
	flags.StringVar(&f.annotatedName, "annotated-name", "", "file name of the annotated image")
	flags.StringVar(&f.binaryName, "binary-name", "", "file name of the binary mask")
	flags.StringVar(&f.format, "format", "json", "output format (json or text)")
	flags.StringVar(&f.template, "template", "", "pongo2 template for --format text")

	return cmd
}

// request builds an analysis request from the flags the user actually set, so
// unset flags fall through to the configured defaults.
func (f *detectFlags) request(cmd *cobra.Command, path string) (*analysis.Request, error) {
	changed := cmd.Flags().Changed
	req := &analysis.Request{
		Path:          path,
		Quadrant:      f.quadrant,
		Metric:        f.metric,
		Export:        f.export,
		AnnotatedName: f.annotatedName,
		BinaryName:    f.binaryName,
	}
	if changed("region") {
		if len(f.region) != 4 {
			return nil, fmt.Errorf("--region wants 4 values (x1,y1,x2,y2), got %d", len(f.region))
		}
		req.Region = &imaging.Region{X1: f.region[0], Y1: f.region[1], X2: f.region[2], Y2: f.region[3]}
	}
	if changed("lightness-min") {
		req.LightnessMin = &f.lightnessMin
	}
	if changed("a-tolerance") {
		req.ATolerance = &f.aTolerance
	}
	if changed("b-tolerance") {
		req.BTolerance = &f.bTolerance
	}
	if changed("max-distance") {
		req.MaxDistance = &f.maxDistance
	}
	if changed("reference") {
		if len(f.reference) != 3 {
			return nil, fmt.Errorf("--reference wants 3 values (L,a,b), got %d", len(f.reference))
		}
		req.Reference = &spots.Lab{L: f.reference[0], A: f.reference[1], B: f.reference[2]}
	}
	return req, nil
}

func writeReport(w io.Writer, report *analysis.Report, format, templatePath string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
		out, err := analysis.RenderText(report, templatePath)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format: %q (want json or text)", format)
	}
}
