package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fruitexport/portal/internal/chart"
	"github.com/fruitexport/portal/internal/chart/svg"
)

func chartCmd() *cobra.Command {
	var (
		seriesPath string
		asSVG      bool
		width      int
		height     int
	)
	cmd := &cobra.Command{
		Use:   "chart <revenue|orders|products>",
		Short: "Build a chart configuration from a series file",
		Long: `Reads a series as {"labels": [...], "data": [...]} from --series
(or stdin when omitted or "-") and prints the chart configuration JSON,
or the SVG fallback with --svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := chart.ParseKind(args[0])
			if err != nil {
				return err
			}
			series, err := readSeries(cmd.InOrStdin(), seriesPath)
			if err != nil {
				return err
			}
			cfg, err := chart.Build(kind, series)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asSVG {
				rendered, err := svg.Render(cfg, width, height)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(rendered))
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
	cmd.Flags().StringVar(&seriesPath, "series", "", "Path to the series JSON file")
	cmd.Flags().BoolVar(&asSVG, "svg", false, "Render the SVG fallback instead of JSON")
	cmd.Flags().IntVar(&width, "width", 0, "SVG width")
	cmd.Flags().IntVar(&height, "height", 0, "SVG height")
	return cmd
}

func readSeries(stdin io.Reader, path string) (chart.Series, error) {
	src := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return chart.Series{}, fmt.Errorf("chart: open series: %w", err)
		}
		defer f.Close()
		src = f
	}
	var series chart.Series
	if err := json.NewDecoder(src).Decode(&series); err != nil {
		return chart.Series{}, fmt.Errorf("chart: decode series: %w", err)
	}
	if len(series.Labels) != len(series.Data) {
		return chart.Series{}, fmt.Errorf("chart: %d labels for %d values", len(series.Labels), len(series.Data))
	}
	return series, nil
}
