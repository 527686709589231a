package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rcliao/studylog/internal/model"
	"github.com/rcliao/studylog/internal/store"
	"github.com/spf13/cobra"
)

const chartWidth = 40

func init() {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show entries added per day",
		Long:  "Draw a bar chart of entries added per calendar day over the last --days days, oldest first.",
		Run:   runChart,
	}

	cmd.Flags().Int("days", 0, "Window size in days (default: chart.window_days, 14)")

	RootCmd.AddCommand(cmd)
}

func runChart(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	days, err = chartDays(days, s.cfg.Chart.WindowDays)
	if err != nil {
		exitErr("chart", err)
	}
	points := s.Activity(days, time.Now())

	if formatFlag == "json" && cmd.Flags().Changed("format") {
		b, _ := json.MarshalIndent(points, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	renderChart(cmd.OutOrStdout(), points, chartWidth)
}

// chartDays resolves the --days flag: 0 means the configured window.
func chartDays(flag, configured int) (int, error) {
	switch {
	case flag == 0:
		return configured, nil
	case flag < 0 || flag > store.MaxWindowDays:
		return 0, fmt.Errorf("--days must be between 1 and %d", store.MaxWindowDays)
	}
	return flag, nil
}

// renderChart draws one horizontal bar per day, scaled so the busiest day
// spans width cells.
func renderChart(w io.Writer, points []model.ChartDataPoint, width int) {
	maxCount := 0
	for _, p := range points {
		maxCount = max(maxCount, p.Count)
	}

	bar := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, p := range points {
		n := 0
		if maxCount > 0 {
			n = p.Count * width / maxCount
		}
		if p.Count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(w, "%s ", dim.Sprint(p.Date))
		bar.Fprint(w, strings.Repeat("█", n))
		fmt.Fprintf(w, " %d\n", p.Count)
	}
}
