package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newHealthCommand(cc *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show wellbeing metrics for the past week",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.HealthMetricsPayload{}
			if dateFlag != "" {
				payload.Date = &dateFlag
			}
			result, err := requestInto[track.HealthResult](cmd, cc, protocol.TypeGetHealthMetrics, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			m := result.Metrics
			rows := [][]string{
				{"Stress level", formatPercent(m.StressLevel)},
				{"Burnout risk", formatPercent(m.BurnoutRisk)},
				{"Focus score", formatPercent(m.FocusScore)},
				{"Break compliance", formatPercent(m.BreakCompliance)},
				{"Work-life balance", formatPercent(m.WorkLifeBalance)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignRight}))

			for _, rec := range m.Recommendations {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", rec.Priority, rec.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "Window end date (YYYY-MM-DD, default today)")
	return cmd
}
