package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newStatsCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tracked-time statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newStatsDailyCommand(cc))
	cmd.AddCommand(newStatsWeeklyCommand(cc))
	cmd.AddCommand(newStatsMonthlyCommand(cc))
	cmd.AddCommand(newStatsProjectCommand(cc))
	return cmd
}

func newStatsDailyCommand(cc *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show one day's statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.DailyStatsPayload{}
			if dateFlag != "" {
				payload.Date = &dateFlag
			}
			result, err := requestInto[track.DailyStatsResult](cmd, cc, protocol.TypeGetDailyStats, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printDailyStats(cmd, result.Stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to report (YYYY-MM-DD, default today)")
	return cmd
}

func newStatsWeeklyCommand(cc *commandContext) *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show the current week's statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.WeeklyStatsPayload{}
			if fromFlag != "" {
				payload.StartDate = &fromFlag
			}
			if toFlag != "" {
				payload.EndDate = &toFlag
			}
			result, err := requestInto[track.PeriodStatsResult](cmd, cc, protocol.TypeGetWeeklyStats, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printPeriodStats(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "Week start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Week end (YYYY-MM-DD)")
	return cmd
}

func newStatsMonthlyCommand(cc *commandContext) *cobra.Command {
	var yearFlag, monthFlag int

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Show one month's statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.MonthlyStatsPayload{}
			if yearFlag > 0 {
				payload.Year = &yearFlag
			}
			if monthFlag > 0 {
				payload.Month = &monthFlag
			}
			result, err := requestInto[track.PeriodStatsResult](cmd, cc, protocol.TypeGetMonthlyStats, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printPeriodStats(cmd, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&yearFlag, "year", 0, "Year (default current)")
	cmd.Flags().IntVar(&monthFlag, "month", 0, "Month 1-12 (default current)")
	return cmd
}

func newStatsProjectCommand(cc *commandContext) *cobra.Command {
	var fromFlag, toFlag string

	cmd := &cobra.Command{
		Use:   "project <name>",
		Short: "Show one project's statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.ProjectStatsPayload{Project: args[0]}
			if fromFlag != "" {
				payload.StartDate = &fromFlag
			}
			if toFlag != "" {
				payload.EndDate = &toFlag
			}
			result, err := requestInto[track.ProjectStatsResult](cmd, cc, protocol.TypeGetProjectStats, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			stats := result.Stats
			rows := [][]string{
				{"Project", result.Project},
				{"Total time", formatMillis(stats.TotalTime)},
				{"Sessions", strconv.Itoa(stats.SessionsCount)},
				{"Avg session", formatMillis(stats.AverageSessionLength)},
				{"Last active", derefStr(stats.LastActive)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			if len(stats.DailyBreakdown) > 0 {
				daily := make([][]string, 0, len(stats.DailyBreakdown))
				for _, day := range stats.DailyBreakdown {
					daily = append(daily, []string{day.Date, formatMillis(day.Time)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Date", "Time"}, daily,
					[]columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD)")
	return cmd
}

func printDailyStats(cmd *cobra.Command, stats track.DailyStats) {
	rows := [][]string{
		{"Date", stats.Date},
		{"Total time", formatMillis(stats.TotalTime)},
		{"Active time", formatMillis(stats.ActiveTime)},
		{"Deep work", fmt.Sprintf("%s (%s)", formatMillis(stats.DeepWorkTime), formatPercent(stats.DeepWorkPercentage))},
		{"Sessions", strconv.Itoa(stats.SessionsCount)},
		{"Avg session", formatMillis(stats.AverageSessionLength)},
		{"Context switches", strconv.Itoa(stats.ContextSwitches)},
		{"Goal completion", formatPercent(stats.GoalCompletion)},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))

	if len(stats.Projects) > 0 {
		projects := make([][]string, 0, len(stats.Projects))
		for _, p := range stats.Projects {
			projects = append(projects, []string{p.Name, formatMillis(p.Time)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Project", "Time"}, projects,
			[]columnAlignment{alignLeft, alignRight}))
	}
}

func printPeriodStats(cmd *cobra.Command, result *track.PeriodStatsResult) {
	rows := make([][]string, 0, len(result.Stats))
	for _, day := range result.Stats {
		rows = append(rows, []string{
			day.Date,
			formatMillis(day.TotalTime),
			formatMillis(day.DeepWorkTime),
			strconv.Itoa(day.SessionsCount),
			formatPercent(day.GoalCompletion),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Date", "Total", "Deep work", "Sessions", "Goal"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight}))

	if result.Summary != nil {
		s := result.Summary
		summary := [][]string{
			{"Total time", formatMillis(s.TotalTime)},
			{"Deep work", fmt.Sprintf("%s (%s)", formatMillis(s.DeepWorkTime), formatPercent(s.DeepWorkPercentage))},
			{"Sessions", strconv.Itoa(s.SessionsCount)},
			{"Avg session", formatMillis(s.AverageSessionLength)},
			{"Avg daily time", formatMillis(s.AverageDailyTime)},
			{"Context switches", strconv.Itoa(s.ContextSwitches)},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Summary", "Value"}, summary, nil))
	}
}
