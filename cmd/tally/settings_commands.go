package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newSettingsCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change tracker settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSettingsShowCommand(cc))
	cmd.AddCommand(newSettingsSetCommand(cc))
	cmd.AddCommand(newSettingsResetCommand(cc))
	return cmd
}

func newSettingsShowCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.SettingsActionResult](cmd, cc, protocol.TypeGetSettings, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result.Settings)
			}
			printSettings(cmd, result.Settings)
			return nil
		},
	}
}

func newSettingsSetCommand(cc *commandContext) *cobra.Command {
	var (
		idleTimeout     int
		dailyGoal       int
		pomodoroLength  int
		breakLength     int
		longBreakLength int
		untilLongBreak  int
		theme           string
		dataRetention   int
		autoBreaks      bool
		autoPomodoros   bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := track.SettingsPatch{}
			flags := cmd.Flags()
			if flags.Changed("idle-timeout") {
				patch.IdleTimeout = &idleTimeout
			}
			if flags.Changed("daily-goal") {
				patch.DailyGoal = &dailyGoal
			}
			if flags.Changed("pomodoro-length") {
				patch.PomodoroLength = &pomodoroLength
			}
			if flags.Changed("break-length") {
				patch.BreakLength = &breakLength
			}
			if flags.Changed("long-break-length") {
				patch.LongBreakLength = &longBreakLength
			}
			if flags.Changed("pomodoros-until-long-break") {
				patch.PomodorosUntilLongBreak = &untilLongBreak
			}
			if flags.Changed("theme") {
				patch.Theme = &theme
			}
			if flags.Changed("data-retention") {
				patch.DataRetention = &dataRetention
			}
			if flags.Changed("auto-start-breaks") {
				patch.AutoStartBreaks = &autoBreaks
			}
			if flags.Changed("auto-start-pomodoros") {
				patch.AutoStartPomodoros = &autoPomodoros
			}

			result, err := requestInto[track.SettingsActionResult](cmd, cc, protocol.TypeUpdateSettings, patch)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result.Settings)
			}
			printSettings(cmd, result.Settings)
			return nil
		},
	}
	cmd.Flags().IntVar(&idleTimeout, "idle-timeout", 0, "Idle timeout in seconds")
	cmd.Flags().IntVar(&dailyGoal, "daily-goal", 0, "Daily goal in minutes")
	cmd.Flags().IntVar(&pomodoroLength, "pomodoro-length", 0, "Pomodoro length in minutes")
	cmd.Flags().IntVar(&breakLength, "break-length", 0, "Break length in minutes")
	cmd.Flags().IntVar(&longBreakLength, "long-break-length", 0, "Long break length in minutes")
	cmd.Flags().IntVar(&untilLongBreak, "pomodoros-until-long-break", 0, "Pomodoros before a long break")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme (light, dark, system)")
	cmd.Flags().IntVar(&dataRetention, "data-retention", 0, "Data retention in days")
	cmd.Flags().BoolVar(&autoBreaks, "auto-start-breaks", false, "Start breaks automatically")
	cmd.Flags().BoolVar(&autoPomodoros, "auto-start-pomodoros", false, "Start pomodoros automatically")
	return cmd
}

func newSettingsResetCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset every setting to its default",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.SettingsActionResult](cmd, cc, protocol.TypeResetSettings, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result.Settings)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
			printSettings(cmd, result.Settings)
			return nil
		},
	}
}

func printSettings(cmd *cobra.Command, s track.AppSettings) {
	rows := [][]string{
		{"Idle timeout", fmt.Sprintf("%ds", s.IdleTimeout)},
		{"Daily goal", fmt.Sprintf("%dm", s.DailyGoal)},
		{"Pomodoro length", fmt.Sprintf("%dm", s.PomodoroLength)},
		{"Break length", fmt.Sprintf("%dm", s.BreakLength)},
		{"Long break length", fmt.Sprintf("%dm", s.LongBreakLength)},
		{"Pomodoros until long break", strconv.Itoa(s.PomodorosUntilLongBreak)},
		{"Auto-start breaks", strconv.FormatBool(s.AutoStartBreaks)},
		{"Auto-start pomodoros", strconv.FormatBool(s.AutoStartPomodoros)},
		{"Theme", s.Theme},
		{"Data retention", fmt.Sprintf("%dd", s.DataRetention)},
		{"Pomodoro feature", strconv.FormatBool(s.Features.Pomodoro)},
		{"AI analytics", strconv.FormatBool(s.Features.AIAnalytics)},
		{"Health monitoring", strconv.FormatBool(s.Features.HealthMonitoring)},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
}
