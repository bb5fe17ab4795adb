package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newPomodoroCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pomodoro",
		Short: "Control the pomodoro timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPomodoroStartCommand(cc))
	cmd.AddCommand(newPomodoroStopCommand(cc))
	return cmd
}

func newPomodoroStartCommand(cc *commandContext) *cobra.Command {
	var durationFlag int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a pomodoro",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.StartPomodoroPayload{}
			if durationFlag > 0 {
				payload.Duration = &durationFlag
			}
			result, err := requestInto[track.PomodoroStartResult](cmd, cc, protocol.TypeStartPomodoro, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pomodoro %s started for %dm, ends %s\n",
				result.PomodoroID, result.Duration, result.EndTime)
			return nil
		},
	}
	cmd.Flags().IntVar(&durationFlag, "duration", 0, "Length in minutes (default from settings)")
	return cmd
}

func newPomodoroStopCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running pomodoro",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.StopResult](cmd, cc, protocol.TypeStopPomodoro, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pomodoro stopped")
			return nil
		},
	}
}

func newBreakCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break",
		Short: "Control break timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newBreakStartCommand(cc))
	cmd.AddCommand(newBreakStopCommand(cc))
	return cmd
}

func newBreakStartCommand(cc *commandContext) *cobra.Command {
	var durationFlag int
	var longFlag bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a break",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.StartBreakPayload{}
			if durationFlag > 0 {
				payload.Duration = &durationFlag
			}
			if cmd.Flags().Changed("long") {
				payload.IsLongBreak = &longFlag
			}
			result, err := requestInto[track.BreakStartResult](cmd, cc, protocol.TypeStartBreak, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			kind := "break"
			if result.IsLongBreak {
				kind = "long break"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s %s for %dm, ends %s\n",
				kind, result.BreakID, result.Duration, result.EndTime)
			return nil
		},
	}
	cmd.Flags().IntVar(&durationFlag, "duration", 0, "Length in minutes (default from settings)")
	cmd.Flags().BoolVar(&longFlag, "long", false, "Take a long break")
	return cmd
}

func newBreakStopCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running break",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.StopResult](cmd, cc, protocol.TypeStopBreak, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Break stopped")
			return nil
		},
	}
}
