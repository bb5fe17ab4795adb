package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tally/internal/project"
	"tally/internal/protocol"
	"tally/internal/track"
)

func newSessionCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage tracking sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSessionStartCommand(cc))
	cmd.AddCommand(newSessionPauseCommand(cc))
	cmd.AddCommand(newSessionResumeCommand(cc))
	cmd.AddCommand(newSessionStopCommand(cc))
	cmd.AddCommand(newSessionStatusCommand(cc))
	cmd.AddCommand(newSessionListCommand(cc))
	return cmd
}

func newSessionStartCommand(cc *commandContext) *cobra.Command {
	var projectFlag string
	var tagsFlag []string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new tracking session",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.StartSessionPayload{Tags: tagsFlag}
			if projectFlag != "" {
				payload.Project = &projectFlag
			} else if wd, err := os.Getwd(); err == nil {
				// No explicit project: attribute the session to the project
				// owning the working directory.
				if info := project.NewDetector(nil).Detect(wd); info.Name != "" {
					payload.Project = &info.Name
				}
			}
			result, err := requestInto[track.SessionResult](cmd, cc, protocol.TypeStartSession, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s started\n", result.Session.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectFlag, "project", "", "Project to attribute the session to")
	cmd.Flags().StringSliceVar(&tagsFlag, "tag", nil, "Tags to attach (repeatable)")
	return cmd
}

func newSessionPauseCommand(cc *commandContext) *cobra.Command {
	var reasonFlag string

	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := currentSession(cmd, cc)
			if err != nil {
				return err
			}
			payload := track.PauseSessionPayload{SessionID: session.ID}
			if reasonFlag != "" {
				payload.Reason = &reasonFlag
			}
			result, err := requestInto[track.SessionActionResult](cmd, cc, protocol.TypePauseSession, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s paused\n", result.Session.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reasonFlag, "reason", "", "Pause reason (manual, idle, break, meeting)")
	return cmd
}

func newSessionResumeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := currentSession(cmd, cc)
			if err != nil {
				return err
			}
			result, err := requestInto[track.SessionActionResult](cmd, cc, protocol.TypeResumeSession,
				track.ResumeSessionPayload{SessionID: session.ID})
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s resumed\n", result.Session.ID)
			return nil
		},
	}
}

func newSessionStopCommand(cc *commandContext) *cobra.Command {
	var reasonFlag string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := currentSession(cmd, cc)
			if err != nil {
				return err
			}
			payload := track.StopSessionPayload{SessionID: session.ID}
			if reasonFlag != "" {
				payload.Reason = &reasonFlag
			}
			result, err := requestInto[track.SessionActionResult](cmd, cc, protocol.TypeStopSession, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			var duration int64
			if result.Session.Duration != nil {
				duration = *result.Session.Duration
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s stopped after %s\n",
				result.Session.ID, formatMillis(duration))
			return nil
		},
	}
	cmd.Flags().StringVar(&reasonFlag, "reason", "", "Stop reason (completed, abandoned)")
	return cmd
}

func newSessionStatusCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.SessionResult](cmd, cc, protocol.TypeGetSessionStatus, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			session := result.Session
			rows := [][]string{
				{"ID", session.ID},
				{"Status", string(session.Status)},
				{"Started", session.StartTime},
				{"Interruptions", strconv.Itoa(session.Interruptions)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func newSessionListCommand(cc *commandContext) *cobra.Command {
	var (
		fromFlag    string
		toFlag      string
		projectFlag string
		statusFlag  string
		limitFlag   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.SessionsQueryPayload{}
			if fromFlag != "" {
				payload.StartDate = &fromFlag
			}
			if toFlag != "" {
				payload.EndDate = &toFlag
			}
			if projectFlag != "" {
				payload.Project = &projectFlag
			}
			if statusFlag != "" {
				status := track.SessionStatus(statusFlag)
				payload.Status = &status
			}
			if limitFlag > 0 {
				payload.Limit = &limitFlag
			}

			result, err := requestInto[track.SessionsResult](cmd, cc, protocol.TypeGetSessions, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}

			rows := make([][]string, 0, len(result.Sessions))
			for _, session := range result.Sessions {
				var duration int64
				if session.Duration != nil {
					duration = *session.Duration
				}
				rows = append(rows, []string{
					session.ID,
					session.StartTime,
					formatMillis(duration),
					string(session.Status),
					strconv.Itoa(session.Interruptions),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Started", "Duration", "Status", "Interruptions"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight}))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d sessions\n", len(result.Sessions), result.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&projectFlag, "project", "", "Filter by project name")
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum sessions to return")
	return cmd
}

// currentSession fetches the active or paused session for commands that
// target "the" session without an explicit id.
func currentSession(cmd *cobra.Command, cc *commandContext) (*track.Session, error) {
	result, err := requestInto[track.SessionResult](cmd, cc, protocol.TypeGetSessionStatus, nil)
	if err != nil {
		return nil, err
	}
	return &result.Session, nil
}
