package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newProjectsCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List known projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.ProjectsResult](cmd, cc, protocol.TypeGetProjects, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			rows := make([][]string, 0, len(result.Projects))
			for _, p := range result.Projects {
				rows = append(rows, []string{
					p.Name,
					formatMillis(p.TotalTime),
					derefStr(p.LastActive),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Project", "Total time", "Last active"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newTagsCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List available tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := requestInto[track.TagsResult](cmd, cc, protocol.TypeGetAvailableTags, nil)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			rows := make([][]string, 0, len(result.Tags))
			for _, tag := range result.Tags {
				rows = append(rows, []string{tag.Name, strconv.Itoa(tag.UsageCount)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tag", "Uses"},
				rows,
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.AddCommand(newTagsApplyCommand(cc))
	return cmd
}

func newTagsApplyCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <session-id> <tag>...",
		Short: "Attach tags to a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.TagSessionPayload{
				SessionID: args[0],
				Tags:      args[1:],
			}
			result, err := requestInto[track.SessionActionResult](cmd, cc, protocol.TypeTagSession, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged session %s with %d tag(s)\n",
				result.Session.ID, len(args[1:]))
			return nil
		},
	}
}
