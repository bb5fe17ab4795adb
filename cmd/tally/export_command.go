package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
	"tally/internal/track"
)

func newExportCommand(cc *commandContext) *cobra.Command {
	var (
		formatFlag   string
		fromFlag     string
		toFlag       string
		tagsFlag     bool
		noProjects   bool
		encryptFlag  bool
		passwordFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked data to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := track.ExportDataPayload{}
			if formatFlag != "" {
				payload.Format = &formatFlag
			}
			if fromFlag != "" {
				payload.StartDate = &fromFlag
			}
			if toFlag != "" {
				payload.EndDate = &toFlag
			}
			if tagsFlag {
				payload.IncludeTags = &tagsFlag
			}
			if noProjects {
				include := false
				payload.IncludeProjects = &include
			}
			if encryptFlag {
				payload.Encrypted = &encryptFlag
			}
			if passwordFlag != "" {
				payload.Password = &passwordFlag
			}

			result, err := requestInto[track.ExportResult](cmd, cc, protocol.TypeExportData, payload)
			if err != nil {
				return err
			}
			if cc.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s data to %s", result.Format, result.FilePath)
			if result.Encrypted {
				fmt.Fprint(cmd.OutOrStdout(), " (encrypted)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&formatFlag, "format", "json", "Export format (json, csv)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&tagsFlag, "include-tags", false, "Include the tag catalog")
	cmd.Flags().BoolVar(&noProjects, "no-projects", false, "Leave projects out of the export")
	cmd.Flags().BoolVar(&encryptFlag, "encrypt", false, "Encrypt the exported file")
	cmd.Flags().StringVar(&passwordFlag, "password", "", "Encryption password")
	return cmd
}
