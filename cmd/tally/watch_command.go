package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/protocol"
)

func newWatchCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream daemon notifications until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, done, err := cc.connect()
			if err != nil {
				return err
			}
			defer done()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			for _, notificationType := range protocol.NotificationTypes {
				defer mgr.SubscribeToNotification(notificationType, func(msg *protocol.Message) {
					stamp := time.UnixMilli(msg.Timestamp).Format("15:04:05")
					if cc.jsonOutput() {
						fmt.Fprintf(out, `{"time":%q,"type":%q,"payload":%s}`+"\n",
							stamp, msg.Type, payloadOrNull(msg))
						return
					}
					fmt.Fprintf(out, "%s  %-16s %s\n", stamp, msg.Type, payloadOrNull(msg))
				})()
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Watching for notifications, press Ctrl-C to stop")
			<-ctx.Done()
			return nil
		},
	}
}

func payloadOrNull(msg *protocol.Message) string {
	if len(msg.Payload) == 0 {
		return "null"
	}
	return string(msg.Payload)
}
