package cmd

import (
	"fmt"
	"strings"

	"Concierge/backend/go/internal/assistant/api"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	var session string
	c := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			req := api.ChatRequest{Message: strings.Join(args, " "), SessionID: session}
			var resp api.ChatResponse
			if err := client.PostJSON(cmd.Context(), opts.url("/api/v1/chat"), req, &resp); err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
			if session == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nSession: %s (pass --session %s to continue)\n", resp.SessionID, resp.SessionID)
			}
			return nil
		},
	}
	c.Flags().StringVar(&session, "session", "", "session id to continue a conversation")
	return c
}
