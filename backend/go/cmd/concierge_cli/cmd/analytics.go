package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"Concierge/backend/go/internal/models"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd(opts *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "analytics",
		Short: "Read conversation analytics",
	}

	var date string
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Show the counters for one day (default today, UTC)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			target := opts.url("/api/v1/analytics/daily")
			if date != "" {
				target += "?date=" + url.QueryEscape(date)
			}
			var out models.DailyAnalytics
			if err := client.GetJSON(cmd.Context(), target, &out); err != nil {
				return fmt.Errorf("fetching daily analytics: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	daily.Flags().StringVar(&date, "date", "", "day in YYYY-MM-DD")

	session := &cobra.Command{
		Use:   "session [id]",
		Short: "Show one session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			var out models.SessionRecord
			if err := client.GetJSON(cmd.Context(), opts.url("/api/v1/analytics/sessions/"+url.PathEscape(args[0])), &out); err != nil {
				return fmt.Errorf("fetching session %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	c.AddCommand(daily, session)
	return c
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
