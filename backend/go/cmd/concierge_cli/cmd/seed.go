package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"Concierge/backend/go/internal/assistant/api"
	"Concierge/backend/go/internal/knowledge/extractor"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *options) *cobra.Command {
	var source string
	c := &cobra.Command{
		Use:   "seed [file-path]",
		Short: "Extract text from a local file and add it to the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			text, err := extractor.Extract(data, extractor.TypeByName(path))
			if err != nil {
				return fmt.Errorf("extracting %s: %w", path, err)
			}
			if source == "" {
				source = filepath.Base(path)
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			var resp api.SeedResponse
			if err := client.PostJSON(cmd.Context(), opts.url("/api/v1/knowledge/seed"), api.SeedRequest{Source: source, Text: text}, &resp); err != nil {
				return fmt.Errorf("seeding %s: %w", source, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d chunks from %s\n", resp.Chunks, source)
			return nil
		},
	}
	c.Flags().StringVar(&source, "source", "", "source label stored with each chunk (default: file name)")
	return c
}
