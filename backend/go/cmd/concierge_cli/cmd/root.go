package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"Concierge/backend/go/internal/config"
	chathttp "Concierge/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

type options struct {
	server  string
	timeout time.Duration
}

func (o *options) url(path string) string {
	return strings.TrimRight(o.server, "/") + path
}

func (o *options) client() (*chathttp.Client, error) {
	return chathttp.NewClient(config.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          "10s",
	}, o.timeout)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "concierge-cli",
		Short:         "A CLI client for the concierge chat service",
		Long:          `A command-line interface for chatting with the assistant, reading analytics and seeding the knowledge base.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the chat service")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout")

	root.AddCommand(newChatCmd(opts), newAnalyticsCmd(opts), newSeedCmd(opts))
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
