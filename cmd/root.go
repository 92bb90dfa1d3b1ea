package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/emailnotify/internal/config"
)

// NewRootCmd builds the command tree around an already loaded configuration.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:           "emailnotify",
		Short:         "Email notification worker",
		Long:          "Consume notification requests from a Redis queue and deliver them by email through an SMTP relay.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewWorkerCmd(cfg))
	root.AddCommand(NewSendCmd(cfg))
	root.AddCommand(NewVersionCmd())
	return root
}

// Execute loads configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
