package main

import (
	"fmt"
	"os"

	"github.com/nao1215/esgscan/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for esgscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "esgscan",
		Short: "Discover ESG report PDFs on corporate websites",
		Long: `esgscan finds the sustainability pages of a company, harvests links that
look like ESG, sustainability or annual report PDFs, and keeps the ones that
mention the requested years.

Pages are rendered in headless Chrome by default.
Use --no-browser to fetch plain HTML instead.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
