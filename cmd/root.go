package cmd

import (
	"fmt"

	"github.com/helmcode/sitecritic/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecritic",
		Short: "AI-powered website design critique",
		Long: `sitecritic captures a screenshot of a web page and asks a vision-capable
language model to review its design, reporting issues by severity and area.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	// Disable automatic 'completion' command added by cobra
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.sitecritic/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewImageCmd(),
		NewConfigCmd(),
		newVersionCmd(version),
	)

	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitecritic version %s\n", version)
		},
	}
}
