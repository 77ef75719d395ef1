package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/helmcode/sitecritic/pkg/config"
	"github.com/helmcode/sitecritic/pkg/llm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration sitecritic would use, after merging the config file,
.env and SITECRITIC_* environment variables. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	fmt.Fprintf(out, "# %s\n", path)

	data, err := yaml.Marshal(cfg.Masked(provider))
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))

	if cfg.ResolveAPIKey(provider) == "" {
		printError(cmd.ErrOrStderr(), fmt.Sprintf("No API key found (set %s_API_KEY or %s)", config.EnvPrefix, provider.APIKeyEnv()))
	}
	if err := cfg.Validate(); err != nil {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "⚠️  %v\n", err)
	}
	return nil
}
