package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/helmcode/sitecritic/pkg/analyzer"
	"github.com/helmcode/sitecritic/pkg/config"
	"github.com/helmcode/sitecritic/pkg/formatter"
	"github.com/helmcode/sitecritic/pkg/llm"
	"github.com/helmcode/sitecritic/pkg/model"
	"github.com/helmcode/sitecritic/pkg/screenshot"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	viewportFlag   string
	outputFormat   string
	savePath       string
	llmProvider    string
	llmModel       string
	attemptTimeout time.Duration
	keepScreenshot bool
	showIssues     bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze URL",
		Short: "Capture a web page and critique its design",
		Long: `Capture a screenshot of URL with an external screenshot tool and send it to a
vision model for design critique.

Examples:
  # Critique a page at desktop size
  sitecritic analyze https://example.com

  # Review the mobile layout and get machine-readable output
  sitecritic analyze example.com -V mobile -o json

  # Use Claude and keep the screenshot for reference
  sitecritic analyze https://example.com --provider claude --keep-screenshot`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	addRunFlags(cmd)
	cmd.Flags().BoolVar(&keepScreenshot, "keep-screenshot", false, "Keep the captured screenshot and print its path")
	return cmd
}

func NewImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image PATH",
		Short: "Critique an existing screenshot",
		Long: `Send an existing screenshot (PNG, JPEG, GIF or WebP) to a vision model for
design critique.

Examples:
  sitecritic image ./homepage.png -V tablet
  sitecritic image ./checkout.png -o yaml -s review.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runImage,
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&viewportFlag, "viewport", "V", "", "Viewport: mobile, tablet, desktop or WIDTHxHEIGHT (default desktop)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format (text, json, yaml)")
	cmd.Flags().StringVarP(&savePath, "save", "s", "", "Also write the output to this file")
	cmd.Flags().StringVar(&llmProvider, "provider", "", fmt.Sprintf("LLM provider %v", llm.GetAvailableProviders()))
	cmd.Flags().StringVar(&llmModel, "model", "", "Model name (defaults to the provider's vision model)")
	cmd.Flags().DurationVar(&attemptTimeout, "timeout", 0, "Timeout per API attempt, 30s-60s (default 60s)")
	cmd.Flags().BoolVar(&showIssues, "issues", false, "List extracted issues in text output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pageURL, err := screenshot.NormalizeURL(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	vp, err := screenshot.ParseViewport(cfg.Viewport)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "sitecritic-*")
	if err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if !keepScreenshot {
		defer os.RemoveAll(dir)
	}
	shot := filepath.Join(dir, "screenshot.png")

	stderr := cmd.ErrOrStderr()
	s := newSpinner(stderr)
	s.Suffix = fmt.Sprintf(" Capturing %s at %s...", pageURL, vp)
	s.Start()

	capturer := screenshot.NewCapturer(cfg.ScreenshotCommand, cfg.CaptureTimeout)
	err = capturer.Capture(commandContext(cmd), pageURL, vp, shot)
	s.Stop()
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	printSuccess(stderr, "Screenshot captured")
	if keepScreenshot {
		printSuccess(stderr, "Screenshot saved to "+shot)
	}

	return review(cmd, cfg, model.AnalysisRequest{URL: pageURL, ImagePath: shot, Viewport: vp.Label})
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	vp, err := screenshot.ParseViewport(cfg.Viewport)
	if err != nil {
		return err
	}
	return review(cmd, cfg, model.AnalysisRequest{ImagePath: args[0], Viewport: vp.Label})
}

// loadRunConfig resolves the configuration and applies any flags the user set.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("viewport") {
		cfg.Viewport = viewportFlag
	}
	if flags.Changed("output") {
		cfg.Output = outputFormat
	}
	if flags.Changed("provider") {
		cfg.Provider = llmProvider
	}
	if flags.Changed("model") {
		cfg.Model = llmModel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = attemptTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func review(cmd *cobra.Command, cfg *config.Config, req model.AnalysisRequest) error {
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return err
	}
	req.Credential = cfg.ResolveAPIKey(provider)
	if req.Credential == "" {
		return fmt.Errorf("no API key for %s: set %s_API_KEY or %s", provider, config.EnvPrefix, provider.APIKeyEnv())
	}

	client, err := llm.New(provider, llm.Options{
		APIKey:  req.Credential,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	target := req.URL
	if target == "" {
		target = req.ImagePath
	}
	printHeader(stderr, target, req.Viewport, client.GetModel())

	a := analyzer.New(client, screenshot.FileSource{MaxWidth: cfg.MaxImageWidth}, analyzer.Policy{
		AttemptTimeout: cfg.Timeout,
	})

	s := newSpinner(stderr)
	s.Suffix = fmt.Sprintf(" Analyzing with %s...", client.GetModel())
	s.Start()

	structured := cfg.Output != "text" || showIssues
	result, err := a.Review(commandContext(cmd), req, structured)
	s.Stop()
	if err != nil {
		var aerr *analyzer.Error
		if errors.As(err, &aerr) {
			printError(stderr, aerr.Kind.Hint())
		}
		return fmt.Errorf("design analysis failed: %w", err)
	}
	printSuccess(stderr, "Analysis complete")
	log.Debug().Str("run_id", result.ID).Msg("Rendering result")

	colorize := cmd.OutOrStdout() == os.Stdout && !color.NoColor
	if err := formatter.DisplayResults(cmd.OutOrStdout(), result, cfg.Output, colorize); err != nil {
		return err
	}
	if savePath != "" {
		if err := formatter.Save(savePath, result, cfg.Output); err != nil {
			return err
		}
		printSuccess(stderr, "Output saved to "+savePath)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
