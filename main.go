package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/helmcode/sitecritic/cmd"
	"github.com/helmcode/sitecritic/pkg/analyzer"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	rootCmd := cmd.NewRootCmd(version)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var aerr *analyzer.Error
		if errors.As(err, &aerr) {
			os.Exit(aerr.Kind.ExitCode())
		}
		os.Exit(1)
	}
}
