package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Progress output goes to stderr so stdout carries only the report.

func newSpinner(w io.Writer) *spinner.Spinner {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	return spinner.New(spinner.CharSets[11], 100*time.Millisecond, opt)
}

func printHeader(w io.Writer, target, viewport, model string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 Website Design Critic")
	fmt.Fprintf(w, "🌐 Target: %s\n", target)
	fmt.Fprintf(w, "📐 Viewport: %s\n", viewport)
	fmt.Fprintf(w, "🤖 Model: %s\n", model)
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}
