package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/helmcode/sitecritic/pkg/model"
	"gopkg.in/yaml.v3"
)

const lineWidth = 80

// Formats lists the accepted --output values.
var Formats = []string{"text", "json", "yaml"}

// DisplayResults writes the rendered result to w. Colour is only used for
// text output and only when colorize is set.
func DisplayResults(w io.Writer, result *model.Result, format string, colorize bool) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "text", "":
		displayText(w, result, colorize)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Save renders result without colour and writes it to path.
func Save(path string, result *model.Result, format string) error {
	var buf bytes.Buffer
	if err := DisplayResults(&buf, result, format, false); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save output: %w", err)
	}
	return nil
}

func displayJSON(w io.Writer, result *model.Result) error {
	output, err := json.MarshalIndent(model.NewReport(result), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, result *model.Result) error {
	output, err := yaml.Marshal(model.NewReport(result))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayText(w io.Writer, result *model.Result, colorize bool) {
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	cyan := paint(color.FgCyan, color.Bold)
	white := paint(color.FgWhite, color.Bold)
	yellow := paint(color.FgYellow, color.Bold)
	grey := paint(color.FgHiBlack)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "🎨 DESIGN CRITIQUE")
	if result.URL != "" {
		fmt.Fprintf(w, "   URL:      %s\n", result.URL)
	}
	fmt.Fprintf(w, "   Viewport: %s\n", result.Viewport)
	fmt.Fprintf(w, "   Model:    %s\n\n", result.Raw.Model)

	if c := result.Critique; c != nil {
		white.Fprintln(w, "📄 PAGE:")
		fmt.Fprintln(w, wrapText(c.PageDescription, lineWidth, "   "))
		fmt.Fprintln(w)

		if len(c.Issues) > 0 {
			yellow.Fprintf(w, "⚠️  ISSUES FOUND (%d):\n", len(c.Issues))
			for i, issue := range c.Issues {
				sev := paint(severityAttrs(issue.Severity)...)
				fmt.Fprintf(w, "   %d. %s %s [%s]\n", i+1, severityIcon(issue.Severity), sev.Sprint(strings.ToUpper(string(issue.Severity))), issue.Category)
				fmt.Fprintln(w, wrapText(issue.Description, lineWidth, "      "))
			}
			fmt.Fprintln(w)
		}

		white.Fprintln(w, "📊 SUMMARY:")
		fmt.Fprintln(w, wrapText(c.Summary, lineWidth, "   "))
		fmt.Fprintln(w)
	}

	white.Fprintln(w, "📝 ANALYSIS:")
	fmt.Fprintln(w, wrapText(result.Raw.Text, lineWidth, "   "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintf(w, "💡 %s\n", grey.Sprint("Run with -o json or -o yaml for machine-readable output"))
}

func severityAttrs(severity model.Severity) []color.Attribute {
	switch severity {
	case model.SeverityCritical:
		return []color.Attribute{color.FgRed, color.Bold}
	case model.SeverityMajor:
		return []color.Attribute{color.FgYellow}
	case model.SeverityMinor:
		return []color.Attribute{color.FgGreen}
	default:
		return []color.Attribute{color.FgWhite}
	}
}

func severityIcon(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityMajor:
		return "🟡"
	case model.SeverityMinor:
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width && currentLine != indent {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
