package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCommand drives shot-scraper; any tool taking the same placeholders works.
const DefaultCommand = "shot-scraper {url} -o {output} --width {width} --height {height}"

const defaultCaptureTimeout = 60 * time.Second

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// Capturer takes screenshots by running an external program.
type Capturer struct {
	command string
	timeout time.Duration
	runner  Runner
}

func NewCapturer(command string, timeout time.Duration) *Capturer {
	return NewCapturerWithRunner(command, timeout, execRunner{})
}

func NewCapturerWithRunner(command string, timeout time.Duration, runner Runner) *Capturer {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	return &Capturer{command: command, timeout: timeout, runner: runner}
}

// NormalizeURL adds https:// when no scheme is given and rejects anything
// that is not an http(s) URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q (use http or https)", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return u.String(), nil
}

// Capture writes a screenshot of pageURL to output.
func (c *Capturer) Capture(ctx context.Context, pageURL string, vp Viewport, output string) error {
	args, err := c.buildArgs(pageURL, vp, output)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Debug().Str("command", args[0]).Strs("args", args[1:]).Msg("Capturing screenshot")
	start := time.Now()
	out, err := c.runner.Run(ctx, args[0], args[1:]...)
	if err != nil {
		var execErr *exec.Error
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("screenshot command timed out after %s", c.timeout)
		case errors.As(err, &execErr):
			return fmt.Errorf("screenshot tool %q not available: %w", args[0], err)
		default:
			return fmt.Errorf("screenshot command failed: %w: %s", err, strings.TrimSpace(out))
		}
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("screenshot command produced no image at %s", output)
	}
	log.Debug().Str("path", output).Int64("bytes", info.Size()).Dur("duration", time.Since(start)).Msg("Screenshot captured")
	return nil
}

// buildArgs splits the template on whitespace and substitutes placeholders
// per argument. No shell is involved.
func (c *Capturer) buildArgs(pageURL string, vp Viewport, output string) ([]string, error) {
	if !strings.Contains(c.command, "{url}") || !strings.Contains(c.command, "{output}") {
		return nil, fmt.Errorf("screenshot command must contain {url} and {output}: %q", c.command)
	}

	replacer := strings.NewReplacer(
		"{url}", pageURL,
		"{output}", output,
		"{width}", strconv.Itoa(vp.Width),
		"{height}", strconv.Itoa(vp.Height),
		"{viewport}", vp.Label,
	)
	fields := strings.Fields(c.command)
	args := make([]string, len(fields))
	for i, f := range fields {
		args[i] = replacer.Replace(f)
	}
	return args, nil
}
