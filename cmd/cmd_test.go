package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helmcode/sitecritic/pkg/analyzer"
	"github.com/helmcode/sitecritic/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const critique = `Page description: A product landing page with a hero banner.
Critical Issues - Navigation:
- The menu collapses behind the logo
Minor Issues - Visual:
- Footer links have low contrast
Overall assessment: Solid base, navigation needs attention.`

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{"SITECRITIC_API_KEY", "SITECRITIC_BASE_URL", "SITECRITIC_PROVIDER", "SITECRITIC_OUTPUT", "OPENAI_API_KEY"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeScreenshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 64))))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func openAIServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-1234567890", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestImageCommandJSON(t *testing.T) {
	setupEnv(t)
	reply, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"content": critique}}},
	})
	require.NoError(t, err)
	server := openAIServer(t, http.StatusOK, string(reply))
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")
	t.Setenv("SITECRITIC_BASE_URL", server.URL)

	stdout, _, err := execute(t, "image", writeScreenshot(t), "-V", "mobile", "-o", "json", "--model", "gpt-test")
	require.NoError(t, err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "mobile", report.Viewport)
	assert.Equal(t, "gpt-test", report.Model)
	assert.Equal(t, "A product landing page with a hero banner.", report.PageDescription)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, model.Issue{Severity: model.SeverityCritical, Category: "Navigation", Description: "The menu collapses behind the logo"}, report.Issues[0])
	assert.Equal(t, model.SeverityMinor, report.Issues[1].Severity)
}

func TestImageCommandSavesText(t *testing.T) {
	setupEnv(t)
	reply := `{"choices":[{"message":{"content":"No issues found. The page is clean."}}]}`
	server := openAIServer(t, http.StatusOK, reply)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")
	t.Setenv("SITECRITIC_BASE_URL", server.URL)
	out := filepath.Join(t.TempDir(), "review.txt")

	stdout, _, err := execute(t, "image", writeScreenshot(t), "-s", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No issues found.")

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "No issues found.")
	assert.False(t, strings.Contains(string(saved), "\x1b["))
}

func TestImageCommandInvalidCredential(t *testing.T) {
	setupEnv(t)
	server := openAIServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key sk-test-1234567890"}}`)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")
	t.Setenv("SITECRITIC_BASE_URL", server.URL)

	_, stderr, err := execute(t, "image", writeScreenshot(t))
	require.Error(t, err)

	var aerr *analyzer.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, analyzer.KindInvalidCredential, aerr.Kind)
	assert.Equal(t, analyzer.KindInvalidCredential.ExitCode(), aerr.Kind.ExitCode())
	assert.NotContains(t, err.Error(), "sk-test-1234567890")
	assert.Contains(t, stderr, analyzer.KindInvalidCredential.Hint())
}

func TestImageCommandMissingFile(t *testing.T) {
	setupEnv(t)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")

	_, _, err := execute(t, "image", filepath.Join(t.TempDir(), "missing.png"))
	var aerr *analyzer.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, analyzer.KindInputUnavailable, aerr.Kind)
}

func TestImageCommandRequiresAPIKey(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "image", writeScreenshot(t))
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestRunFlagsAreValidated(t *testing.T) {
	setupEnv(t)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")
	path := writeScreenshot(t)

	_, _, err := execute(t, "image", path, "-o", "xml")
	assert.ErrorContains(t, err, "invalid output format")

	_, _, err = execute(t, "image", path, "--timeout", "5s")
	assert.ErrorContains(t, err, "out of range")

	_, _, err = execute(t, "image", path, "--provider", "mystery")
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestAnalyzeCommandRejectsBadURL(t *testing.T) {
	setupEnv(t)

	_, _, err := execute(t, "analyze", "ftp://example.com")
	assert.ErrorContains(t, err, "unsupported URL scheme")
}

func TestAnalyzeCommandMissingScreenshotTool(t *testing.T) {
	setupEnv(t)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")
	t.Setenv("SITECRITIC_SCREENSHOT_COMMAND", "sitecritic-missing-tool {url} {output}")

	_, _, err := execute(t, "analyze", "example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to capture screenshot")
	assert.Contains(t, err.Error(), "not available")
}

func TestConfigCommandMasksKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("SITECRITIC_API_KEY", "sk-test-1234567890")

	stdout, _, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "api_key: sk-t...")
	assert.NotContains(t, stdout, "sk-test-1234567890")
	assert.Contains(t, stdout, "provider: openai")
	assert.Contains(t, stdout, "timeout: 1m0s")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sitecritic version test\n", stdout)
}
