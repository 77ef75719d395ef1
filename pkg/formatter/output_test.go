package formatter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/helmcode/sitecritic/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult(structured bool) *model.Result {
	r := &model.Result{
		ID:       "0b7c5d1e-3f0a-4c65-9a57-2d3c8f1e0a11",
		URL:      "https://example.com",
		Viewport: "mobile",
		Raw: model.RawAnalysis{
			Text:       "Page description: A landing page.\nCritical Issues - Navigation:\n- Menu is hidden",
			Model:      "gpt-4o",
			ProducedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	if structured {
		r.Critique = &model.Critique{
			PageDescription: "A landing page.",
			Summary:         "Navigation needs work.",
			Issues: []model.Issue{
				{Severity: model.SeverityCritical, Category: "Navigation", Description: "Menu is hidden"},
			},
		}
	}
	return r
}

func TestDisplayJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, sampleResult(true), "json", false))

	var report model.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "https://example.com", report.URL)
	assert.Equal(t, "gpt-4o", report.Model)
	assert.Equal(t, "A landing page.", report.PageDescription)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, model.SeverityCritical, report.Issues[0].Severity)
	assert.Contains(t, report.RawAnalysis, "Menu is hidden")
}

func TestDisplayJSONCleanPageHasEmptyIssueList(t *testing.T) {
	r := sampleResult(true)
	r.Critique.Issues = nil

	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, r, "json", false))
	assert.Contains(t, buf.String(), `"issues": []`)
}

func TestDisplayYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, sampleResult(true), "yaml", false))

	var report model.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "mobile", report.Viewport)
	assert.Equal(t, "Navigation", report.Issues[0].Category)
}

func TestDisplayText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, sampleResult(false), "text", false))

	out := buf.String()
	assert.Contains(t, out, "URL:      https://example.com")
	assert.Contains(t, out, "Model:    gpt-4o")
	assert.Contains(t, out, "- Menu is hidden")
	assert.NotContains(t, out, "ISSUES FOUND")
	assert.NotContains(t, out, "\x1b[")
}

func TestDisplayTextWithIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, sampleResult(true), "text", false))

	out := buf.String()
	assert.Contains(t, out, "ISSUES FOUND (1)")
	assert.Contains(t, out, "CRITICAL [Navigation]")
	assert.Contains(t, out, "Navigation needs work.")
}

func TestDisplayTextColorize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DisplayResults(&buf, sampleResult(true), "text", true))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestDisplayUnknownFormat(t *testing.T) {
	assert.Error(t, DisplayResults(&bytes.Buffer{}, sampleResult(false), "xml", false))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "critique.txt")
	require.NoError(t, Save(path, sampleResult(true), "text"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DESIGN CRITIQUE")
	assert.NotContains(t, string(data), "\x1b[")

	assert.Error(t, Save(filepath.Join(t.TempDir(), "missing", "out.json"), sampleResult(true), "json"))
}

func TestWrapText(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(wrapText(text, 30, "  "), "\n") {
		assert.LessOrEqual(t, len(line), 30)
		assert.True(t, strings.HasPrefix(line, "  "))
	}

	long := strings.Repeat("x", 50)
	assert.Equal(t, "  "+long, wrapText(long, 30, "  "))
	assert.Equal(t, "a\n\nb", wrapText("a\n\nb", 30, ""))
}
