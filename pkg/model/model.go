package model

import "time"

// Severity ranks a single design issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// DefaultCategory is used when the critique gives no category cue.
const DefaultCategory = "General"

// AnalysisRequest is everything needed for one critique call.
type AnalysisRequest struct {
	URL        string
	ImagePath  string
	Viewport   string
	Credential string
}

// RawAnalysis is the free-form critique returned by the model.
type RawAnalysis struct {
	Text       string    `json:"text" yaml:"text"`
	Model      string    `json:"model" yaml:"model"`
	ProducedAt time.Time `json:"produced_at" yaml:"produced_at"`
}

type Issue struct {
	Severity    Severity `json:"severity" yaml:"severity"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
}

// Critique is the structured view of a RawAnalysis.
type Critique struct {
	PageDescription string  `json:"page_description" yaml:"page_description"`
	Summary         string  `json:"summary" yaml:"summary"`
	Issues          []Issue `json:"issues" yaml:"issues"`
}

// Result is what a successful review hands back to the caller.
// Critique is nil unless structured output was requested.
type Result struct {
	ID       string
	URL      string
	Viewport string
	Raw      RawAnalysis
	Critique *Critique
}

// Report is the machine-readable rendering of a Result.
type Report struct {
	ID              string    `json:"id" yaml:"id"`
	URL             string    `json:"url,omitempty" yaml:"url,omitempty"`
	Viewport        string    `json:"viewport" yaml:"viewport"`
	Model           string    `json:"model" yaml:"model"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	PageDescription string    `json:"page_description" yaml:"page_description"`
	Summary         string    `json:"summary" yaml:"summary"`
	Issues          []Issue   `json:"issues" yaml:"issues"`
	RawAnalysis     string    `json:"raw_analysis" yaml:"raw_analysis"`
}

// NewReport flattens a structured Result. Issues is never nil so that
// a clean page serializes as an empty list.
func NewReport(r *Result) Report {
	rep := Report{
		ID:          r.ID,
		URL:         r.URL,
		Viewport:    r.Viewport,
		Model:       r.Raw.Model,
		Timestamp:   r.Raw.ProducedAt,
		RawAnalysis: r.Raw.Text,
		Issues:      []Issue{},
	}
	if r.Critique != nil {
		rep.PageDescription = r.Critique.PageDescription
		rep.Summary = r.Critique.Summary
		if r.Critique.Issues != nil {
			rep.Issues = r.Critique.Issues
		}
	}
	return rep
}
