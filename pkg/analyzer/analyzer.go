package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helmcode/sitecritic/pkg/llm"
	"github.com/helmcode/sitecritic/pkg/model"
	"github.com/helmcode/sitecritic/pkg/parser"
	"github.com/helmcode/sitecritic/pkg/prompts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ImageSource loads screenshot bytes and their MIME type.
type ImageSource interface {
	ReadImage(path string) ([]byte, string, error)
}

// Policy bounds one analysis: at most MaxAttempts calls, each limited to
// AttemptTimeout, with BaseDelay doubled before every retry.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    4,
		BaseDelay:      time.Second,
		AttemptTimeout: 60 * time.Second,
	}
}

// Backoff is the wait before the given attempt (1-based retry index).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

type Analyzer struct {
	llm    llm.LLM
	images ImageSource
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
}

func New(l llm.LLM, images ImageSource, policy Policy) *Analyzer {
	def := DefaultPolicy()
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = def.BaseDelay
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = def.AttemptTimeout
	}
	return &Analyzer{
		llm:    l,
		images: images,
		policy: policy,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// Review runs one analysis and, when structured is set, parses the critique
// into issues. On failure the error is always an *Error.
func (a *Analyzer) Review(ctx context.Context, req model.AnalysisRequest, structured bool) (*model.Result, error) {
	id := uuid.NewString()
	logger := log.With().Str("run_id", id).Str("viewport", req.Viewport).Logger()
	ctx = logger.WithContext(ctx)

	raw, err := a.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		ID:       id,
		URL:      req.URL,
		Viewport: req.Viewport,
		Raw:      *raw,
	}
	if structured {
		critique := parser.ParseCritique(raw.Text)
		result.Critique = &critique
		logger.Debug().Int("issues", len(critique.Issues)).Msg("Parsed critique")
	}
	return result, nil
}

// Analyze sends the screenshot to the model, retrying transient failures.
// Client errors (4xx) stop immediately; everything retryable is attempted up
// to the policy limit and the last failure is returned.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.RawAnalysis, error) {
	logger := loggerFrom(ctx)

	image, mimeType, err := a.images.ReadImage(req.ImagePath)
	if err != nil {
		return nil, newError(KindInputUnavailable, fmt.Sprintf("could not read input %s: %v", req.ImagePath, err), 0, err)
	}

	system, user := prompts.BuildCritiquePrompt(req.Viewport)
	vr := llm.VisionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Image:        image,
		MIMEType:     mimeType,
	}

	var lastErr *Error
	for attempt := 0; attempt < a.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := a.policy.Backoff(attempt)
			logger.Debug().
				Str("kind", lastErr.Kind.String()).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying analysis")
			if err := a.sleep(ctx, delay); err != nil {
				return nil, canceled(err)
			}
		}

		start := time.Now()
		text, attemptErr := a.attempt(ctx, vr)
		if attemptErr == nil {
			logger.Debug().Int("attempt", attempt+1).Dur("duration", time.Since(start)).Msg("Analysis received")
			return &model.RawAnalysis{
				Text:       text,
				Model:      a.llm.GetModel(),
				ProducedAt: a.now(),
			}, nil
		}
		if ctx.Err() != nil {
			return nil, canceled(ctx.Err())
		}

		lastErr = redact(attemptErr, req.Credential)
		logger.Debug().
			Err(lastErr).
			Int("attempt", attempt+1).
			Bool("retryable", lastErr.Retryable).
			Msg("Analysis attempt failed")
		if !lastErr.Retryable {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

type reply struct {
	text string
	err  error
}

// attempt races one provider call against its own timeout window.
func (a *Analyzer) attempt(ctx context.Context, vr llm.VisionRequest) (string, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.policy.AttemptTimeout)
	defer cancel()

	done := make(chan reply, 1)
	go func() {
		text, err := a.llm.Analyze(attemptCtx, vr)
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
			return "", Classify(r.err, timedOut)
		}
		if strings.TrimSpace(r.text) == "" {
			return "", Classify(llm.ErrEmptyResponse, false)
		}
		return r.text, nil
	case <-attemptCtx.Done():
		return "", Classify(attemptCtx.Err(), ctx.Err() == nil)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func canceled(err error) *Error {
	return newError(KindCanceled, "analysis canceled", 0, err)
}

// redact keeps the credential out of anything shown to the caller; only a
// short prefix survives for diagnostics.
func redact(e *Error, credential string) *Error {
	if credential == "" {
		return e
	}
	masked := MaskCredential(credential)
	e.Message = strings.ReplaceAll(e.Message, credential, masked)
	if e.Err != nil && strings.Contains(e.Err.Error(), credential) {
		e.Err = errors.New(strings.ReplaceAll(e.Err.Error(), credential, masked))
	}
	return e
}

// MaskCredential shows at most the first four characters of a secret.
func MaskCredential(credential string) string {
	if len(credential) <= 8 {
		return "****"
	}
	return credential[:4] + "..."
}

func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
