package compat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/washb22/gunghabnote/internal/completion"
	"github.com/washb22/gunghabnote/internal/utils"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"

	defaultMaxLogLength = 200
	defaultTimeout      = 30 * time.Second
)

// Recorder receives pipeline measurements. metrics.Collector implements it.
type Recorder interface {
	ObserveCompletion(d time.Duration, err error)
	CountAnalysis(source string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCompletion(time.Duration, error) {}
func (nopRecorder) CountAnalysis(string)                   {}

// Options configure an Analyzer. Zero values select the defaults.
type Options struct {
	Logger       *zap.Logger
	Recorder     Recorder
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float32
	MaxLogLength int
	// Intn replaces the fallback selector's random source in tests.
	Intn func(n int) int
}

// Analyzer runs validate, complete, parse and assemble for one request.
type Analyzer struct {
	completer   completion.Completer
	selector    *Selector
	logger      *zap.Logger
	recorder    Recorder
	timeout     time.Duration
	maxTokens   int
	temperature float32
	maxLogLen   int
}

func NewAnalyzer(completer completion.Completer, opts Options) *Analyzer {
	if completer == nil {
		completer = completion.Unavailable{Reason: "no completion backend"}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		completer:   completer,
		selector:    NewSelector(opts.Intn),
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		timeout:     opts.Timeout,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		maxLogLen:   opts.MaxLogLength,
	}
}

// Analyze returns ErrMissingFields for invalid input and a Result otherwise.
// Upstream failures never surface: they are logged and replaced by a corpus entry.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	req = req.normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req, a.maxTokens, a.temperature)

	a.logger.Debug("completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt.User)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt.User, a.maxLogLen)),
	)

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("completion failed, using fallback", zap.Error(err))
		return a.fallback(req), nil
	}

	a.logger.Debug("completion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	percentage, message := Parse(raw)
	a.recorder.CountAnalysis(SourceModel)

	return assemble(req, raw, percentage, message, false), nil
}

// complete makes exactly one upstream call. Client cancellation is not
// propagated; only the configured timeout bounds the call.
func (a *Analyzer) complete(ctx context.Context, prompt completion.Prompt) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	started := time.Now()
	raw, err := a.completer.Complete(callCtx, prompt)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = completion.ErrEmptyResponse
	}
	a.recorder.ObserveCompletion(time.Since(started), err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("completion timed out after %s: %w", a.timeout, err)
		}
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

func (a *Analyzer) fallback(req Request) *Result {
	entry := a.selector.Pick(req.MyName, req.PartnerName)
	a.recorder.CountAnalysis(SourceFallback)
	return assemble(req, entry.Line(), entry.Percentage, entry.Message, true)
}
