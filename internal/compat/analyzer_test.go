package compat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/washb22/gunghabnote/internal/completion"
)

type stubCompleter struct {
	mu     sync.Mutex
	output string
	err    error
	calls  int
	ctxErr error
	prompt completion.Prompt
}

func (s *stubCompleter) Complete(ctx context.Context, prompt completion.Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.ctxErr = ctx.Err()
	s.prompt = prompt
	return s.output, s.err
}

func (s *stubCompleter) Model() string { return "stub" }

type stubRecorder struct {
	completions int
	lastErr     error
	sources     []string
}

func (r *stubRecorder) ObserveCompletion(_ time.Duration, err error) {
	r.completions++
	r.lastErr = err
}

func (r *stubRecorder) CountAnalysis(source string) {
	r.sources = append(r.sources, source)
}

func corpusLines(myName, partnerName string) map[string]Entry {
	lines := make(map[string]Entry)
	for _, e := range Corpus() {
		r := e.Render(myName, partnerName)
		lines[r.Line()] = r
	}
	return lines
}

func TestAnalyzeModelAnswer(t *testing.T) {
	stub := &stubCompleter{output: "궁합 83% - 두 분은 잘 통하는 인연이에요 ✨"}
	rec := &stubRecorder{}
	a := NewAnalyzer(stub, Options{Recorder: rec})

	res, err := a.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Result{
		LoveStyle:   "궁합 83% - 두 분은 잘 통하는 인연이에요 ✨",
		MyName:      "민수",
		PartnerName: "수진",
		Percentage:  83,
		Message:     "두 분은 잘 통하는 인연이에요 ✨",
		CTAMessage:  "",
	}
	if *res != want {
		t.Fatalf("unexpected result:\nwant %+v\n got %+v", want, *res)
	}

	if stub.calls != 1 {
		t.Fatalf("expected one completion call, got %d", stub.calls)
	}
	if stub.prompt.MaxTokens != DefaultMaxTokens || stub.prompt.Temperature != DefaultTemperature {
		t.Fatalf("unexpected sampling parameters: %+v", stub.prompt)
	}
	if rec.completions != 1 || rec.lastErr != nil {
		t.Fatalf("unexpected completion observations: %+v", rec)
	}
	if len(rec.sources) != 1 || rec.sources[0] != SourceModel {
		t.Fatalf("expected model source, got %v", rec.sources)
	}
}

func TestAnalyzeLowModelAnswerGetsCTA(t *testing.T) {
	stub := &stubCompleter{output: "궁합 42% - 노력이 필요한 사이예요 🌱"}

	res, err := NewAnalyzer(stub, Options{}).Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Percentage != 60 || res.CTAMessage != ctaBandSixties || res.Fallback {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.LoveStyle != "궁합 42% - 노력이 필요한 사이예요 🌱" {
		t.Fatalf("loveStyle must keep the raw line, got %q", res.LoveStyle)
	}
}

func TestAnalyzeFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		completer completion.Completer
	}{
		{name: "timeout", completer: &stubCompleter{err: context.DeadlineExceeded}},
		{name: "upstream status", completer: &stubCompleter{err: errors.New("status 500")}},
		{name: "empty text", completer: &stubCompleter{output: "   "}},
		{name: "missing credential", completer: completion.Unavailable{Reason: "openai api key"}},
		{name: "nil completer", completer: nil},
	}

	lines := corpusLines("민수", "수진")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			rec := &stubRecorder{}
			a := NewAnalyzer(tt.completer, Options{Logger: zap.New(core), Recorder: rec})

			res, err := a.Analyze(context.Background(), validRequest())
			if err != nil {
				t.Fatalf("fallback must not surface errors, got %v", err)
			}

			if !res.Fallback {
				t.Fatalf("expected fallback result, got %+v", res)
			}
			entry, ok := lines[res.LoveStyle]
			if !ok {
				t.Fatalf("loveStyle %q is not a corpus line", res.LoveStyle)
			}
			if res.Message == "" || res.Message != entry.Message {
				t.Fatalf("unexpected message %q", res.Message)
			}
			if res.Percentage < MinPercentage || res.Percentage > MaxPercentage {
				t.Fatalf("percentage out of range: %d", res.Percentage)
			}
			if res.CTAMessage != CTA(res.Percentage) {
				t.Fatalf("cta mismatch for %d: %q", res.Percentage, res.CTAMessage)
			}
			if res.MyName != "민수" || res.PartnerName != "수진" {
				t.Fatalf("names not echoed: %+v", res)
			}

			if logs.FilterMessage("completion failed, using fallback").Len() != 1 {
				t.Fatalf("expected one fallback warning, got %d entries", logs.Len())
			}
			if len(rec.sources) != 1 || rec.sources[0] != SourceFallback {
				t.Fatalf("expected fallback source, got %v", rec.sources)
			}
		})
	}
}

func TestAnalyzeValidationSkipsCompletion(t *testing.T) {
	stub := &stubCompleter{output: "궁합 90% - 좋아요"}
	rec := &stubRecorder{}
	a := NewAnalyzer(stub, Options{Recorder: rec})

	req := validRequest()
	req.PartnerGender = " "

	res, err := a.Analyze(context.Background(), req)
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no completion call, got %d", stub.calls)
	}
	if rec.completions != 0 || len(rec.sources) != 0 {
		t.Fatalf("expected no measurements, got %+v", rec)
	}
}

func TestAnalyzeIgnoresClientCancellation(t *testing.T) {
	stub := &stubCompleter{output: "궁합 74% - 끌림이 분명해요 💫"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewAnalyzer(stub, Options{}).Analyze(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.ctxErr != nil {
		t.Fatalf("completion context must not inherit cancellation, got %v", stub.ctxErr)
	}
	if res.Fallback || res.Percentage != 74 || res.CTAMessage != ctaBandSeventies {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeDeterministicFallback(t *testing.T) {
	stub := &stubCompleter{err: errors.New("boom")}
	a := NewAnalyzer(stub, Options{Intn: func(int) int { return 0 }})

	res, err := a.Analyze(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := Corpus()[0]
	if res.LoveStyle != first.Line() || res.Percentage != Clamp(first.Percentage) {
		t.Fatalf("expected first corpus entry, got %+v", res)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	stub := &stubCompleter{err: errors.New("boom")}
	a := NewAnalyzer(stub, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := a.Analyze(context.Background(), validRequest())
			if err != nil || res == nil || !res.Fallback {
				t.Errorf("unexpected outcome: %+v %v", res, err)
			}
		}()
	}
	wg.Wait()

	if stub.calls != 32 {
		t.Fatalf("expected 32 calls, got %d", stub.calls)
	}
}
