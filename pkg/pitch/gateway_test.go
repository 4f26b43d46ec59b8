package pitch

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testPolicy keeps backoff waits negligible in tests.
func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestGeneratePitches(t *testing.T) {
	t.Run("full pitch set", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "[PITCH1]a[/PITCH1][PITCH2]b[/PITCH2][PITCH3]c[/PITCH3]", nil
		}

		gw, err := NewGateway(testPolicy(3), m)
		if err != nil {
			t.Fatalf("new gateway: %v", err)
		}

		pitches, err := gw.GeneratePitches(context.Background(), "mock", "resume", "jd", "")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(pitches) != 3 {
			t.Fatalf("expected 3 pitches, got %d", len(pitches))
		}
		if pitches[0] != "a" || pitches[1] != "b" || pitches[2] != "c" {
			t.Errorf("unexpected pitches: %v", pitches)
		}
	})

	t.Run("partial pitch set is valid", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "[PITCH1]a[/PITCH1][PITCH2]b[/PITCH2]", nil
		}

		gw, _ := NewGateway(testPolicy(3), m)

		pitches, err := gw.GeneratePitches(context.Background(), "mock", "resume", "jd", "")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(pitches) != 2 {
			t.Errorf("expected 2 pitches, got %d", len(pitches))
		}
	})

	t.Run("no markers is a parse error", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "I could not follow the format, sorry.", nil
		}

		gw, _ := NewGateway(testPolicy(3), m)

		_, err := gw.GeneratePitches(context.Background(), "mock", "resume", "jd", "")
		if !IsParse(err) {
			t.Errorf("expected parse error, got %v", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		gw, _ := NewGateway(testPolicy(3), NewMock())

		_, err := gw.GeneratePitches(context.Background(), "nope", "resume", "jd", "")
		if !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("expected ErrUnknownProvider, got %v", err)
		}
	})

	t.Run("model override reaches provider", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "[PITCH1]x[/PITCH1]", nil
		}

		gw, _ := NewGateway(testPolicy(3), m)
		_, err := gw.GeneratePitches(context.Background(), "mock", "r", "j", "gpt-4o")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if m.LastRequest.Model != "gpt-4o" {
			t.Errorf("expected model override, got %q", m.LastRequest.Model)
		}
	})
}

func TestRetryPolicy(t *testing.T) {
	t.Run("succeeds on third attempt", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			if m.Calls() < 3 {
				return "", transportError("mock", "flaky", nil)
			}
			return "[PITCH1]a[/PITCH1]", nil
		}

		gw, _ := NewGateway(testPolicy(3), m)

		pitches, err := gw.GeneratePitches(context.Background(), "mock", "r", "j", "")
		if err != nil {
			t.Fatalf("expected success on third attempt, got %v", err)
		}
		if len(pitches) != 1 {
			t.Errorf("expected 1 pitch, got %d", len(pitches))
		}
		if m.Calls() != 3 {
			t.Errorf("expected 3 attempts, got %d", m.Calls())
		}
	})

	t.Run("exhaustion surfaces last transport error", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "", transportError("mock", "down", nil)
		}

		gw, _ := NewGateway(testPolicy(3), m)

		_, err := gw.GeneratePitches(context.Background(), "mock", "r", "j", "")
		if !IsTransport(err) {
			t.Fatalf("expected transport error, got %v", err)
		}
		if m.Calls() != 3 {
			t.Errorf("expected exactly 3 attempts, got %d", m.Calls())
		}

		var ge *Error
		if !errors.As(err, &ge) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if ge.Provider != "mock" || ge.Op != "generate" {
			t.Errorf("error missing context: provider=%q op=%q", ge.Provider, ge.Op)
		}
	})

	t.Run("auth error is not retried", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "", authError("mock", "bad key", nil)
		}

		gw, _ := NewGateway(testPolicy(3), m)

		_, err := gw.GeneratePitches(context.Background(), "mock", "r", "j", "")
		if !IsAuth(err) {
			t.Fatalf("expected auth error, got %v", err)
		}
		if m.Calls() != 1 {
			t.Errorf("expected 1 attempt for auth error, got %d", m.Calls())
		}
	})

	t.Run("cancelled context stops backoff", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		start := time.Now()

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := policy.Do(ctx, nil, func(ctx context.Context) error {
			calls++
			return transportError("mock", "down", nil)
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancellation, got %d", calls)
		}
		if time.Since(start) > time.Second {
			t.Error("backoff ignored context cancellation")
		}
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

		start := time.Now()
		_ = policy.Do(context.Background(), nil, func(ctx context.Context) error {
			return transportError("mock", "down", nil)
		})
		elapsed := time.Since(start)

		// Waits of 10ms and 20ms between the three attempts.
		if elapsed < 30*time.Millisecond {
			t.Errorf("expected at least 30ms of backoff, got %v", elapsed)
		}
	})
}

func TestFeedback(t *testing.T) {
	t.Run("returns free text", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "Great energy throughout.", nil
		}

		gw, _ := NewGateway(testPolicy(3), m)

		text, err := gw.Feedback(context.Background(), "mock", "joy: 0.8")
		if err != nil {
			t.Fatalf("feedback failed: %v", err)
		}
		if text != "Great energy throughout." {
			t.Errorf("unexpected feedback: %q", text)
		}
	})

	t.Run("feedback error tagged with op", func(t *testing.T) {
		m := NewMock()
		m.CompleteFunc = func(ctx context.Context, req *CompletionRequest) (string, error) {
			return "", transportError("mock", "down", nil)
		}

		gw, _ := NewGateway(testPolicy(2), m)

		_, err := gw.Feedback(context.Background(), "mock", "summary")
		var ge *Error
		if !errors.As(err, &ge) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if ge.Op != "feedback" {
			t.Errorf("expected op feedback, got %q", ge.Op)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("does not touch completion path", func(t *testing.T) {
		m := NewMock()
		gw, _ := NewGateway(testPolicy(3), m)

		if err := gw.Validate(context.Background(), "mock"); err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if m.ValidateCalls != 1 {
			t.Errorf("expected 1 validate call, got %d", m.ValidateCalls)
		}
		if m.Calls() != 0 {
			t.Errorf("validate must not call Complete, got %d calls", m.Calls())
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		gw, _ := NewGateway(testPolicy(3), NewMock())
		if err := gw.Validate(context.Background(), "nope"); !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("expected ErrUnknownProvider, got %v", err)
		}
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("kind strings", func(t *testing.T) {
		kinds := []struct {
			kind     Kind
			expected string
		}{
			{KindTransport, "transport"},
			{KindAuth, "auth"},
			{KindParse, "parse"},
			{Kind(99), "unknown"},
		}
		for _, tc := range kinds {
			if tc.kind.String() != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, tc.kind.String())
			}
		}
	})

	t.Run("unwrap returns cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := transportError("mock", "wrapped", cause)
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to find cause")
		}
	})

	t.Run("retryable", func(t *testing.T) {
		if !transportError("m", "", nil).IsRetryable() {
			t.Error("transport should be retryable")
		}
		if authError("m", "", nil).IsRetryable() {
			t.Error("auth should not be retryable")
		}
	})
}

func TestNewProviderValidation(t *testing.T) {
	t.Run("openai requires API key", func(t *testing.T) {
		_, err := NewOpenAI()
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("huggingface requires API key", func(t *testing.T) {
		_, err := NewHuggingFace()
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("gateway requires providers", func(t *testing.T) {
		_, err := NewGateway(testPolicy(3))
		if !errors.Is(err, ErrNoProviders) {
			t.Errorf("expected ErrNoProviders, got %v", err)
		}
	})
}
