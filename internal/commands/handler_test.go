package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct {
	fail bool
}

func (testMessage) Type() string { return "lectern.test.message" }

func (m testMessage) Validate() error {
	if m.fail {
		return errors.New("invalid message")
	}
	return nil
}

func TestHandlerExecutesFunction(t *testing.T) {
	called := false
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not invoked")
	}
}

func TestHandlerValidatesMessage(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		t.Fatal("function must not run for invalid messages")
		return nil
	})

	err := handler.Execute(context.Background(), testMessage{fail: true})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	boom := errors.New("boom")
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return boom
	})

	err := handler.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause lost in wrapping")
	}
}

func TestHandlerHonorsCancelledContext(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		t.Fatal("function must not run for a cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := handler.Execute(ctx, testMessage{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestHandlerTelemetry(t *testing.T) {
	var reported TelemetryInfo
	handler := NewHandler(
		func(ctx context.Context, msg testMessage) error { return nil },
		WithOperation[testMessage]("test.operation"),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"flag": msg.fail}
		}),
		WithTelemetry(func(ctx context.Context, msg testMessage, info TelemetryInfo) {
			reported = info
		}),
	)

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if reported.Status != TelemetryStatusSuccess {
		t.Errorf("status = %q", reported.Status)
	}
	if reported.Operation != "test.operation" {
		t.Errorf("operation = %q", reported.Operation)
	}
	if reported.Command != "lectern.test.message" {
		t.Errorf("command = %q", reported.Command)
	}
	if _, ok := reported.Fields["flag"]; !ok {
		t.Error("message fields missing from telemetry")
	}
	if reported.Duration < 0 {
		t.Error("negative duration")
	}
}

func TestHandlerTelemetryFailure(t *testing.T) {
	var reported TelemetryInfo
	handler := NewHandler(
		func(ctx context.Context, msg testMessage) error { return errors.New("boom") },
		WithTelemetry(func(ctx context.Context, msg testMessage, info TelemetryInfo) {
			reported = info
		}),
	)

	if err := handler.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if reported.Status != TelemetryStatusFailed {
		t.Errorf("status = %q", reported.Status)
	}
	if reported.Error == nil {
		t.Error("error missing from telemetry")
	}
}

func TestWithTimeoutDisables(t *testing.T) {
	handler := NewHandler(
		func(ctx context.Context, msg testMessage) error {
			if _, ok := ctx.Deadline(); ok {
				t.Error("expected no deadline when timeout disabled")
			}
			return nil
		},
		WithTimeout[testMessage](0),
	)
	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestWithTimeoutApplies(t *testing.T) {
	handler := NewHandler(
		func(ctx context.Context, msg testMessage) error {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("expected a deadline")
			}
			if time.Until(deadline) > time.Minute {
				t.Error("deadline further out than configured timeout")
			}
			return nil
		},
		WithTimeout[testMessage](time.Second),
	)
	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
