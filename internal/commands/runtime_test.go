package commands

import (
	"context"
	"testing"

	"lectern/internal/logging"
)

type recordingLogger struct {
	fields map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithContext(context.Context) logging.Logger {
	return r
}

func (r *recordingLogger) WithFields(fields map[string]any) logging.Logger {
	merged := map[string]any{}
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged}
}

type stubProvider struct {
	names []string
}

func (p *stubProvider) GetLogger(name string) logging.Logger {
	p.names = append(p.names, name)
	return &recordingLogger{}
}

func TestCommandLogger(t *testing.T) {
	provider := &stubProvider{}
	logger := CommandLogger(provider, "site")

	if len(provider.names) != 1 || provider.names[0] != "lectern.commands.site" {
		t.Errorf("provider names = %v", provider.names)
	}
	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("logger type = %T", logger)
	}
	if rec.fields["component"] != "command" || rec.fields["command_module"] != "site" {
		t.Errorf("fields = %v", rec.fields)
	}
	if rec.fields["module"] != "lectern.commands.site" {
		t.Errorf("fields = %v", rec.fields)
	}
}

func TestCommandLoggerBlankModule(t *testing.T) {
	provider := &stubProvider{}
	CommandLogger(provider, "  ")
	if len(provider.names) != 1 || provider.names[0] != "lectern.commands.core" {
		t.Errorf("provider names = %v", provider.names)
	}
}

func TestEnsureLogger(t *testing.T) {
	if EnsureLogger(nil) == nil {
		t.Fatal("nil logger should fall back to a usable no-op")
	}
	base := &recordingLogger{}
	if EnsureLogger(base) != logging.Logger(base) {
		t.Error("non-nil logger should pass through unchanged")
	}
}
