package sitecmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"lectern/internal/commands"
	"lectern/internal/loader"
	"lectern/internal/logging"
)

const (
	scanOperation   = "site.scan_content"
	syncOperation   = "site.sync_document"
	removeOperation = "site.remove_document"
	buildOperation  = "site.build"
)

// ContentSyncer is the slice of the sync engine the document commands need.
type ContentSyncer interface {
	FullScan(ctx context.Context) (loader.ScanResult, error)
	SyncFile(ctx context.Context, path string) error
	RemoveFile(path string) error
}

// SiteBuilder produces the static site artifacts.
type SiteBuilder interface {
	Build(ctx context.Context, outputDir string) error
}

var (
	_ command.Commander[ScanContentCommand]    = (*ScanContentHandler)(nil)
	_ command.Commander[SyncDocumentCommand]   = (*SyncDocumentHandler)(nil)
	_ command.Commander[RemoveDocumentCommand] = (*RemoveDocumentHandler)(nil)
	_ command.Commander[BuildSiteCommand]      = (*BuildSiteHandler)(nil)
)

// ScanContentHandler runs a full content scan through the shared handler
// foundation.
type ScanContentHandler struct {
	inner *commands.Handler[ScanContentCommand]
}

// NewScanContentHandler creates a handler bound to the supplied sync engine.
func NewScanContentHandler(syncer ContentSyncer, logger logging.Logger, opts ...commands.HandlerOption[ScanContentCommand]) *ScanContentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ScanContentCommand) error {
		result, err := syncer.FullScan(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"loaded_count": result.Loaded,
			"failed_count": result.Failed,
		}).Info("site.command.scan_content.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ScanContentCommand]{
		commands.WithLogger[ScanContentCommand](baseLogger),
		commands.WithOperation[ScanContentCommand](scanOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[ScanContentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ScanContentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ScanContentCommand].
func (h *ScanContentHandler) Execute(ctx context.Context, msg ScanContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncDocumentHandler applies a single-document upsert.
type SyncDocumentHandler struct {
	inner *commands.Handler[SyncDocumentCommand]
}

// NewSyncDocumentHandler creates a handler bound to the supplied sync engine.
func NewSyncDocumentHandler(syncer ContentSyncer, logger logging.Logger, opts ...commands.HandlerOption[SyncDocumentCommand]) *SyncDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SyncDocumentCommand) error {
		return syncer.SyncFile(ctx, msg.Path)
	}

	handlerOpts := []commands.HandlerOption[SyncDocumentCommand]{
		commands.WithLogger[SyncDocumentCommand](baseLogger),
		commands.WithOperation[SyncDocumentCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncDocumentCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncDocumentCommand].
func (h *SyncDocumentHandler) Execute(ctx context.Context, msg SyncDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RemoveDocumentHandler applies a single-document removal.
type RemoveDocumentHandler struct {
	inner *commands.Handler[RemoveDocumentCommand]
}

// NewRemoveDocumentHandler creates a handler bound to the supplied sync
// engine.
func NewRemoveDocumentHandler(syncer ContentSyncer, logger logging.Logger, opts ...commands.HandlerOption[RemoveDocumentCommand]) *RemoveDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RemoveDocumentCommand) error {
		return syncer.RemoveFile(msg.Path)
	}

	handlerOpts := []commands.HandlerOption[RemoveDocumentCommand]{
		commands.WithLogger[RemoveDocumentCommand](baseLogger),
		commands.WithOperation[RemoveDocumentCommand](removeOperation),
		commands.WithMessageFields(func(msg RemoveDocumentCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RemoveDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RemoveDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RemoveDocumentCommand].
func (h *RemoveDocumentHandler) Execute(ctx context.Context, msg RemoveDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSiteHandler runs the static build.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler creates a handler bound to the supplied builder.
func NewBuildSiteHandler(builder SiteBuilder, logger logging.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		return builder.Build(ctx, msg.OutputDir)
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand](buildOperation),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			return map[string]any{"output_dir": msg.OutputDir}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
