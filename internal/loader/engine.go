// Package loader orchestrates the content ingestion pipeline: it discovers
// structured-text documents under a configured root, runs each one through
// parse, metadata extraction, and path resolution, and publishes the result
// into the content store. It owns the concurrency of the full scan and the
// per-path ordering of watch-mode events; every failure is contained at the
// single-file boundary.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lectern/internal/content"
	"lectern/internal/document"
	"lectern/internal/logging"
)

// Config wires the engine to its root directory and rendering constants.
type Config struct {
	// Root is the directory holding one top-level subdirectory per locale.
	Root string
	// Extension selects eligible source files (".md").
	Extension string
	// Collection names the store collection records are published into.
	Collection string
	// Locales enumerates the configured locale codes.
	Locales []string
	// DefaultLocale is used for caption fallback when a document lives under
	// an unknown top-level directory.
	DefaultLocale string
	// Parser carries the format-level options shared by every document;
	// caption labels are resolved per document locale from the maps below.
	Parser document.ParseOptions
	// FigureCaptions and ListingCaptions map locale code to caption label.
	FigureCaptions  map[string]string
	ListingCaptions map[string]string
}

// Engine is the sync engine. One engine owns one store collection for the
// process lifetime: the full scan populates it, watch events mutate it, the
// rendering layer reads it.
type Engine struct {
	cfg      Config
	parser   *document.Parser
	resolver *content.Resolver
	store    *content.Store
	logger   logging.Logger
}

// ScanResult summarises a full scan.
type ScanResult struct {
	Loaded int
	Failed int
}

// NewEngine constructs a sync engine over the provided store.
func NewEngine(cfg Config, store *content.Store, logger logging.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("loader: store is required")
	}
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, errors.New("loader: root directory is required")
	}
	if cfg.Extension == "" {
		cfg.Extension = ".md"
	}
	if cfg.Collection == "" {
		cfg.Collection = "blog"
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Engine{
		cfg:      cfg,
		parser:   document.NewParser(cfg.Parser),
		resolver: content.NewResolver(cfg.Root, cfg.Extension, cfg.Locales),
		store:    store,
		logger:   logger,
	}, nil
}

// Store exposes the engine's collection store to consumers.
func (e *Engine) Store() *content.Store {
	return e.store
}

// Collection returns the store collection name the engine publishes into.
func (e *Engine) Collection() string {
	return e.cfg.Collection
}

// FullScan enumerates every eligible source file under the root and ingests
// each one in its own goroutine. Per-file failures are logged and isolated;
// only a failure to enumerate the root itself is returned as an error. Zero
// eligible files is a valid empty collection.
func (e *Engine) FullScan(ctx context.Context) (ScanResult, error) {
	e.logger.Info("scan.start", "root", e.cfg.Root)

	paths, err := e.discover()
	if err != nil {
		return ScanResult{}, fmt.Errorf("loader: enumerate %s: %w", e.cfg.Root, err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result ScanResult
	)

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			err := e.SyncFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				return
			}
			result.Loaded++
		}(path)
	}
	wg.Wait()

	e.logger.Info("scan.complete", "loaded", result.Loaded, "failed", result.Failed)
	return result, nil
}

// SyncFile runs the single-file pipeline for path: read, parse, extract and
// validate metadata, resolve identifiers, publish. Any prior record for the
// same id is replaced wholesale. On a parse or validation failure for a file
// that previously produced a valid record, the stale record is evicted so an
// edit that regresses required attributes cannot leave outdated content
// published. A read failure or cancellation leaves any prior record in
// place; the file was never re-read, so there is nothing to invalidate. The
// error is always logged here; callers only need the success/failure
// outcome.
func (e *Engine) SyncFile(ctx context.Context, path string) error {
	err := e.syncFile(ctx, path)
	if err == nil {
		return nil
	}

	e.logFailure(path, err)

	if !contentDefect(err) {
		return err
	}

	if resolved, rerr := e.resolver.Resolve(path); rerr == nil {
		if e.store.Delete(e.cfg.Collection, resolved.ID) {
			logging.WithDocumentContext(e.logger, path, resolved.Lang, "evict").
				Warn("document.evicted", "id", resolved.ID)
		}
	}
	return err
}

// contentDefect reports whether a sync failure came from the document
// content itself rather than from the attempt to read it. A cancelled
// context or an unreadable file says nothing about the source, so those
// failures never evict a published record; the next successful re-read or an
// unlink event settles it.
func contentDefect(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pathErr *fs.PathError
	return !errors.As(err, &pathErr)
}

func (e *Engine) syncFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resolved, err := e.resolver.Resolve(path)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", path, err)
	}

	doc, err := e.parser.ParseWithOptions(source, e.optionsFor(resolved))
	if err != nil {
		return err
	}

	meta, err := content.ExtractMetadata(doc.Attributes)
	if err != nil {
		return err
	}

	title := doc.FullTitle()
	if title == "" {
		title = fallbackTitle(resolved.Slug)
	}

	e.store.Set(e.cfg.Collection, content.Record{
		ID:          resolved.ID,
		Slug:        resolved.Slug,
		Title:       title,
		Date:        meta.PublishedAt,
		PublishedAt: meta.PublishedAt,
		UpdatedAt:   meta.UpdatedAt,
		Author:      meta.Author,
		Description: meta.Description,
		Tags:        meta.Tags,
		TagSlugs:    meta.TagSlugs,
		Lang:        resolved.Lang,
		Restricted:  meta.Restricted,
		BodyHTML:    string(doc.BodyHTML),
	})

	logging.WithDocumentContext(e.logger, path, resolved.Lang, "load").
		Info("document.loaded", "id", resolved.ID, "slug", resolved.Slug)
	return nil
}

// RemoveFile handles an unlink: only the store key is computed, no read or
// parse happens. Removing an unknown path is a no-op.
func (e *Engine) RemoveFile(path string) error {
	id, err := e.resolver.ID(path)
	if err != nil {
		return err
	}
	if e.store.Delete(e.cfg.Collection, id) {
		e.logger.Info("document.removed", "id", id, "path", path)
	}
	return nil
}

// Matches reports whether path is an eligible source file under the root.
func (e *Engine) Matches(path string) bool {
	if !e.resolver.Matches(path) {
		return false
	}
	_, err := e.resolver.ID(path)
	return err == nil
}

func (e *Engine) discover() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(e.cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if e.resolver.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// optionsFor resolves locale-specific caption labels, falling back to the
// default locale for documents under unknown top-level directories.
func (e *Engine) optionsFor(resolved content.Resolved) document.ParseOptions {
	opts := e.cfg.Parser

	lang := resolved.Lang
	if !resolved.KnownLang {
		lang = e.cfg.DefaultLocale
	}
	if label, ok := e.cfg.FigureCaptions[lang]; ok {
		opts.FigureCaption = label
	} else if label, ok := e.cfg.FigureCaptions[e.cfg.DefaultLocale]; ok {
		opts.FigureCaption = label
	}
	if label, ok := e.cfg.ListingCaptions[lang]; ok {
		opts.ListingCaption = label
	} else if label, ok := e.cfg.ListingCaptions[e.cfg.DefaultLocale]; ok {
		opts.ListingCaption = label
	}
	return opts
}

func (e *Engine) logFailure(path string, err error) {
	logger := e.logger
	if missing := content.MissingFields(err); missing != nil {
		logger = logging.WithFields(logger, map[string]any{
			"missing_attributes": strings.Join(missing, ", "),
		})
	}
	logger.Error("document.failed", "path", path, "error", err)
}

func fallbackTitle(slug string) string {
	base := slug
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if base == "" {
		return "Untitled"
	}
	base = strings.ReplaceAll(base, "-", " ")
	return strings.ReplaceAll(base, "_", " ")
}
