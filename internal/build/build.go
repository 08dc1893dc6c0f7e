// Package build writes the static artifacts of the site: the collection data
// file, per-locale RSS feeds and site data, and a preview image per post.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lectern/internal/content"
	"lectern/internal/feed"
	"lectern/internal/logging"
	"lectern/internal/ogimage"
	"lectern/internal/sitedata"
)

// Config carries the site constants the build needs.
type Config struct {
	// SiteURL is the absolute site base used in feed links.
	SiteURL string
	// Collection is the store collection to publish.
	Collection string
	// Locales lists the locale codes to emit feeds and site data for.
	Locales []string
	// Titles and Descriptions hold the per-locale channel strings.
	Titles       map[string]string
	Descriptions map[string]string
}

// Builder assembles the output tree from the content store and site data.
type Builder struct {
	cfg       Config
	store     *content.Store
	generator *ogimage.Generator
	info      *sitedata.Info
	changelog *sitedata.Changelog
	logger    logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithSiteData attaches the validated info and changelog documents so the
// build emits per-locale site data files.
func WithSiteData(info *sitedata.Info, changelog *sitedata.Changelog) Option {
	return func(b *Builder) {
		b.info = info
		b.changelog = changelog
	}
}

// WithImageGenerator attaches the preview card generator. Without one the
// build skips images.
func WithImageGenerator(generator *ogimage.Generator) Option {
	return func(b *Builder) {
		b.generator = generator
	}
}

// WithLogger sets the build logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New constructs a builder over the given store.
func New(cfg Config, store *content.Store, opts ...Option) *Builder {
	b := &Builder{
		cfg:    cfg,
		store:  store,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build writes the full output tree under outputDir. Existing files are
// overwritten; unrelated files are left alone.
func (b *Builder) Build(ctx context.Context, outputDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.writeCollection(outputDir); err != nil {
		return err
	}
	for _, lang := range b.cfg.Locales {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.writeFeed(outputDir, lang); err != nil {
			return err
		}
		if err := b.writeSiteData(outputDir, lang); err != nil {
			return err
		}
	}
	if err := b.writeImages(ctx, outputDir); err != nil {
		return err
	}

	b.logger.Info("build.complete", "output_dir", outputDir,
		"records", b.store.Len(b.cfg.Collection))
	return nil
}

func (b *Builder) writeCollection(outputDir string) error {
	records := b.store.GetAll(b.cfg.Collection)
	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("build: encode collection: %w", err)
	}
	path := filepath.Join(outputDir, "data", b.cfg.Collection+".json")
	return writeFile(path, append(encoded, '\n'))
}

func (b *Builder) writeFeed(outputDir, lang string) error {
	rendered, err := feed.Render(b.store, feed.Config{
		SiteURL:     b.cfg.SiteURL,
		Title:       b.cfg.Titles[lang],
		Description: b.cfg.Descriptions[lang],
		Lang:        lang,
		Collection:  b.cfg.Collection,
	})
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(outputDir, lang, "rss.xml"), rendered)
}

func (b *Builder) writeSiteData(outputDir, lang string) error {
	if b.info == nil {
		return nil
	}
	localized := sitedata.Localize(b.info, b.changelog, lang)
	encoded, err := json.MarshalIndent(localized, "", "  ")
	if err != nil {
		return fmt.Errorf("build: encode site data: %w", err)
	}
	path := filepath.Join(outputDir, "data", "site_"+lang+".json")
	return writeFile(path, append(encoded, '\n'))
}

func (b *Builder) writeImages(ctx context.Context, outputDir string) error {
	if b.generator == nil {
		return nil
	}
	for _, record := range b.store.GetAll(b.cfg.Collection) {
		if err := ctx.Err(); err != nil {
			return err
		}
		rendered, err := b.generator.Render(ogimage.Card{
			Title: record.Title,
			Date:  record.PublishedAt,
			Lang:  record.Lang,
		})
		if err != nil {
			return fmt.Errorf("build: preview image for %s: %w", record.ID, err)
		}
		path := filepath.Join(outputDir, record.Lang, "blog",
			filepath.FromSlash(record.Slug), "og.png")
		if err := writeFile(path, rendered); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("build: mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("build: write %s: %w", path, err)
	}
	return nil
}
