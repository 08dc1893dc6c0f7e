package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"lectern/internal/build"
	"lectern/internal/config"
	"lectern/internal/content"
	"lectern/internal/document"
	"lectern/internal/loader"
	"lectern/internal/logging"
	"lectern/internal/ogimage"
	"lectern/internal/sitedata"
)

// app holds the wired components shared by the build and serve commands.
type app struct {
	cfg       *config.Config
	provider  logging.Provider
	logger    logging.Logger
	store     *content.Store
	engine    *loader.Engine
	builder   *build.Builder
	generator *ogimage.Generator
	info      *sitedata.Info
	changelog *sitedata.Changelog
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	provider, err := logging.NewGoLoggerProvider(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, err
	}
	logger := logging.ModuleLogger(provider, "lectern.app")

	store := content.NewStore()
	engine, err := loader.NewEngine(loader.Config{
		Root:          cfg.Content.Root,
		Extension:     cfg.Content.Extension,
		Collection:    cfg.Content.Collection,
		Locales:       cfg.Content.Locales,
		DefaultLocale: cfg.Content.DefaultLocale,
		Parser: document.ParseOptions{
			UnsafeHTML:     cfg.Parser.UnsafeHTML,
			HardWraps:      cfg.Parser.HardWraps,
			SectionNumbers: cfg.Parser.SectionNumbers,
			SectionAnchors: cfg.Parser.SectionAnchors,
			Math:           cfg.Parser.Math,
		},
		FigureCaptions:  cfg.Parser.FigureCaptions,
		ListingCaptions: cfg.Parser.ListingCaptions,
	}, store, logging.ModuleLogger(provider, "lectern.loader"))
	if err != nil {
		return nil, err
	}

	generator, err := ogimage.NewGenerator(ogimage.Options{})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		provider:  provider,
		logger:    logger,
		store:     store,
		engine:    engine,
		generator: generator,
	}
	if err := a.loadSiteData(); err != nil {
		return nil, err
	}

	buildOpts := []build.Option{
		build.WithImageGenerator(generator),
		build.WithLogger(logging.ModuleLogger(provider, "lectern.build")),
	}
	if a.info != nil {
		buildOpts = append(buildOpts, build.WithSiteData(a.info, a.changelog))
	}
	a.builder = build.New(build.Config{
		SiteURL:      cfg.Site.URL,
		Collection:   cfg.Content.Collection,
		Locales:      cfg.Content.Locales,
		Titles:       cfg.Site.Title,
		Descriptions: cfg.Site.Description,
	}, store, buildOpts...)

	return a, nil
}

// loadSiteData reads info.json and the changelog when present. Missing files
// only disable the CV features; invalid files fail startup.
func (a *app) loadSiteData() error {
	info, err := sitedata.LoadInfo(a.cfg.Data.InfoPath)
	switch {
	case err == nil:
		a.info = info
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Warn("sitedata.info_missing", "path", a.cfg.Data.InfoPath)
	default:
		return err
	}

	changelog, err := sitedata.LoadChangelog(a.cfg.Data.ChangelogPath)
	switch {
	case err == nil:
		a.changelog = changelog
	case errors.Is(err, fs.ErrNotExist):
		a.logger.Warn("sitedata.changelog_missing", "path", a.cfg.Data.ChangelogPath)
	default:
		return err
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}
