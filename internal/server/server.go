// Package server exposes the content store over HTTP for local preview: post
// pages, collection listings, per-locale feeds, and preview images.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lectern/internal/content"
	"lectern/internal/feed"
	"lectern/internal/i18n"
	"lectern/internal/logging"
	"lectern/internal/ogimage"
	"lectern/internal/sitedata"
)

// Config carries the server settings and site constants.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// SiteURL is the absolute site base used in feed links.
	SiteURL string
	// Collection is the store collection served.
	Collection string
	// Extension is the source file extension used to reconstruct record ids
	// from request paths.
	Extension string
	// Locales lists the served locale codes.
	Locales []string
	// Titles and Descriptions hold the per-locale channel strings.
	Titles       map[string]string
	Descriptions map[string]string
}

// Server is the preview HTTP server over one content store.
type Server struct {
	cfg       Config
	echo      *echo.Echo
	store     *content.Store
	generator *ogimage.Generator
	info      *sitedata.Info
	changelog *sitedata.Changelog
	logger    logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithImageGenerator enables the preview image route.
func WithImageGenerator(generator *ogimage.Generator) Option {
	return func(s *Server) {
		s.generator = generator
	}
}

// WithSiteData enables the localized site data route.
func WithSiteData(info *sitedata.Info, changelog *sitedata.Changelog) Option {
	return func(s *Server) {
		s.info = info
		s.changelog = changelog
	}
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs the server and registers its routes.
func New(cfg Config, store *content.Store, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		echo:   echo.New(),
		store:  store,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger)

	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/:lang/rss.xml", s.handleFeed)
	s.echo.GET("/:lang/blog", s.handleList)
	s.echo.GET("/:lang/blog/*", s.handlePostTree)
	s.echo.GET("/api/site/:lang", s.handleSiteData)

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()
	s.logger.Info("server.start", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Echo exposes the underlying router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		s.logger.Debug("server.request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.store.Len(s.cfg.Collection),
	})
}

func (s *Server) handleFeed(c echo.Context) error {
	lang := c.Param("lang")
	rendered, err := feed.Render(s.store, feed.Config{
		SiteURL:     s.cfg.SiteURL,
		Title:       s.cfg.Titles[lang],
		Description: s.cfg.Descriptions[lang],
		Lang:        lang,
		Collection:  s.cfg.Collection,
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", rendered)
}

// listEntry is the JSON shape of one row in the collection listing.
type listEntry struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
}

func (s *Server) handleList(c echo.Context) error {
	lang := c.Param("lang")

	entries := []listEntry{}
	for _, record := range s.store.GetAll(s.cfg.Collection) {
		if record.Restricted || record.Lang != lang {
			continue
		}
		entries = append(entries, listEntry{
			Slug:        record.Slug,
			Title:       record.Title,
			Description: record.Description,
			PublishedAt: record.PublishedAt,
			UpdatedAt:   record.UpdatedAt,
			Tags:        record.Tags,
			URL:         "/" + lang + "/blog/" + record.Slug + "/",
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.After(entries[j].PublishedAt)
	})
	return c.JSON(http.StatusOK, entries)
}

// handlePostTree serves both the post page and its preview image, which live
// under the same wildcard.
func (s *Server) handlePostTree(c echo.Context) error {
	lang := c.Param("lang")
	rest := strings.Trim(c.Param("*"), "/")

	if strings.HasSuffix(rest, "/og.png") {
		return s.servePreviewImage(c, lang, strings.TrimSuffix(rest, "/og.png"))
	}
	return s.servePost(c, lang, rest)
}

func (s *Server) record(lang, slug string) (content.Record, bool) {
	id := lang + "/" + slug + s.cfg.Extension
	return s.store.GetByID(s.cfg.Collection, id)
}

func (s *Server) servePost(c echo.Context, lang, slug string) error {
	record, ok := s.record(lang, slug)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	translator := i18n.NewTranslator(lang)
	page := postPage{
		Record:      record,
		Body:        template.HTML(record.BodyHTML),
		PublishedAt: record.PublishedAt.Format("2006-01-02"),
		UpdatedAt:   record.UpdatedAt.Format("2006-01-02"),
		Labels: postLabels{
			PublishedAt: translator.T("post.published_at", nil),
			UpdatedAt:   translator.T("post.updated_at", nil),
			Author:      translator.T("post.author", nil),
		},
	}

	var buf strings.Builder
	if err := postTemplate.Execute(&buf, page); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, buf.String())
}

func (s *Server) servePreviewImage(c echo.Context, lang, slug string) error {
	if s.generator == nil {
		return echo.NewHTTPError(http.StatusNotFound, "preview images disabled")
	}
	record, ok := s.record(lang, slug)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	rendered, err := s.generator.Render(ogimage.Card{
		Title: record.Title,
		Date:  record.PublishedAt,
		Lang:  record.Lang,
	})
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", rendered)
}

func (s *Server) handleSiteData(c echo.Context) error {
	if s.info == nil {
		return echo.NewHTTPError(http.StatusNotFound, "site data not loaded")
	}
	lang := i18n.Negotiate(c.Param("lang"))
	return c.JSON(http.StatusOK, sitedata.Localize(s.info, s.changelog, lang))
}

type postLabels struct {
	PublishedAt string
	UpdatedAt   string
	Author      string
}

type postPage struct {
	Record      content.Record
	Body        template.HTML
	PublishedAt string
	UpdatedAt   string
	Labels      postLabels
}

var postTemplate = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="{{.Record.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Record.Title}}</title>
<meta name="description" content="{{.Record.Description}}">
{{- if .Record.Restricted}}
<meta name="robots" content="noindex">
{{- end}}
</head>
<body>
<article>
<h1>{{.Record.Title}}</h1>
<p>
<span>{{.Labels.PublishedAt}}: {{.PublishedAt}}</span>
<span>{{.Labels.UpdatedAt}}: {{.UpdatedAt}}</span>
<span>{{.Labels.Author}}: {{.Record.Author}}</span>
</p>
{{.Body}}
</article>
</body>
</html>
`))
