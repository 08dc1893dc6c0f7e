package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lectern/internal/content"
	"lectern/internal/ogimage"
)

func seedStore(t *testing.T) *content.Store {
	t.Helper()
	store := content.NewStore()
	store.Set("blog", content.Record{
		ID: "en/posts/intro.md", Slug: "posts/intro", Title: "Intro",
		Lang: "en", Author: "Rei Tanaka", Description: "first",
		PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"go"},
		BodyHTML:    "<p>hello</p>",
	})
	store.Set("blog", content.Record{
		ID: "en/posts/secret.md", Slug: "posts/secret", Title: "Secret",
		Lang: "en", Restricted: true,
		PublishedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		BodyHTML:    "<p>hidden</p>",
	})
	return store
}

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return New(Config{
		Addr:         ":0",
		SiteURL:      "https://example.org",
		Collection:   "blog",
		Extension:    ".md",
		Locales:      []string{"ja", "en"},
		Titles:       map[string]string{"en": "Blog", "ja": "ブログ"},
		Descriptions: map[string]string{"en": "Posts", "ja": "記事"},
	}, seedStore(t), opts...)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListExcludesRestricted(t *testing.T) {
	rec := get(t, newServer(t), "/en/blog")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []listEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Slug != "posts/intro" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestPostPage(t *testing.T) {
	rec := get(t, newServer(t), "/en/blog/posts/intro")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<p>hello</p>") {
		t.Error("body html missing")
	}
	if !strings.Contains(body, "Published At: 2026-02-01") {
		t.Errorf("published label missing: %s", body)
	}
}

func TestRestrictedPostServedDirectly(t *testing.T) {
	rec := get(t, newServer(t), "/en/blog/posts/secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("restricted post should be served at its URL, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="robots" content="noindex"`) {
		t.Error("restricted post should carry a noindex hint")
	}
}

func TestPostNotFound(t *testing.T) {
	rec := get(t, newServer(t), "/en/blog/posts/absent")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFeedRoute(t *testing.T) {
	rec := get(t, newServer(t), "/en/rss.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<language>en</language>") {
		t.Error("language element missing")
	}
	if strings.Contains(body, "Secret") {
		t.Error("restricted post leaked into feed")
	}
}

func TestPreviewImageRoute(t *testing.T) {
	generator, err := ogimage.NewGenerator(ogimage.Options{})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	s := newServer(t, WithImageGenerator(generator))

	rec := get(t, s, "/en/blog/posts/intro/og.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echoHeaderContentType); !strings.HasPrefix(got, "image/png") {
		t.Errorf("content type = %q", got)
	}

	rec = get(t, s, "/en/blog/posts/absent/og.png")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post image status = %d", rec.Code)
	}
}

func TestPreviewImageDisabled(t *testing.T) {
	rec := get(t, newServer(t), "/en/blog/posts/intro/og.png")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

const echoHeaderContentType = "Content-Type"
