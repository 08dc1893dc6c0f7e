package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
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
		Lang: "en", Description: "first",
		PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	store.Set("blog", content.Record{
		ID: "ja/posts/intro.md", Slug: "posts/intro", Title: "イントロ",
		Lang: "ja", Description: "はじめに",
		PublishedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	return store
}

func newBuilder(t *testing.T, store *content.Store, opts ...Option) *Builder {
	t.Helper()
	cfg := Config{
		SiteURL:      "https://example.org",
		Collection:   "blog",
		Locales:      []string{"ja", "en"},
		Titles:       map[string]string{"ja": "ブログ", "en": "Blog"},
		Descriptions: map[string]string{"ja": "記事", "en": "Posts"},
	}
	return New(cfg, store, opts...)
}

func TestBuildWritesCollectionAndFeeds(t *testing.T) {
	out := t.TempDir()
	builder := newBuilder(t, seedStore(t))

	if err := builder.Build(context.Background(), out); err != nil {
		t.Fatalf("Build: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(out, "data", "blog.json"))
	if err != nil {
		t.Fatalf("read collection file: %v", err)
	}
	var records []content.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("decode collection file: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d", len(records))
	}

	for _, lang := range []string{"ja", "en"} {
		raw, err := os.ReadFile(filepath.Join(out, lang, "rss.xml"))
		if err != nil {
			t.Fatalf("read %s feed: %v", lang, err)
		}
		if !strings.Contains(string(raw), "<language>"+lang+"</language>") {
			t.Errorf("%s feed missing language element", lang)
		}
	}
}

func TestBuildWritesImages(t *testing.T) {
	out := t.TempDir()
	generator, err := ogimage.NewGenerator(ogimage.Options{})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	builder := newBuilder(t, seedStore(t), WithImageGenerator(generator))

	if err := builder.Build(context.Background(), out); err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, rel := range []string{
		"en/blog/posts/intro/og.png",
		"ja/blog/posts/intro/og.png",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing image %s: %v", rel, err)
		}
	}
}

func TestBuildEmptyStore(t *testing.T) {
	out := t.TempDir()
	builder := newBuilder(t, content.NewStore())

	if err := builder.Build(context.Background(), out); err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(out, "data", "blog.json"))
	if err != nil {
		t.Fatalf("read collection file: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty collection file = %q", raw)
	}
}

func TestBuildHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	builder := newBuilder(t, seedStore(t))
	if err := builder.Build(ctx, t.TempDir()); err == nil {
		t.Fatal("expected context error")
	}
}
