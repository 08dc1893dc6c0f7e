package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"lectern/internal/content"
)

func seedStore(t *testing.T) *content.Store {
	t.Helper()
	store := content.NewStore()
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}
	store.Set("blog", content.Record{
		ID: "en/posts/old.md", Slug: "posts/old", Title: "Old Post",
		Lang: "en", PublishedAt: day(1), Description: "first",
	})
	store.Set("blog", content.Record{
		ID: "en/posts/new.md", Slug: "posts/new", Title: "New Post",
		Lang: "en", PublishedAt: day(20), Description: "second",
	})
	store.Set("blog", content.Record{
		ID: "en/posts/hidden.md", Slug: "posts/hidden", Title: "Hidden",
		Lang: "en", PublishedAt: day(10), Restricted: true,
	})
	store.Set("blog", content.Record{
		ID: "ja/posts/intro.md", Slug: "posts/intro", Title: "イントロ",
		Lang: "ja", PublishedAt: day(5), Description: "はじめに",
	})
	return store
}

func render(t *testing.T, store *content.Store, lang string) rssXML {
	t.Helper()
	raw, err := Render(store, Config{
		SiteURL:     "https://example.org",
		Title:       "Example Blog",
		Description: "Example description",
		Lang:        lang,
		Collection:  "blog",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var feed rssXML
	if err := xml.Unmarshal(raw, &feed); err != nil {
		t.Fatalf("unmarshal rendered feed: %v", err)
	}
	return feed
}

func TestRenderFiltersAndSorts(t *testing.T) {
	feed := render(t, seedStore(t), "en")

	if feed.Channel.Language != "en" {
		t.Errorf("language = %q", feed.Channel.Language)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2 (restricted and other-locale excluded)", len(feed.Channel.Items))
	}
	if feed.Channel.Items[0].Title != "New Post" || feed.Channel.Items[1].Title != "Old Post" {
		t.Errorf("order = %q, %q", feed.Channel.Items[0].Title, feed.Channel.Items[1].Title)
	}
	for _, item := range feed.Channel.Items {
		if item.Title == "Hidden" {
			t.Error("restricted record leaked into feed")
		}
	}
	if got := feed.Channel.Items[0].Link; got != "https://example.org/en/blog/posts/new/" {
		t.Errorf("link = %q", got)
	}
}

func TestRenderLocaleSeparation(t *testing.T) {
	feed := render(t, seedStore(t), "ja")
	if len(feed.Channel.Items) != 1 || feed.Channel.Items[0].Title != "イントロ" {
		t.Errorf("ja items = %+v", feed.Channel.Items)
	}
}

func TestRenderStableGUIDs(t *testing.T) {
	store := seedStore(t)
	first := render(t, store, "en")
	second := render(t, store, "en")

	if first.Channel.Items[0].GUID.Value == "" {
		t.Fatal("empty guid")
	}
	if first.Channel.Items[0].GUID.Value != second.Channel.Items[0].GUID.Value {
		t.Error("guid changed between renders of the same record")
	}
	if first.Channel.Items[0].GUID.Value == first.Channel.Items[1].GUID.Value {
		t.Error("distinct records share a guid")
	}
	if first.Channel.Items[0].GUID.IsPermaLink {
		t.Error("guid should not claim to be a permalink")
	}
}

func TestRenderEmptyCollection(t *testing.T) {
	raw, err := Render(content.NewStore(), Config{
		SiteURL: "https://example.org", Title: "t", Description: "d",
		Lang: "en", Collection: "blog",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(raw), "<channel>") {
		t.Error("expected a channel element even with no items")
	}
}
