// Package feed renders per-locale RSS 2.0 feeds over the content store.
// Restricted records never appear in a feed even though they are stored and
// served at their direct URLs.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"lectern/internal/content"
	"lectern/internal/identity"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Config describes one feed channel.
type Config struct {
	// SiteURL is the absolute site base, without a trailing slash.
	SiteURL string
	// Title and Description are the already-localized channel strings.
	Title       string
	Description string
	// Lang selects which records appear and fills the channel language.
	Lang string
	// Collection is the store collection the feed reads.
	Collection string
}

// Render writes the RSS document for cfg from the records in store. Items are
// the collection's non-restricted records for the feed locale, newest first.
func Render(store *content.Store, cfg Config) ([]byte, error) {
	records := store.GetAll(cfg.Collection)

	posts := make([]content.Record, 0, len(records))
	for _, record := range records {
		if record.Restricted || record.Lang != cfg.Lang {
			continue
		}
		posts = append(posts, record)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	base := strings.TrimRight(cfg.SiteURL, "/")
	items := make([]rssItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, rssItem{
			Title:       post.Title,
			Link:        PostURL(base, post.Lang, post.Slug),
			Description: post.Description,
			PubDate:     post.PublishedAt.Format(time.RFC1123Z),
			GUID: rssGUID{
				IsPermaLink: false,
				Value:       identity.RecordUUID(cfg.Collection, post.ID).String(),
			},
		})
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Title,
			Link:        base,
			Description: cfg.Description,
			Language:    cfg.Lang,
			Items:       items,
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(feed); err != nil {
		return nil, fmt.Errorf("feed: encode rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// PostURL builds the canonical URL for a post, mirroring the site's
// /:lang/blog/:slug/ layout.
func PostURL(base, lang, slug string) string {
	return fmt.Sprintf("%s/%s/blog/%s/", strings.TrimRight(base, "/"), lang, slug)
}
