// Package document turns raw structured-text sources into an in-memory
// document model: a title, a flat attribute mapping, and a Markdown body
// rendered to HTML. It has no knowledge of the filesystem or the content
// store.
package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// TitleSeparator joins a document's main title and subtitle. It is
// locale-invariant.
const TitleSeparator = ": "

// Document is the ephemeral result of parsing one source file.
type Document struct {
	Title      string
	Subtitle   string
	Attributes map[string]string
	Body       []byte
	BodyHTML   []byte
}

// FullTitle returns "{main}: {subtitle}" when a subtitle is present,
// otherwise just the main title.
func (d *Document) FullTitle() string {
	if d.Subtitle != "" {
		return d.Title + TitleSeparator + d.Subtitle
	}
	return d.Title
}

// Attr looks up a named attribute. Absent attributes report ok=false; no
// defaults are invented here.
func (d *Document) Attr(name string) (string, bool) {
	value, ok := d.Attributes[name]
	return value, ok
}

type attributeEnvelope struct {
	Title    string         `yaml:"title"`
	Subtitle string         `yaml:"subtitle"`
	Custom   map[string]any `yaml:",inline"`
}

// ParseAttributes extracts the attribute block and the Markdown body from the
// provided source bytes. Every attribute value is normalised to a string so
// downstream extraction works over one untyped mapping.
func ParseAttributes(source []byte) (*Document, error) {
	var env attributeEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return nil, fmt.Errorf("document: parse attributes: %w", err)
	}

	attrs := make(map[string]string, len(env.Custom))
	for key, value := range env.Custom {
		attrs[key] = stringifyAttribute(value)
	}

	return &Document{
		Title:      strings.TrimSpace(env.Title),
		Subtitle:   strings.TrimSpace(env.Subtitle),
		Attributes: attrs,
		Body:       body,
	}, nil
}

// stringifyAttribute flattens YAML scalar and list values into the string
// form the extractor expects. Lists become comma-separated values.
func stringifyAttribute(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringifyAttribute(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
