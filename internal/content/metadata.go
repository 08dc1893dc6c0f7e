package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
)

// Attribute names recognised in the document attribute block.
const (
	AttrDescription = "description"
	AttrRevDate     = "revdate"
	AttrPublishedAt = "published_at"
	AttrAuthor      = "author"
	AttrTags        = "tags"
	AttrRestricted  = "restricted"
)

const missingAttributesCode = "MISSING_ATTRIBUTES"

// Metadata is the validated, typed view of a document's attribute block.
type Metadata struct {
	Description string
	PublishedAt time.Time
	UpdatedAt   time.Time
	Author      string
	Tags        []string
	TagSlugs    []string
	Restricted  bool
}

// MissingAttributesError reports every required attribute absent from a
// document, so operators see the full defect in one log line.
type MissingAttributesError struct {
	Fields []string
}

func (e *MissingAttributesError) Error() string {
	return "content: missing required attributes: " + strings.Join(e.Fields, ", ")
}

// MissingFields extracts the missing attribute names from an error chain, or
// nil when the error is unrelated.
func MissingFields(err error) []string {
	var missing *MissingAttributesError
	if !errors.As(err, &missing) {
		return nil
	}
	return missing.Fields
}

// ExtractMetadata pulls the fixed attribute set out of the parser's untyped
// mapping. Extraction is fail-closed: if any required attribute is absent the
// whole document is rejected and no partial metadata is returned.
func ExtractMetadata(attrs map[string]string) (*Metadata, error) {
	var missing []string
	require := func(name string) string {
		value := strings.TrimSpace(attrs[name])
		if value == "" {
			missing = append(missing, name)
		}
		return value
	}

	description := require(AttrDescription)
	revDate := require(AttrRevDate)
	publishedAt := require(AttrPublishedAt)
	author := require(AttrAuthor)

	if len(missing) > 0 {
		return nil, goerrors.Wrap(
			&MissingAttributesError{Fields: missing},
			goerrors.CategoryValidation,
			"document attribute validation failed",
		).WithTextCode(missingAttributesCode)
	}

	published, err := parseDate(publishedAt)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("invalid %s attribute", AttrPublishedAt))
	}
	updated, err := parseDate(revDate)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("invalid %s attribute", AttrRevDate))
	}
	if updated.Before(published) {
		return nil, goerrors.Wrap(
			fmt.Errorf("content: %s %s precedes %s %s",
				AttrRevDate, updated.Format("2006-01-02"),
				AttrPublishedAt, published.Format("2006-01-02")),
			goerrors.CategoryValidation,
			"document date validation failed",
		)
	}

	tags := splitTags(attrs[AttrTags])

	return &Metadata{
		Description: description,
		PublishedAt: published,
		UpdatedAt:   updated,
		Author:      author,
		Tags:        tags,
		TagSlugs:    slugifyTags(tags),
		Restricted:  attrs[AttrRestricted] == "true",
	}, nil
}

// splitTags turns a comma-separated attribute value into a trimmed, ordered
// sequence. An absent or empty attribute yields an empty sequence.
func splitTags(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// slugifyTags derives URL-safe slugs for tag archive pages, preserving tag
// order. Tags that cannot be normalised fall back to a lowercased form.
func slugifyTags(tags []string) []string {
	slugs := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized, err := slug.Normalize(tag)
		if err != nil || normalized == "" {
			normalized = strings.ToLower(strings.ReplaceAll(tag, " ", "-"))
		}
		slugs = append(slugs, normalized)
	}
	return slugs
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("content: unparseable date %q", value)
}
