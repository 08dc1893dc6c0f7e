package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// ErrOutsideRoot reports a path that does not live under the configured
// content root.
var ErrOutsideRoot = errors.New("content: path outside content root")

// Resolved carries the identifiers derived from one source path.
type Resolved struct {
	// ID is the slash-separated path relative to the root, used verbatim as
	// the store key. It is a bijective function of the relative path.
	ID string
	// Lang is the first path segment: one top-level directory per locale.
	Lang string
	// Slug is the remaining path with the file extension stripped; it
	// excludes the locale segment and becomes the public URL fragment.
	Slug string
	// KnownLang reports whether Lang matched a configured locale. An unknown
	// locale is non-fatal; locale-specific captioning falls back to the
	// default.
	KnownLang bool
}

// Resolver derives stable record identifiers, locale tags, and public slugs
// from filesystem paths relative to a configured root.
type Resolver struct {
	root      string
	extension string
	tags      []language.Tag
	locales   []string
}

// NewResolver builds a resolver for the given root directory, source file
// extension (with leading dot), and configured locale codes. Locale codes
// that do not parse as BCP 47 tags are kept for exact string matching only.
func NewResolver(root, extension string, locales []string) *Resolver {
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		if tag, err := language.Parse(locale); err == nil {
			tags = append(tags, tag)
		}
	}
	return &Resolver{
		root:      filepath.Clean(root),
		extension: extension,
		tags:      tags,
		locales:   append([]string(nil), locales...),
	}
}

// Matches reports whether path has the resolver's source extension. The
// comparison is exact: every ingested id then ends in the configured
// extension, so consumers can reconstruct ids from slugs.
func (r *Resolver) Matches(path string) bool {
	return filepath.Ext(path) == r.extension
}

// ID derives only the store key for path. Deletions use this so no file read
// or parse is needed for an unlinked source.
func (r *Resolver) ID(path string) (string, error) {
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("content: relativize %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return rel, nil
}

// Resolve derives the record id, locale tag, and public slug for path.
func (r *Resolver) Resolve(path string) (Resolved, error) {
	id, err := r.ID(path)
	if err != nil {
		return Resolved{}, err
	}

	segments := strings.Split(id, "/")
	lang := segments[0]

	slugPath := strings.Join(segments[1:], "/")
	slugPath = strings.TrimSuffix(slugPath, filepath.Ext(slugPath))

	return Resolved{
		ID:        id,
		Lang:      lang,
		Slug:      slugPath,
		KnownLang: r.knownLocale(lang),
	}, nil
}

func (r *Resolver) knownLocale(lang string) bool {
	for _, locale := range r.locales {
		if locale == lang {
			return true
		}
	}
	// Fall back to a BCP 47 comparison so "en-US" still counts as "en".
	candidate, err := language.Parse(lang)
	if err != nil {
		return false
	}
	for _, tag := range r.tags {
		if base, _ := candidate.Base(); base.String() == mustBase(tag) {
			return true
		}
	}
	return false
}

func mustBase(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
