package sitedata

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	toml "github.com/pelletier/go-toml/v2"
)

var changelogDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ChangelogEntry is one released version in CHANGELOG.toml.
type ChangelogEntry struct {
	Version string   `toml:"version"`
	Date    string   `toml:"date"`
	Summary string   `toml:"summary"`
	Added   []string `toml:"added,omitempty"`
	Changed []string `toml:"changed,omitempty"`
	Fixed   []string `toml:"fixed,omitempty"`
}

// Validate checks the entry's required fields and date format.
func (e ChangelogEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Version, validation.Required),
		validation.Field(&e.Date, validation.Required,
			validation.Match(changelogDatePattern).Error("must start with YYYY-MM-DD")),
		validation.Field(&e.Summary, validation.Required),
	)
}

// Changelog is the site release history, newest first by convention of the
// source file.
type Changelog struct {
	Versions []ChangelogEntry `toml:"versions"`
}

// Validate checks every entry.
func (c Changelog) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Versions, validation.Each(validation.By(func(value any) error {
			entry, ok := value.(ChangelogEntry)
			if !ok {
				return fmt.Errorf("unexpected entry type %T", value)
			}
			return entry.Validate()
		}))),
	)
}

// LoadChangelog reads and validates the changelog document at path.
func LoadChangelog(path string) (*Changelog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sitedata: read %s: %w", path, err)
	}
	return ParseChangelog(raw, path)
}

// ParseChangelog decodes and validates raw TOML. The path is only used for
// error reporting.
func ParseChangelog(raw []byte, path string) (*Changelog, error) {
	var changelog Changelog
	decoder := toml.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&changelog); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("invalid TOML in %s", path))
	}
	if err := changelog.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("changelog validation failed for %s", path))
	}
	return &changelog, nil
}
