// Package sitedata loads the structured site facts that live outside the
// document tree: the info.json profile and publication catalog, and the
// CHANGELOG.toml release history. Both files are validated before use so a
// malformed edit fails the build instead of rendering broken pages.
package sitedata

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed info_schema.json
var infoSchemaJSON []byte

var (
	infoSchemaOnce sync.Once
	infoSchema     *jsonschema.Schema
	infoSchemaErr  error
)

// Publication locale codes used by author name formatting.
const (
	LocaleJA = "ja"
	LocaleEN = "en"
)

// Author is a single contributor in family/given form, following the CSL
// citation data convention.
type Author struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

// Issued holds the CSL date-parts encoding: one [year, month] pair.
type Issued struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the publication year, or zero when absent.
func (i Issued) Year() int {
	if len(i.DateParts) == 0 || len(i.DateParts[0]) < 1 {
		return 0
	}
	return i.DateParts[0][0]
}

// Month returns the publication month, or zero when absent.
func (i Issued) Month() int {
	if len(i.DateParts) == 0 || len(i.DateParts[0]) < 2 {
		return 0
	}
	return i.DateParts[0][1]
}

// PublicationCustom carries free-form publication annotations.
type PublicationCustom struct {
	Award string `json:"award,omitempty"`
}

// Publication is one catalog entry as stored in info.json.
type Publication struct {
	ID                  int                `json:"id"`
	Type                string             `json:"type"`
	Locale              string             `json:"locale"`
	Title               string             `json:"title"`
	Author              []Author           `json:"author"`
	ContainerTitle      string             `json:"container-title,omitempty"`
	ContainerTitleShort string             `json:"container-title-short,omitempty"`
	EventTitle          string             `json:"event-title,omitempty"`
	Issued              Issued             `json:"issued"`
	URL                 string             `json:"URL,omitempty"`
	DOI                 string             `json:"DOI,omitempty"`
	Abstract            string             `json:"abstract"`
	Custom              *PublicationCustom `json:"custom,omitempty"`
}

// AuthorNames renders the author list in the publication's locale convention:
// Japanese entries join family and given names without a separator, everything
// else uses "Given Family".
func (p Publication) AuthorNames() []string {
	names := make([]string, 0, len(p.Author))
	for _, author := range p.Author {
		if p.Locale == LocaleJA {
			names = append(names, author.Family+author.Given)
			continue
		}
		names = append(names, author.Given+" "+author.Family)
	}
	return names
}

// ContainerName formats the venue label: full title with the short form in
// parentheses when both exist, otherwise whichever of the container or event
// titles is present.
func (p Publication) ContainerName() string {
	switch {
	case p.ContainerTitle != "" && p.ContainerTitleShort != "":
		return fmt.Sprintf("%s (%s)", p.ContainerTitle, p.ContainerTitleShort)
	case p.ContainerTitle != "":
		return p.ContainerTitle
	case p.EventTitle != "":
		return p.EventTitle
	default:
		return p.ContainerTitleShort
	}
}

// Affiliation is one education or experience row on the profile.
type Affiliation struct {
	Role        string `json:"role"`
	Affiliation string `json:"affiliation"`
	Duration    string `json:"duration"`
}

// PortfolioItem is a showcased project with per-locale descriptions.
type PortfolioItem struct {
	Title         string `json:"title"`
	Category      string `json:"category"`
	DescriptionJA string `json:"description_ja"`
	DescriptionEN string `json:"description_en"`
	URL           string `json:"url"`
}

// Social holds the profile's external account handles. Absent keys are
// omitted from rendered link lists.
type Social struct {
	Keybase string `json:"keybase,omitempty"`
	ORCID   string `json:"orcid,omitempty"`
	GitHub  string `json:"github,omitempty"`
	Bluesky string `json:"bluesky,omitempty"`
	X       string `json:"x,omitempty"`
}

// Profile is the bilingual owner profile from info.json.
type Profile struct {
	NameJA     string          `json:"name_ja"`
	NameEN     string          `json:"name_en"`
	BioJA      string          `json:"bio_ja"`
	BioEN      string          `json:"bio_en"`
	FocusJA    string          `json:"focus_ja,omitempty"`
	FocusEN    string          `json:"focus_en,omitempty"`
	BaseJA     string          `json:"base_ja,omitempty"`
	BaseEN     string          `json:"base_en,omitempty"`
	Email      string          `json:"email,omitempty"`
	Avatar     string          `json:"avatar"`
	Social     Social          `json:"social"`
	Education  []Affiliation   `json:"education"`
	Experience []Affiliation   `json:"experience"`
	Portfolio  []PortfolioItem `json:"portfolio,omitempty"`
}

// SiteInfo is the bilingual site identity block.
type SiteInfo struct {
	TitleJA       string `json:"title_ja"`
	TitleEN       string `json:"title_en"`
	DescriptionJA string `json:"description_ja"`
	DescriptionEN string `json:"description_en"`
	Copyright     string `json:"copyright"`
}

// Info is the full validated info.json document.
type Info struct {
	JournalPaper                    []Publication `json:"journal_paper"`
	RefereedInternationalConference []Publication `json:"refereed_international_conference"`
	InternationalConference         []Publication `json:"international_conference"`
	DomesticWorkshop                []Publication `json:"domestic_workshop"`
	Profile                         Profile       `json:"profile"`
	Site                            SiteInfo      `json:"site"`
}

// InfoValidationError reports every schema violation found in info.json so a
// single run surfaces the full set of defects.
type InfoValidationError struct {
	Path   string
	Issues []string
}

func (e *InfoValidationError) Error() string {
	return fmt.Sprintf("sitedata: %s failed validation: %s",
		e.Path, strings.Join(e.Issues, "; "))
}

// LoadInfo reads, schema-validates, and decodes the info document at path.
func LoadInfo(path string) (*Info, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sitedata: read %s: %w", path, err)
	}
	return ParseInfo(raw, path)
}

// ParseInfo validates raw JSON against the embedded schema and decodes it.
// The path is only used for error reporting.
func ParseInfo(raw []byte, path string) (*Info, error) {
	schema, err := compiledInfoSchema()
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("invalid JSON in %s", path))
	}

	if err := schema.Validate(payload); err != nil {
		return nil, goerrors.Wrap(
			&InfoValidationError{Path: path, Issues: schemaIssues(err)},
			goerrors.CategoryValidation,
			"site info validation failed",
		).WithTextCode("INFO_SCHEMA_VIOLATION")
	}

	var info Info
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&info); err != nil {
		return nil, fmt.Errorf("sitedata: decode %s: %w", path, err)
	}
	return &info, nil
}

func compiledInfoSchema() (*jsonschema.Schema, error) {
	infoSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("info_schema.json", bytes.NewReader(infoSchemaJSON)); err != nil {
			infoSchemaErr = err
			return
		}
		infoSchema, infoSchemaErr = compiler.Compile("info_schema.json")
	})
	if infoSchemaErr != nil {
		return nil, fmt.Errorf("sitedata: compile info schema: %w", infoSchemaErr)
	}
	return infoSchema, nil
}

// schemaIssues flattens a jsonschema validation error into leaf messages with
// their instance locations.
func schemaIssues(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	var issues []string
	var walk func(node *jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "#"
			}
			issues = append(issues, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
