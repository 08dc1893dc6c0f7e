// Package config loads and validates the lectern.toml site configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultPath is where lectern looks for its configuration when no explicit
// path is provided.
const DefaultPath = "lectern.toml"

// Site describes the public identity of the website. Title and description
// are keyed by locale so every page and feed can be localised.
type Site struct {
	URL         string            `toml:"url"`
	Title       map[string]string `toml:"title"`
	Description map[string]string `toml:"description"`
	Copyright   string            `toml:"copyright"`
}

// Content configures document discovery.
type Content struct {
	Root          string   `toml:"root"`
	Extension     string   `toml:"extension"`
	Collection    string   `toml:"collection"`
	Locales       []string `toml:"locales"`
	DefaultLocale string   `toml:"default_locale"`
}

// Parser carries the format-level rendering constants.
type Parser struct {
	UnsafeHTML      bool              `toml:"unsafe_html"`
	HardWraps       bool              `toml:"hard_wraps"`
	SectionNumbers  bool              `toml:"section_numbers"`
	SectionAnchors  bool              `toml:"section_anchors"`
	Math            bool              `toml:"math"`
	FigureCaptions  map[string]string `toml:"figure_captions"`
	ListingCaptions map[string]string `toml:"listing_captions"`
}

// Data points at the structured CV sources.
type Data struct {
	InfoPath      string `toml:"info_path"`
	ChangelogPath string `toml:"changelog_path"`
}

// Server configures the dev HTTP server used in watch mode.
type Server struct {
	Addr string `toml:"addr"`
}

// Build configures one-shot site builds.
type Build struct {
	OutputDir string `toml:"output_dir"`
}

// Logging configures the go-logger provider.
type Logging struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	AddSource bool   `toml:"add_source"`
}

// Config is the root of lectern.toml.
type Config struct {
	Site    Site    `toml:"site"`
	Content Content `toml:"content"`
	Parser  Parser  `toml:"parser"`
	Data    Data    `toml:"data"`
	Server  Server  `toml:"server"`
	Build   Build   `toml:"build"`
	Logging Logging `toml:"logging"`
}

// Load reads the configuration file at path, applies defaults, and validates
// the result. A missing file yields defaults only when path equals
// DefaultPath; an explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		// Defaults only.
	default:
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func (c *Config) setDefaults() {
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:4321"
	}
	if c.Site.Title == nil {
		c.Site.Title = map[string]string{}
	}
	if c.Site.Description == nil {
		c.Site.Description = map[string]string{}
	}
	if c.Content.Root == "" {
		c.Content.Root = "content/blog"
	}
	if c.Content.Extension == "" {
		c.Content.Extension = ".md"
	}
	if c.Content.Collection == "" {
		c.Content.Collection = "blog"
	}
	if len(c.Content.Locales) == 0 {
		c.Content.Locales = []string{"ja", "en"}
	}
	if c.Content.DefaultLocale == "" {
		c.Content.DefaultLocale = c.Content.Locales[0]
	}
	if c.Parser.FigureCaptions == nil {
		c.Parser.FigureCaptions = map[string]string{"ja": "図", "en": "Figure"}
	}
	if c.Parser.ListingCaptions == nil {
		c.Parser.ListingCaptions = map[string]string{"ja": "コード", "en": "Code"}
	}
	if c.Data.InfoPath == "" {
		c.Data.InfoPath = "data/info.json"
	}
	if c.Data.ChangelogPath == "" {
		c.Data.ChangelogPath = "data/changelog.toml"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4321"
	}
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = "dist"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate enforces the structural invariants the pipeline depends on.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Content,
		validation.Field(&c.Content.Root, validation.Required),
		validation.Field(&c.Content.Extension, validation.Required, validation.By(validateExtension)),
		validation.Field(&c.Content.Collection, validation.Required),
		validation.Field(&c.Content.Locales, validation.Required, validation.Each(validation.By(validateLocale))),
		validation.Field(&c.Content.DefaultLocale, validation.Required),
	); err != nil {
		return fmt.Errorf("content: %w", err)
	}

	if !contains(c.Content.Locales, c.Content.DefaultLocale) {
		return fmt.Errorf("content: default locale %q not in locales", c.Content.DefaultLocale)
	}

	if err := validation.ValidateStruct(&c.Site,
		validation.Field(&c.Site.URL, validation.Required),
	); err != nil {
		return fmt.Errorf("site: %w", err)
	}

	return nil
}

func validateExtension(value any) error {
	ext, _ := value.(string)
	if !strings.HasPrefix(ext, ".") {
		return validation.NewError("config.extension", "extension must start with a dot")
	}
	return nil
}

func validateLocale(value any) error {
	locale, _ := value.(string)
	if strings.TrimSpace(locale) == "" {
		return validation.NewError("config.locale", "locale must not be empty")
	}
	if strings.ContainsAny(locale, "/\\ ") {
		return validation.NewError("config.locale", "locale must be a bare language tag")
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
