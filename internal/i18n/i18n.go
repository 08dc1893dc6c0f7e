// Package i18n provides the UI string tables and locale negotiation for the
// rendered site. Lookups fall back to the default locale so a missing
// translation never renders an empty label.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is the locale used when a requested locale or key is unknown.
const DefaultLang = "ja"

// LanguageNames maps locale codes to their self-described display names, used
// by the language switcher.
var LanguageNames = map[string]string{
	"ja": "日本語",
	"en": "English",
}

var tables = map[string]map[string]string{
	"ja": {
		"nav.home":         "ホーム",
		"nav.publications": "研究業績",
		"nav.blog":         "ブログ",
		"nav.changelog":    "更新履歴",

		"hero.eyebrow":     "About Me",
		"hero.focus_label": "専門",
		"hero.base_label":  "拠点",

		"career.title":      "経歴",
		"career.education":  "学歴",
		"career.experience": "職歴",

		"publications.title":         "研究業績",
		"publications.show_abstract": "概要を表示",
		"publications.open_link":     "外部リンク",

		"publications.category.journal_paper":                     "Journal Papers",
		"publications.category.refereed_international_conference": "Refereed International Conferences",
		"publications.category.international_conference":          "International Conferences",
		"publications.category.domestic_workshop":                 "国内ワークショップ",

		"blog.no_posts":         "まだ記事はありません。",
		"blog.list_title":       "ブログ記事一覧",
		"blog.list_description": "個人的な記事",
		"blog.back_to_home":     "ホームに戻る",
		"blog.all_posts":        "すべての記事",
		"blog.tag_title":        "タグ: ",
		"blog.tag_description":  "タグ #{tag} に関連する記事一覧",

		"post.published_at": "初版投稿日時",
		"post.updated_at":   "最終編集日時",
		"post.author":       "著者",

		"changelog.no_entries": "更新履歴はありません。",

		"pagination.prev": "前へ",
		"pagination.next": "次へ",
		"pagination.page": "ページ",

		"404.title":       "404 - ページが見つかりません",
		"404.description": "申し訳ありませんが，お探しのページは見つかりませんでした．",
		"404.back":        "ホームに戻る",
	},
	"en": {
		"nav.home":         "Home",
		"nav.publications": "Publications",
		"nav.blog":         "Blog",
		"nav.changelog":    "Changelog",

		"hero.eyebrow":     "About Me",
		"hero.focus_label": "Focus",
		"hero.base_label":  "Base",

		"career.title":      "Career",
		"career.education":  "Education",
		"career.experience": "Experience",

		"publications.title":         "Publications",
		"publications.show_abstract": "Show abstract",
		"publications.open_link":     "Open external link",

		"publications.category.journal_paper":                     "Journal Papers",
		"publications.category.refereed_international_conference": "Refereed International Conferences",
		"publications.category.international_conference":          "International Conferences",
		"publications.category.domestic_workshop":                 "Workshops in Japan",

		"blog.no_posts":         "No posts found.",
		"blog.list_title":       "Blog Posts",
		"blog.list_description": "Personal Posts",
		"blog.back_to_home":     "Back to Home",
		"blog.all_posts":        "All Posts",
		"blog.tag_title":        "Tag: ",
		"blog.tag_description":  "Articles tagged with #{tag}",

		"post.published_at": "Published At",
		"post.updated_at":   "Updated At",
		"post.author":       "Author",

		"changelog.no_entries": "No changelog entries found.",

		"pagination.prev": "Previous",
		"pagination.next": "Next",
		"pagination.page": "Page",

		"404.title":       "404 - Page Not Found",
		"404.description": "Sorry, we couldn't find the page you're looking for.",
		"404.back":        "Go back home",
	},
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(tables)+1)
	tags = append(tags, language.MustParse(DefaultLang))
	for code := range tables {
		if code == DefaultLang {
			continue
		}
		if tag, err := language.Parse(code); err == nil {
			tags = append(tags, tag)
		}
	}
	matcher = language.NewMatcher(tags)
}

// Known reports whether lang has its own string table.
func Known(lang string) bool {
	_, ok := tables[lang]
	return ok
}

// Negotiate resolves an arbitrary language identifier (a path segment or an
// Accept-Language value) to a supported locale code. Unresolvable input maps
// to the default locale.
func Negotiate(lang string) string {
	if Known(lang) {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLang
	}
	matched, _, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLang
	}
	base, _ := matched.Base()
	if Known(base.String()) {
		return base.String()
	}
	return DefaultLang
}

// Translator looks up UI strings for one locale.
type Translator struct {
	lang string
}

// NewTranslator builds a translator for lang, negotiating unknown codes down
// to a supported locale.
func NewTranslator(lang string) Translator {
	return Translator{lang: Negotiate(lang)}
}

// Lang returns the resolved locale code.
func (t Translator) Lang() string {
	return t.lang
}

// T returns the string for key, substituting #{name} placeholders from
// params. A key missing from the locale table falls back to the default
// locale; a key missing there too returns the key itself so the defect is
// visible in the rendered page.
func (t Translator) T(key string, params map[string]string) string {
	value, ok := tables[t.lang][key]
	if !ok {
		value, ok = tables[DefaultLang][key]
	}
	if !ok {
		return key
	}
	for name, replacement := range params {
		value = strings.ReplaceAll(value, "#{"+name+"}", replacement)
	}
	return value
}

// Locales lists the supported locale codes, default first.
func Locales() []string {
	out := []string{DefaultLang}
	for code := range tables {
		if code != DefaultLang {
			out = append(out, code)
		}
	}
	return out
}
