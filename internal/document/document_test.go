package document

import (
	"strings"
	"testing"
)

func TestParseAttributes(t *testing.T) {
	source := []byte(`---
title: Main Title
subtitle: The Subtitle
description: A post.
published_at: 2025-03-01
restricted: true
tags:
  - go
  - notes
count: 3
---

Body paragraph.
`)

	doc, err := ParseAttributes(source)
	if err != nil {
		t.Fatalf("ParseAttributes: %v", err)
	}

	if doc.Title != "Main Title" || doc.Subtitle != "The Subtitle" {
		t.Errorf("title = %q / %q", doc.Title, doc.Subtitle)
	}
	if got := doc.FullTitle(); got != "Main Title: The Subtitle" {
		t.Errorf("full title = %q", got)
	}

	cases := map[string]string{
		"description":  "A post.",
		"published_at": "2025-03-01",
		"restricted":   "true",
		"tags":         "go, notes",
		"count":        "3",
	}
	for name, want := range cases {
		got, ok := doc.Attr(name)
		if !ok {
			t.Errorf("attribute %s missing", name)
			continue
		}
		if got != want {
			t.Errorf("attribute %s = %q, want %q", name, got, want)
		}
	}

	if _, ok := doc.Attr("title"); ok {
		t.Error("title should not leak into the attribute map")
	}
	if !strings.Contains(string(doc.Body), "Body paragraph.") {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParseAttributesNoFrontmatter(t *testing.T) {
	doc, err := ParseAttributes([]byte("Just a body.\n"))
	if err != nil {
		t.Fatalf("ParseAttributes: %v", err)
	}
	if doc.Title != "" || len(doc.Attributes) != 0 {
		t.Errorf("doc = %+v", doc)
	}
	if got := doc.FullTitle(); got != "" {
		t.Errorf("full title = %q", got)
	}
}

func TestParseAttributesMalformed(t *testing.T) {
	source := []byte("---\ntitle: [unclosed\n---\nbody\n")
	if _, err := ParseAttributes(source); err == nil {
		t.Fatal("expected error for malformed attribute block")
	}
}

func TestFullTitleWithoutSubtitle(t *testing.T) {
	doc := &Document{Title: "Solo"}
	if got := doc.FullTitle(); got != "Solo" {
		t.Errorf("full title = %q", got)
	}
}

func TestRenderBasics(t *testing.T) {
	p := NewParser(ParseOptions{})
	out, err := p.Render([]byte("# Heading\n\nSome *emphasis* here.\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") {
		t.Errorf("heading missing: %s", html)
	}
	if !strings.Contains(html, "<em>emphasis</em>") {
		t.Errorf("emphasis missing: %s", html)
	}
}

func TestRenderTable(t *testing.T) {
	p := NewParser(ParseOptions{})
	out, err := p.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "<table>") {
		t.Errorf("table extension inactive: %s", out)
	}
}

func TestRenderUnsafeHTML(t *testing.T) {
	p := NewParser(ParseOptions{})
	raw := []byte("<div>inline</div>\n")

	safe, err := p.Render(raw)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(safe), "<div>inline</div>") {
		t.Error("raw HTML passed through without UnsafeHTML")
	}

	unsafe, err := p.RenderWithOptions(raw, ParseOptions{UnsafeHTML: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(unsafe), "<div>inline</div>") {
		t.Error("raw HTML dropped despite UnsafeHTML")
	}
}

func TestRenderSectionNumbers(t *testing.T) {
	p := NewParser(ParseOptions{SectionNumbers: true})
	src := []byte("## First\n\n### Nested\n\n## Second\n")
	out, err := p.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, want := range []string{"1. First", "1.1. Nested", "2. Second"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestRenderSectionAnchors(t *testing.T) {
	p := NewParser(ParseOptions{SectionAnchors: true})
	out, err := p.Render([]byte("## My Section\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), `id="my-section"`) {
		t.Errorf("anchor id missing: %s", out)
	}
}

func TestRenderFigureCaptions(t *testing.T) {
	p := NewParser(ParseOptions{FigureCaption: "Figure"})
	src := []byte("![first diagram](a.png)\n\n![second diagram](b.png)\n")
	out, err := p.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<figcaption>Figure 1: first diagram</figcaption>") {
		t.Errorf("first caption missing: %s", html)
	}
	if !strings.Contains(html, "<figcaption>Figure 2: second diagram</figcaption>") {
		t.Errorf("second caption missing: %s", html)
	}
}

func TestRenderListingCaptions(t *testing.T) {
	p := NewParser(ParseOptions{ListingCaption: "コード"})
	src := []byte("```go\nfmt.Println(\"hi\")\n```\n")
	out, err := p.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `class="language-go"`) {
		t.Errorf("language class missing: %s", html)
	}
	if !strings.Contains(html, "<figcaption>コード 1</figcaption>") {
		t.Errorf("listing caption missing: %s", html)
	}
}

func TestCaptionNumbersResetPerDocument(t *testing.T) {
	p := NewParser(ParseOptions{FigureCaption: "Figure"})
	for i := 0; i < 2; i++ {
		out, err := p.Render([]byte("![diagram](a.png)\n"))
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if !strings.Contains(string(out), "Figure 1:") {
			t.Errorf("render %d did not restart numbering: %s", i, out)
		}
	}
}

func TestRenderMath(t *testing.T) {
	p := NewParser(ParseOptions{Math: true})
	src := []byte("Inline $x_i * y_j$ and display:\n\n$$\\sum_{i=1}^n x_i$$\n")
	out, err := p.Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<span class="math inline">\(x_i * y_j\)</span>`) {
		t.Errorf("inline math missing: %s", html)
	}
	if !strings.Contains(html, `<div class="math display">`) {
		t.Errorf("display math missing: %s", html)
	}
	if strings.Contains(html, "<em>") {
		t.Errorf("markdown emphasis applied inside math: %s", html)
	}
}

func TestRenderMathDisabled(t *testing.T) {
	p := NewParser(ParseOptions{})
	out, err := p.Render([]byte("price is $5 and $10\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(out), "math inline") {
		t.Errorf("math wrapping applied while disabled: %s", out)
	}
}
