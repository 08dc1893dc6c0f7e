package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ParseOptions carries the format-level rendering constants. Caption labels
// are already resolved to the document's locale by the caller; empty labels
// disable the figure/listing wrappers.
type ParseOptions struct {
	UnsafeHTML     bool
	HardWraps      bool
	SectionNumbers bool
	SectionAnchors bool
	Math           bool
	FigureCaption  string
	ListingCaption string
}

// Parser renders Markdown bodies to HTML using the goldmark engine. The
// parser is stateless so callers can reuse a single instance without locking.
type Parser struct {
	defaults ParseOptions
}

// NewParser constructs a parser with the provided default options.
func NewParser(defaults ParseOptions) *Parser {
	return &Parser{defaults: defaults}
}

// Parse produces a Document from raw source bytes: attribute block extracted,
// body rendered. It is a pure function of its inputs.
func (p *Parser) Parse(source []byte) (*Document, error) {
	return p.ParseWithOptions(source, p.defaults)
}

// ParseWithOptions parses and renders using the provided options.
func (p *Parser) ParseWithOptions(source []byte, opts ParseOptions) (*Document, error) {
	doc, err := ParseAttributes(source)
	if err != nil {
		return nil, err
	}

	rendered, err := p.RenderWithOptions(doc.Body, opts)
	if err != nil {
		return nil, err
	}
	doc.BodyHTML = rendered
	return doc, nil
}

// Render converts Markdown bytes into HTML using the parser defaults.
func (p *Parser) Render(markdown []byte) ([]byte, error) {
	return p.RenderWithOptions(markdown, p.defaults)
}

// RenderWithOptions converts Markdown bytes into HTML using the provided
// options. The goldmark engine is rebuilt per invocation; the caption
// renderer keeps per-render counters, so sharing an engine across calls
// would leak numbering between documents.
func (p *Parser) RenderWithOptions(markdown []byte, opts ParseOptions) ([]byte, error) {
	source := markdown
	var math *mathProtector
	if opts.Math {
		math = newMathProtector()
		source = math.protect(source)
	}

	engine := newEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("document: render body: %w", err)
	}

	out := buf.Bytes()
	if math != nil {
		out = math.restore(out)
	}
	return out, nil
}

func newEngine(opts ParseOptions) goldmark.Markdown {
	parserOptions := []parser.Option{}
	if opts.SectionAnchors {
		parserOptions = append(parserOptions, parser.WithAutoHeadingID())
	}
	if opts.SectionNumbers {
		parserOptions = append(parserOptions,
			parser.WithASTTransformers(util.Prioritized(sectionNumberTransformer{}, 500)))
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	if opts.FigureCaption != "" || opts.ListingCaption != "" {
		rendererOptions = append(rendererOptions, renderer.WithNodeRenderers(
			util.Prioritized(newCaptionRenderer(opts.FigureCaption, opts.ListingCaption), 100)))
	}

	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

// sectionNumberTransformer prefixes h2..h6 headings with hierarchical
// numbers ("1.", "1.2.", ...). The document title is h1 and stays bare.
type sectionNumberTransformer struct{}

func (sectionNumberTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	counters := make([]int, 7)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level < 2 || heading.Level > 6 {
			return ast.WalkContinue, nil
		}

		counters[heading.Level]++
		for level := heading.Level + 1; level < len(counters); level++ {
			counters[level] = 0
		}

		parts := make([]string, 0, heading.Level-1)
		for level := 2; level <= heading.Level; level++ {
			parts = append(parts, strconv.Itoa(counters[level]))
		}
		prefix := ast.NewString([]byte(strings.Join(parts, ".") + ". "))

		if first := heading.FirstChild(); first != nil {
			heading.InsertBefore(heading, first, prefix)
		} else {
			heading.AppendChild(heading, prefix)
		}
		return ast.WalkContinue, nil
	})
}

// captionRenderer wraps images and fenced code blocks in <figure> elements
// with numbered, locale-specific captions. Counters reset per engine, which
// is rebuilt for every render.
type captionRenderer struct {
	figureLabel  string
	listingLabel string
	figures      int
	listings     int
}

func newCaptionRenderer(figureLabel, listingLabel string) *captionRenderer {
	return &captionRenderer{
		figureLabel:  figureLabel,
		listingLabel: listingLabel,
	}
}

func (r *captionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	if r.figureLabel != "" {
		reg.Register(ast.KindImage, r.renderImage)
	}
	if r.listingLabel != "" {
		reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
	}
}

func (r *captionRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	r.figures++

	alt := util.EscapeHTML(n.Text(source))

	_, _ = w.WriteString(`<figure><img src="`)
	if !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(alt)
	_, _ = w.WriteString(`">`)

	_, _ = w.WriteString(`<figcaption>`)
	_, _ = w.WriteString(r.figureLabel)
	_, _ = w.WriteString(" ")
	_, _ = w.WriteString(strconv.Itoa(r.figures))
	if len(alt) > 0 {
		_, _ = w.WriteString(": ")
		_, _ = w.Write(alt)
	}
	_, _ = w.WriteString("</figcaption></figure>")

	return ast.WalkSkipChildren, nil
}

func (r *captionRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)

	if entering {
		r.listings++
		_, _ = w.WriteString(`<figure class="listing"><pre><code`)
		if language := n.Language(source); language != nil {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(language))
			_, _ = w.WriteString(`"`)
		}
		_ = w.WriteByte('>')
		for i := 0; i < n.Lines().Len(); i++ {
			line := n.Lines().At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("</code></pre><figcaption>")
	_, _ = w.WriteString(r.listingLabel)
	_, _ = w.WriteString(" ")
	_, _ = w.WriteString(strconv.Itoa(r.listings))
	_, _ = w.WriteString("</figcaption></figure>\n")
	return ast.WalkContinue, nil
}

var (
	displayMathPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlineMathPattern  = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

// mathProtector swaps TeX spans for opaque placeholders before Markdown
// rendering so underscores and asterisks inside math survive untouched, then
// restores them as MathJax-compatible spans in the rendered HTML.
type mathProtector struct {
	spans []string
}

func newMathProtector() *mathProtector {
	return &mathProtector{}
}

func (m *mathProtector) protect(source []byte) []byte {
	out := displayMathPattern.ReplaceAllFunc(source, func(match []byte) []byte {
		tex := displayMathPattern.FindSubmatch(match)[1]
		return m.placeholder(`<div class="math display">\[` + htmlEscapeTeX(tex) + `\]</div>`)
	})
	out = inlineMathPattern.ReplaceAllFunc(out, func(match []byte) []byte {
		tex := inlineMathPattern.FindSubmatch(match)[1]
		return m.placeholder(`<span class="math inline">\(` + htmlEscapeTeX(tex) + `\)</span>`)
	})
	return out
}

func (m *mathProtector) placeholder(rendered string) []byte {
	token := fmt.Sprintf("lecternmath%dtoken", len(m.spans))
	m.spans = append(m.spans, rendered)
	return []byte(token)
}

func (m *mathProtector) restore(rendered []byte) []byte {
	for i, span := range m.spans {
		token := []byte(fmt.Sprintf("lecternmath%dtoken", i))
		rendered = bytes.Replace(rendered, token, []byte(span), 1)
	}
	return rendered
}

func htmlEscapeTeX(tex []byte) string {
	return string(util.EscapeHTML(tex))
}
