// Package ogimage renders social preview cards for posts as 1200x630 PNGs.
// A card is a pure function of the post title, date, and locale, so rendered
// images are byte-stable across builds.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// Standard Open Graph card dimensions.
	Width  = 1200
	Height = 630

	cardInset    = 60
	cardPadding  = 40
	borderWidth  = 4
	titleSize    = 48
	dateSize     = 24
	maxTitleRows = 3
)

var (
	backgroundColor = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	cardColor       = color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff}
	borderColor     = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	titleColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	dateColor       = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
)

// Card is the input for one preview image.
type Card struct {
	Title string
	Date  time.Time
	Lang  string
}

// Options configures the generator.
type Options struct {
	// FontData is an optional TTF or OTF font. When empty the embedded Go
	// Bold face is used; supply a CJK-capable font for Japanese titles.
	FontData []byte
}

// Generator renders cards with a fixed pair of font faces.
type Generator struct {
	titleFace font.Face
	dateFace  font.Face
}

// NewGenerator parses the configured font and prepares the title and date
// faces.
func NewGenerator(opts Options) (*Generator, error) {
	data := opts.FontData
	if len(data) == 0 {
		data = gobold.TTF
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ogimage: parse font: %w", err)
	}

	titleFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: titleSize, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("ogimage: title face: %w", err)
	}
	dateFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: dateSize, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("ogimage: date face: %w", err)
	}

	return &Generator{titleFace: titleFace, dateFace: dateFace}, nil
}

// Render draws the card and returns the encoded PNG.
func (g *Generator) Render(card Card) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	fill(img, img.Bounds(), backgroundColor)

	border := image.Rect(cardInset, cardInset, Width-cardInset, Height-cardInset)
	fill(img, border, borderColor)
	fill(img, border.Inset(borderWidth), cardColor)

	textLeft := cardInset + borderWidth + cardPadding
	textRight := Width - textLeft
	baseline := cardInset + borderWidth + cardPadding + dateSize

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(dateColor),
		Face: g.dateFace,
		Dot:  fixed.P(textLeft, baseline),
	}
	drawer.DrawString(formatDate(card.Date, card.Lang))

	lines := g.wrapTitle(card.Title, textRight-textLeft)
	baseline += dateSize + titleSize
	for _, line := range lines {
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(titleColor),
			Face: g.titleFace,
			Dot:  fixed.P(textLeft, baseline),
		}
		drawer.DrawString(line)
		baseline += titleSize * 6 / 5
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ogimage: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapTitle breaks the title into at most maxTitleRows lines that fit the
// given pixel width, appending an ellipsis when text is cut.
func (g *Generator) wrapTitle(title string, width int) []string {
	limit := fixed.I(width)
	measure := &font.Drawer{Face: g.titleFace}

	var lines []string
	var current []rune
	runes := []rune(title)
	for i := 0; i < len(runes); i++ {
		current = append(current, runes[i])
		if measure.MeasureString(string(current)) <= limit {
			continue
		}

		// The last rune overflows; close the line before it.
		line := current[:len(current)-1]
		if len(lines) == maxTitleRows-1 {
			return append(lines, ellipsize(line))
		}
		lines = append(lines, string(trimLine(line)))
		current = []rune{runes[i]}
	}
	if len(current) > 0 {
		lines = append(lines, string(trimLine(current)))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func trimLine(line []rune) []rune {
	for len(line) > 0 && line[len(line)-1] == ' ' {
		line = line[:len(line)-1]
	}
	for len(line) > 0 && line[0] == ' ' {
		line = line[1:]
	}
	return line
}

func ellipsize(line []rune) string {
	line = trimLine(line)
	if len(line) > 1 {
		line = line[:len(line)-1]
	}
	return string(line) + "…"
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func formatDate(t time.Time, lang string) string {
	if lang == "ja" {
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	}
	return t.Format("January 2, 2006")
}
