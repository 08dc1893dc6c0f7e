package ogimage

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Options{})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestRenderDimensions(t *testing.T) {
	g := newGenerator(t)
	raw, err := g.Render(Card{
		Title: "Adaptive Scheduling for Edge Workloads",
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lang:  "en",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != Width || bounds.Dy() != Height {
		t.Errorf("dimensions = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), Width, Height)
	}
}

func TestRenderDeterministic(t *testing.T) {
	g := newGenerator(t)
	card := Card{
		Title: "Determinism",
		Date:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Lang:  "en",
	}
	first, err := g.Render(card)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := g.Render(card)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("renders of the same card differ")
	}
}

func TestRenderLongTitle(t *testing.T) {
	g := newGenerator(t)
	long := "A very long title that should be wrapped over multiple lines and " +
		"eventually truncated with an ellipsis because it cannot possibly fit " +
		"inside three rows of the preview card at the configured font size"
	raw, err := g.Render(Card{Title: long, Date: time.Now(), Lang: "en"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestRenderEmptyTitle(t *testing.T) {
	g := newGenerator(t)
	if _, err := g.Render(Card{Lang: "ja"}); err != nil {
		t.Fatalf("Render empty: %v", err)
	}
}

func TestWrapTitle(t *testing.T) {
	g := newGenerator(t)
	lines := g.wrapTitle("short", 1000)
	if len(lines) != 1 || lines[0] != "short" {
		t.Errorf("lines = %v", lines)
	}

	lines = g.wrapTitle("aaaa bbbb cccc dddd eeee ffff gggg hhhh iiii jjjj", 200)
	if len(lines) != maxTitleRows {
		t.Errorf("expected %d rows, got %d: %v", maxTitleRows, len(lines), lines)
	}
	last := []rune(lines[len(lines)-1])
	if last[len(last)-1] != '…' {
		t.Errorf("expected ellipsis, got %q", lines[len(lines)-1])
	}
}

func TestRejectsInvalidFont(t *testing.T) {
	if _, err := NewGenerator(Options{FontData: []byte("not a font")}); err == nil {
		t.Fatal("expected parse error for invalid font data")
	}
}
