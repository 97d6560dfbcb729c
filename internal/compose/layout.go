package compose

import (
	"fmt"
	"strings"

	"verseline/internal/theme"
)

// Frame geometry constants. The panel hugs the text block with a narrow side
// margin; caption text wraps inside a slightly tighter column.
const (
	panelSideMargin = 40
	panelPadding    = 60
	panelTopInset   = 30
	textSideMargin  = 100
	panelOpacity    = 0.6
)

// approxGlyphWidthPct estimates average glyph width as a percentage of the
// font size for greedy word wrapping. drawtext has no native wrap.
const approxGlyphWidthPct = 55

// CaptionLine is one rendered row of caption text with its vertical slot.
type CaptionLine struct {
	Content string
	Slot    int
	Y       int
}

// Layout holds the computed caption geometry for one render.
type Layout struct {
	LineHeight      int
	TotalTextHeight int
	StartY          int
	PanelX          int
	PanelY          int
	PanelWidth      int
	PanelHeight     int
	WrapWidth       int
	Lines           []CaptionLine
}

// ComputeLayout places the poem lines vertically centered in the frame and
// sizes the shared readability panel behind them.
//
// Blank lines are dropped before any slot is assigned. Lines wider than the
// text column are word-wrapped, and each wrapped row occupies its own slot, so
// the centering math always runs over the rows that actually render.
func ComputeLayout(lines []string, th theme.Theme, width, height int) (Layout, error) {
	wrapWidth := width - textSideMargin
	maxChars := wrapWidth / (th.FontSize * approxGlyphWidthPct / 100)
	if maxChars < 1 {
		maxChars = 1
	}

	var rows []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rows = append(rows, wrapLine(trimmed, maxChars)...)
	}
	if len(rows) == 0 {
		return Layout{}, fmt.Errorf("no caption text after trimming blank lines")
	}

	lineHeight := int(float64(th.FontSize) * th.LineSpacing)
	totalHeight := len(rows) * lineHeight
	startY := (height - totalHeight) / 2

	layout := Layout{
		LineHeight:      lineHeight,
		TotalTextHeight: totalHeight,
		StartY:          startY,
		PanelX:          panelSideMargin / 2,
		PanelY:          startY - panelTopInset,
		PanelWidth:      width - panelSideMargin,
		PanelHeight:     totalHeight + panelPadding,
		WrapWidth:       wrapWidth,
		Lines:           make([]CaptionLine, 0, len(rows)),
	}
	for i, row := range rows {
		layout.Lines = append(layout.Lines, CaptionLine{
			Content: row,
			Slot:    i,
			Y:       startY + i*lineHeight,
		})
	}
	return layout, nil
}

// wrapLine splits a line into rows of at most maxChars characters, breaking on
// word boundaries. A single word longer than the budget keeps its own row.
func wrapLine(line string, maxChars int) []string {
	if len([]rune(line)) <= maxChars {
		return []string{line}
	}
	words := strings.Fields(line)
	var rows []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if len([]rune(current.String()))+1+len([]rune(word)) > maxChars {
			rows = append(rows, current.String())
			current.Reset()
			current.WriteString(word)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(word)
	}
	if current.Len() > 0 {
		rows = append(rows, current.String())
	}
	return rows
}
