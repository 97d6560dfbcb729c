// Package poetry curates the poem catalog and prepares caption text.
//
// Poems come from a built-in public-domain collection keyed by theme
// keywords. Custom text supplied through the API is split into lines and
// sanitized here so the composition engine only ever sees normalized input.
package poetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Poem is a short excerpt rendered as animated captions.
type Poem struct {
	Title  string   `json:"title,omitempty"`
	Author string   `json:"author,omitempty"`
	Lines  []string `json:"lines"`
	Themes []string `json:"themes,omitempty"`
}

// Decode parses the JSON form persisted on queue items.
func Decode(raw string) (Poem, error) {
	var poem Poem
	if strings.TrimSpace(raw) == "" {
		return Poem{}, errors.New("poem payload is empty")
	}
	if err := json.Unmarshal([]byte(raw), &poem); err != nil {
		return Poem{}, fmt.Errorf("decode poem: %w", err)
	}
	poem.Lines = NormalizeLines(poem.Lines)
	if len(poem.Lines) == 0 {
		return Poem{}, errors.New("poem has no usable lines")
	}
	return poem, nil
}

// Encode serializes a poem for queue storage.
func Encode(poem Poem) (string, error) {
	data, err := json.Marshal(poem)
	if err != nil {
		return "", fmt.Errorf("encode poem: %w", err)
	}
	return string(data), nil
}

// NormalizeLines applies NFC normalization, trims whitespace, collapses
// internal runs of spaces, and drops blank lines.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		normalized := norm.NFC.String(line)
		normalized = strings.Join(strings.Fields(normalized), " ")
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	return out
}

// SplitCustom turns free-form text into caption lines, truncating to maxLines.
// maxLines <= 0 keeps every line.
func SplitCustom(text string, maxLines int) []string {
	lines := NormalizeLines(strings.Split(text, "\n"))
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// SpeechText flattens a poem's lines into narration input, joining lines with
// sentence pauses so synthesized speech breathes between lines.
func SpeechText(lines []string) string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.ContainsAny(line[len(line)-1:], ".,;:!?") {
			line += "."
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, " ")
}
