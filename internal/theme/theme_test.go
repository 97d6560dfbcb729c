package theme_test

import (
	"testing"

	"verseline/internal/theme"
)

func TestRegistryContainsExpectedThemes(t *testing.T) {
	want := []string{"forest", "minimal", "nature", "ocean", "sunset"}
	got := theme.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d themes, got %v", len(want), got)
	}
	for i, key := range want {
		if got[i] != key {
			t.Fatalf("expected key %q at position %d, got %q", key, i, got[i])
		}
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	upper, ok := theme.Get(" OCEAN ")
	if !ok {
		t.Fatal("expected ocean theme to resolve")
	}
	if upper.Key != "ocean" {
		t.Fatalf("unexpected key: %q", upper.Key)
	}
	if upper.DefaultAnimation != theme.AnimationSlideUp {
		t.Fatalf("unexpected default animation: %q", upper.DefaultAnimation)
	}
	if _, ok := theme.Get("vaporwave"); ok {
		t.Fatal("expected unknown theme to miss")
	}
}

func TestDefaultThemePalette(t *testing.T) {
	def := theme.Default()
	if def.Key != theme.DefaultKey {
		t.Fatalf("unexpected default theme: %q", def.Key)
	}
	if def.Palette.Accent.Hex() != "0x8FBC8F" {
		t.Fatalf("unexpected accent hex: %q", def.Palette.Accent.Hex())
	}
	if def.Palette.BackgroundOverlay.Alpha != 0.3 {
		t.Fatalf("unexpected overlay alpha: %v", def.Palette.BackgroundOverlay.Alpha)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		input   string
		wantHex string
		alpha   float64
		wantErr bool
	}{
		{input: "#2d5016", wantHex: "0x2D5016", alpha: 1},
		{input: "rgba(0, 0, 0, 0.25)", wantHex: "0x000000", alpha: 0.25},
		{input: "rgba(255, 255, 255, 0.1)", wantHex: "0xFFFFFF", alpha: 0.1},
		{input: "#xyz", wantErr: true},
		{input: "rgba(300, 0, 0, 0.5)", wantErr: true},
		{input: "rgba(0, 0, 0, 1.5)", wantErr: true},
		{input: "blue", wantErr: true},
	}
	for _, tc := range cases {
		color, err := theme.ParseColor(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", tc.input, err)
		}
		if color.Hex() != tc.wantHex {
			t.Fatalf("ParseColor(%q) hex = %q, want %q", tc.input, color.Hex(), tc.wantHex)
		}
		if color.Alpha != tc.alpha {
			t.Fatalf("ParseColor(%q) alpha = %v, want %v", tc.input, color.Alpha, tc.alpha)
		}
	}
}

func TestColorFFmpegNotation(t *testing.T) {
	opaque, err := theme.ParseColor("#8fbc8f")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	if opaque.FFmpeg() != "0x8FBC8F" {
		t.Fatalf("unexpected opaque notation: %q", opaque.FFmpeg())
	}

	translucent, err := theme.ParseColor("rgba(0, 0, 0, 0.3)")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	if translucent.FFmpeg() != "0x000000@0.3" {
		t.Fatalf("unexpected translucent notation: %q", translucent.FFmpeg())
	}
}

func TestParseAnimationMode(t *testing.T) {
	if mode, ok := theme.ParseAnimationMode(" Typewriter "); !ok || mode != theme.AnimationTypewriter {
		t.Fatalf("expected typewriter, got %q ok=%v", mode, ok)
	}
	if _, ok := theme.ParseAnimationMode("spin"); ok {
		t.Fatal("expected unknown mode to be rejected")
	}
	modes := theme.AnimationModes()
	if len(modes) != 5 {
		t.Fatalf("expected 5 animation modes, got %v", modes)
	}
}
