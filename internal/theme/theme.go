// Package theme defines the visual presets a video can be rendered with.
//
// Each theme carries the color palette, typography, background search
// keywords, and default caption animation used by the composition engine.
// Themes are validated once at package init so downstream code can treat the
// registry as always well formed.
package theme

import (
	"fmt"
	"sort"
	"strings"
)

// AnimationMode selects how caption lines appear over the video.
type AnimationMode string

const (
	AnimationPlainFade  AnimationMode = "plain-fade"
	AnimationTypewriter AnimationMode = "typewriter"
	AnimationSlideUp    AnimationMode = "slide-up"
	AnimationWordReveal AnimationMode = "word-reveal"
	AnimationGentleZoom AnimationMode = "gentle-zoom"
)

var animationModes = map[AnimationMode]struct{}{
	AnimationPlainFade:  {},
	AnimationTypewriter: {},
	AnimationSlideUp:    {},
	AnimationWordReveal: {},
	AnimationGentleZoom: {},
}

// ParseAnimationMode converts a string into a known AnimationMode.
func ParseAnimationMode(value string) (AnimationMode, bool) {
	normalized := AnimationMode(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := animationModes[normalized]
	return normalized, ok
}

// AnimationModes returns the sorted list of known animation modes.
func AnimationModes() []AnimationMode {
	modes := make([]AnimationMode, 0, len(animationModes))
	for mode := range animationModes {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// Palette groups the colors a theme renders with.
type Palette struct {
	Primary           Color
	Secondary         Color
	Accent            Color
	BackgroundOverlay Color
}

// Theme bundles the presentation settings for one visual preset.
type Theme struct {
	Key                string
	Name               string
	Description        string
	BackgroundKeywords []string
	Palette            Palette
	FontFamily         string
	FontSize           int
	LineSpacing        float64
	DefaultAnimation   AnimationMode
	PoetryThemes       []string
}

type themeSpec struct {
	key                string
	name               string
	description        string
	backgroundKeywords []string
	primary            string
	secondary          string
	accent             string
	backgroundOverlay  string
	fontFamily         string
	fontSize           int
	lineSpacing        float64
	defaultAnimation   AnimationMode
	poetryThemes       []string
}

var specs = []themeSpec{
	{
		key:                "nature",
		name:               "Nature",
		description:        "Peaceful nature scenes with organic themes",
		backgroundKeywords: []string{"forest", "trees", "grass", "leaves", "nature", "green"},
		primary:            "#2d5016",
		secondary:          "#ffffff",
		accent:             "#8fbc8f",
		backgroundOverlay:  "rgba(0, 0, 0, 0.3)",
		fontFamily:         "serif",
		fontSize:           48,
		lineSpacing:        1.4,
		defaultAnimation:   AnimationPlainFade,
		poetryThemes:       []string{"nature", "growth", "seasons", "trees", "earth"},
	},
	{
		key:                "ocean",
		name:               "Ocean",
		description:        "Calming ocean and water scenes",
		backgroundKeywords: []string{"ocean", "waves", "water", "beach", "sea", "blue"},
		primary:            "#1e3a8a",
		secondary:          "#ffffff",
		accent:             "#60a5fa",
		backgroundOverlay:  "rgba(0, 0, 0, 0.25)",
		fontFamily:         "sans-serif",
		fontSize:           46,
		lineSpacing:        1.3,
		defaultAnimation:   AnimationSlideUp,
		poetryThemes:       []string{"ocean", "water", "flow", "peace", "depth"},
	},
	{
		key:                "sunset",
		name:               "Sunset",
		description:        "Golden hour and sunset scenes",
		backgroundKeywords: []string{"sunset", "golden hour", "sky", "warm light", "horizon"},
		primary:            "#92400e",
		secondary:          "#fef3c7",
		accent:             "#f59e0b",
		backgroundOverlay:  "rgba(0, 0, 0, 0.2)",
		fontFamily:         "serif",
		fontSize:           50,
		lineSpacing:        1.5,
		defaultAnimation:   AnimationGentleZoom,
		poetryThemes:       []string{"light", "time", "beauty", "reflection", "golden"},
	},
	{
		key:                "minimal",
		name:               "Minimal",
		description:        "Clean, minimal aesthetic",
		backgroundKeywords: []string{"minimal", "clean", "simple", "geometric", "abstract"},
		primary:            "#1f2937",
		secondary:          "#ffffff",
		accent:             "#6b7280",
		backgroundOverlay:  "rgba(255, 255, 255, 0.1)",
		fontFamily:         "sans-serif",
		fontSize:           44,
		lineSpacing:        1.6,
		defaultAnimation:   AnimationTypewriter,
		poetryThemes:       []string{"simplicity", "clarity", "essence", "truth", "moment"},
	},
	{
		key:                "forest",
		name:               "Forest",
		description:        "Deep forest and woodland scenes",
		backgroundKeywords: []string{"forest", "woods", "trees", "shadows", "green", "natural"},
		primary:            "#14532d",
		secondary:          "#ecfdf5",
		accent:             "#22c55e",
		backgroundOverlay:  "rgba(0, 0, 0, 0.4)",
		fontFamily:         "serif",
		fontSize:           47,
		lineSpacing:        1.4,
		defaultAnimation:   AnimationWordReveal,
		poetryThemes:       []string{"forest", "mystery", "growth", "ancient", "wisdom"},
	},
}

var registry = func() map[string]Theme {
	themes := make(map[string]Theme, len(specs))
	for _, spec := range specs {
		t, err := spec.build()
		if err != nil {
			panic(fmt.Sprintf("theme %q: %v", spec.key, err))
		}
		themes[spec.key] = t
	}
	return themes
}()

func (s themeSpec) build() (Theme, error) {
	palette := Palette{}
	for _, entry := range []struct {
		name  string
		value string
		dst   *Color
	}{
		{"primary", s.primary, &palette.Primary},
		{"secondary", s.secondary, &palette.Secondary},
		{"accent", s.accent, &palette.Accent},
		{"background_overlay", s.backgroundOverlay, &palette.BackgroundOverlay},
	} {
		color, err := ParseColor(entry.value)
		if err != nil {
			return Theme{}, fmt.Errorf("%s: %w", entry.name, err)
		}
		*entry.dst = color
	}
	if s.fontSize <= 0 {
		return Theme{}, fmt.Errorf("font size must be positive")
	}
	if s.lineSpacing <= 0 {
		return Theme{}, fmt.Errorf("line spacing must be positive")
	}
	if _, ok := animationModes[s.defaultAnimation]; !ok {
		return Theme{}, fmt.Errorf("unknown animation mode %q", s.defaultAnimation)
	}
	return Theme{
		Key:                s.key,
		Name:               s.name,
		Description:        s.description,
		BackgroundKeywords: s.backgroundKeywords,
		Palette:            palette,
		FontFamily:         s.fontFamily,
		FontSize:           s.fontSize,
		LineSpacing:        s.lineSpacing,
		DefaultAnimation:   s.defaultAnimation,
		PoetryThemes:       s.poetryThemes,
	}, nil
}

// DefaultKey is used when a request does not name a theme.
const DefaultKey = "nature"

// Get looks up a theme by key (case-insensitive).
func Get(key string) (Theme, bool) {
	t, ok := registry[strings.ToLower(strings.TrimSpace(key))]
	return t, ok
}

// Default returns the fallback theme.
func Default() Theme {
	return registry[DefaultKey]
}

// Keys returns the sorted list of registered theme keys.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns the registered themes ordered by key.
func All() []Theme {
	themes := make([]Theme, 0, len(registry))
	for _, key := range Keys() {
		themes = append(themes, registry[key])
	}
	return themes
}
