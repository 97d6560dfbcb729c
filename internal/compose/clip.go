package compose

import (
	"fmt"
	"sort"
)

// Clip references a media file on disk together with its probed duration in
// seconds. Clips are read-only inputs; trimming, looping, and gain are applied
// by the plan, never to the file itself.
type Clip struct {
	Path     string
	Duration float64
}

// Usable reports whether the clip can contribute to a render.
func (c *Clip) Usable() bool {
	return c != nil && c.Path != "" && c.Duration > 0
}

// ElementKind identifies what a timeline element contributes to the frame.
type ElementKind string

const (
	ElementBackground ElementKind = "background"
	ElementOverlay    ElementKind = "overlay"
	ElementPanel      ElementKind = "panel"
	ElementCaption    ElementKind = "caption"
	ElementAudio      ElementKind = "audio"
)

// Element is one entry on the shared timeline. Start and Duration are seconds
// from t=0 of the render.
type Element struct {
	Kind     ElementKind
	Label    string
	Start    float64
	Duration float64
}

// End returns the element's final instant on the timeline.
func (e Element) End() float64 {
	return e.Start + e.Duration
}

// Timeline is the ordered set of elements for one render, all sharing a single
// time axis of Total seconds. Total is fixed by the duration resolver and is
// never renegotiated once planning starts.
type Timeline struct {
	Total    float64
	Elements []Element
}

// Validate checks that every element fits inside the timeline.
func (t Timeline) Validate() error {
	if t.Total <= 0 {
		return fmt.Errorf("timeline total duration must be positive, got %.3f", t.Total)
	}
	for _, el := range t.Elements {
		if el.Start < 0 {
			return fmt.Errorf("%s %q starts before t=0 (%.3f)", el.Kind, el.Label, el.Start)
		}
		if el.Duration < 0 {
			return fmt.Errorf("%s %q has negative duration (%.3f)", el.Kind, el.Label, el.Duration)
		}
		if el.End() > t.Total+timingEpsilon {
			return fmt.Errorf("%s %q ends at %.3f, past timeline total %.3f", el.Kind, el.Label, el.End(), t.Total)
		}
	}
	return nil
}

// Captions returns the caption elements sorted by start time.
func (t Timeline) Captions() []Element {
	captions := make([]Element, 0, len(t.Elements))
	for _, el := range t.Elements {
		if el.Kind == ElementCaption {
			captions = append(captions, el)
		}
	}
	sort.SliceStable(captions, func(i, j int) bool { return captions[i].Start < captions[j].Start })
	return captions
}

// timingEpsilon absorbs float rounding when comparing element bounds.
const timingEpsilon = 1e-6
