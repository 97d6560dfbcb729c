package deps

import (
	"os"
	"path/filepath"
	"testing"

	"verseline/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestCheckBinariesUnconfiguredCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Blank", Command: "   "}})
	if results[0].Available {
		t.Fatal("blank command should not be available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", results[0].Detail)
	}
}

func TestMissingRequiredIgnoresOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: false},
		{Name: "edge-tts", Optional: true, Available: false},
		{Name: "FFprobe", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "FFmpeg" {
		t.Fatalf("missing = %v, want [FFmpeg]", missing)
	}
}

func TestRequiredReflectsNarrationConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TTS.Enabled = true
	reqs := Required(cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements with narration enabled, got %d", len(reqs))
	}

	cfg.TTS.Enabled = false
	reqs = Required(cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements with narration disabled, got %d", len(reqs))
	}
	for _, req := range reqs {
		if req.Optional {
			t.Fatalf("core media tools must not be optional: %+v", req)
		}
	}
}
