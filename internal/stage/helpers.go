package stage

import (
	"os"
	"path/filepath"
	"strings"

	"verseline/internal/poetry"
	"verseline/internal/services"
)

// ParsePoem parses the poem JSON stored on a queue item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParsePoem(raw string) (poetry.Poem, error) {
	poem, err := poetry.Decode(raw)
	if err != nil {
		return poetry.Poem{}, services.Wrap(
			services.ErrValidation, "stage", "parse poem",
			"Poem payload missing or invalid; rerun the fetch stage", err)
	}
	return poem, nil
}

// CleanupStaging removes the per-item staging directory stagingDir/<videoID>,
// which holds the staged background, narration, and render scratch for one
// item. Pool directories keep their own files outside the staging root, so
// nothing shared is ever under this path. A blank component is a no-op so a
// misconfigured path cannot widen the removal to the staging root itself.
func CleanupStaging(stagingDir, videoID string) error {
	stagingDir = strings.TrimSpace(stagingDir)
	videoID = strings.TrimSpace(videoID)
	if stagingDir == "" || videoID == "" {
		return nil
	}
	return os.RemoveAll(filepath.Join(stagingDir, videoID))
}
