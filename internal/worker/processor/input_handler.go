package processor

import (
	"os"
	"path/filepath"
	"strings"

	"demoreel/internal/jobs"
	"demoreel/internal/pkg/errors"
)

// MaterializeNarration writes the stored narration text into dir and returns
// its path.
func MaterializeNarration(dir, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.ValidationField("narration_text", "is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "processor.narration", "create job directory")
	}
	p := filepath.Join(dir, jobs.NarrationFileName)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return "", errors.Wrap(err, "processor.narration", "write narration")
	}
	return p, nil
}
