package processor

import (
	"path"
	"path/filepath"
)

// OutputKey is the storage key a finished video is published under.
func OutputKey(jobID, outputPath string) string {
	return path.Join("videos", jobID, filepath.Base(outputPath))
}

// JobDir is the per-job working directory.
func JobDir(workDir, jobID string) string {
	return filepath.Join(workDir, jobID)
}
