package processor

import (
	"os"

	"demoreel/internal/ports"
)

type Cleanup struct {
	cleanupLocal bool
	sp           ports.StorageProvider
}

func NewCleanup(cleanupLocal bool, sp ports.StorageProvider) *Cleanup {
	return &Cleanup{cleanupLocal: cleanupLocal, sp: sp}
}

// CleanupJob removes the job's working directory once the video lives in
// remote storage. Local storage keeps it.
func (c *Cleanup) CleanupJob(jobDir string) bool {
	if !c.shouldCleanup() {
		return false
	}
	return os.RemoveAll(jobDir) == nil
}

func (c *Cleanup) shouldCleanup() bool {
	return c.cleanupLocal && c.sp.Provider() == "gdrive"
}
