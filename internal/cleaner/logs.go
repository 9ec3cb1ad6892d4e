package cleaner

import (
	"context"
	"time"

	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

const (
	// Logs younger than this are never touched; they may still be written.
	logKeepDays = 7
	// Logs older than this are only deleted when backed up first.
	logArchiveDays = 30
)

// CleanupLogs deletes log files by age band: under 7 days untouched, 7-30
// days deletable outright, over 30 days deletable only with a backup. When
// the caller declined a backup, the old band is excluded rather than risked.
func (e *Executor) CleanupLogs(ctx context.Context, candidates []types.FileRecord, opts types.CleanupOptions, onProgress ProgressFunc) (*types.CleanupOutcome, error) {
	now := time.Now()
	keepCutoff := now.AddDate(0, 0, -logKeepDays)
	archiveCutoff := now.AddDate(0, 0, -logArchiveDays)

	var working []types.FileRecord
	var excluded int
	for _, f := range candidates {
		switch {
		case f.Modified.After(keepCutoff):
			// Too young to touch.
			excluded++
		case f.Modified.After(archiveCutoff):
			working = append(working, f)
		case opts.CreateBackup:
			working = append(working, f)
		default:
			excluded++
		}
	}

	logger.Info("log cleanup prepared",
		"candidates", len(candidates),
		"working", len(working),
		"excluded", excluded,
		"backup", opts.CreateBackup)

	return e.Cleanup(ctx, types.CleanupSelection{Files: working, Options: opts}, onProgress)
}
