// Package cleaner executes cleanup runs: guard validation, optional backup,
// deletion, and archive-based rollback when anything goes wrong mid-run.
package cleaner

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
	"github.com/TomerGlick/MacCleaner-sub001/internal/utils"
)

// State tracks one cleanup run. Terminal states never transition further.
type State int32

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
	StateCancelled
	StateFailed
)

// Progress reports per-file advancement through the working set.
type Progress struct {
	CurrentPath string
	Current     int
	Total       int
	FreedSoFar  int64
}

// ProgressFunc is invoked before each file is processed.
type ProgressFunc func(Progress)

// PathGuard answers whether a path may never be deleted.
type PathGuard interface {
	IsProtected(path string) bool
}

// Archiver is the backup collaborator. Production implementation is
// archive.Store; tests inject a double.
type Archiver interface {
	Archive(ctx context.Context, files []types.FileRecord, destDir string) (*types.ArchiveRef, error)
	Restore(ctx context.Context, ref types.ArchiveRef, destDir string) (*types.RestoreOutcome, error)
	RestorePaths(ctx context.Context, ref types.ArchiveRef, destDir string, paths []string) (*types.RestoreOutcome, error)
}

// ledgerEntry records one successful deletion within the current run, the
// unit of rollback.
type ledgerEntry struct {
	path string
	size int64
}

// Executor performs a single cleanup run. One Executor, one run: once the
// state machine reaches a terminal state it stays there.
type Executor struct {
	guard     PathGuard
	store     Archiver
	backupDir string
	state     atomic.Int32

	// Swap points for deterministic tests.
	moveToTrash func(path string) error
	removeFile  func(path string) error
	inUse       func(path string) bool
}

// NewExecutor wires an Executor with production deletion primitives.
func NewExecutor(guard PathGuard, store Archiver, backupDir string) *Executor {
	return &Executor{
		guard:       guard,
		store:       store,
		backupDir:   backupDir,
		moveToTrash: utils.MoveToTrash,
		removeFile:  os.Remove,
		inUse:       utils.IsFileInUse,
	}
}

// State returns the current run state. Safe from any goroutine.
func (e *Executor) State() State {
	return State(e.state.Load())
}

// Validate partitions a selection into guard-blocked files and advisory
// warnings without touching the disk.
func (e *Executor) Validate(selection types.CleanupSelection) types.ValidationOutcome {
	var outcome types.ValidationOutcome
	for _, f := range selection.Files {
		if e.guard.IsProtected(f.Path) {
			outcome.Blocked = append(outcome.Blocked, f)
			continue
		}
		if f.InUse {
			outcome.Warnings = append(outcome.Warnings, "in use: "+f.Path)
		}
		if !f.Perm.Deletable {
			outcome.Warnings = append(outcome.Warnings, "not deletable: "+f.Path)
		}
	}
	return outcome
}

// Cleanup runs the full lifecycle over the selection. Blocked files are
// excluded, not fatal. A hard deletion failure or cancellation rolls back
// every file already deleted in this run (when a backup exists) and returns
// a zero-effect outcome carrying the error, so a failed cleanup looks atomic
// to the caller.
func (e *Executor) Cleanup(ctx context.Context, selection types.CleanupSelection, onProgress ProgressFunc) (*types.CleanupOutcome, error) {
	if !e.state.CompareAndSwap(int32(StateNotStarted), int32(StateInProgress)) {
		return nil, types.CleanupError{Kind: types.CleanupUnknown, Msg: "cleanup already started"}
	}

	opts := selection.Options
	outcome := &types.CleanupOutcome{}

	// Step 1: guard filtering. Selection order is preserved so progress
	// reporting is reproducible.
	working := make([]types.FileRecord, 0, len(selection.Files))
	for _, f := range selection.Files {
		if e.guard.IsProtected(f.Path) {
			outcome.Errors = append(outcome.Errors, types.CleanupError{Kind: types.CleanupFileProtected, Path: f.Path})
			continue
		}
		working = append(working, f)
	}

	if ctx.Err() != nil {
		e.state.Store(int32(StateCancelled))
		cancelErr := types.CleanupError{Kind: types.CleanupCancelled}
		outcome.Errors = append(outcome.Errors, cancelErr)
		return outcome, cancelErr
	}

	// Step 2: the safety copy comes before any deletion. No backup, no
	// cleanup.
	if opts.CreateBackup && len(working) > 0 && !opts.DryRun {
		ref, err := e.store.Archive(ctx, working, e.backupDir)
		if err != nil {
			e.state.Store(int32(StateFailed))
			backupErr := types.CleanupError{Kind: types.CleanupBackupFailed, Msg: err.Error()}
			outcome.Errors = append(outcome.Errors, backupErr)
			logger.Error("backup failed, aborting cleanup", "error", err)
			return outcome, backupErr
		}
		outcome.Archive = ref
	}

	// Step 3: delete file by file, ledgering each success for rollback.
	ledger := make([]ledgerEntry, 0, len(working))
	for i, f := range working {
		if ctx.Err() != nil {
			e.rollback(outcome.Archive, ledger, opts)
			e.state.Store(int32(StateCancelled))
			outcome.FilesRemoved = 0
			outcome.SpaceFreed = 0
			cancelErr := types.CleanupError{Kind: types.CleanupCancelled}
			outcome.Errors = append(outcome.Errors, cancelErr)
			return outcome, cancelErr
		}

		if onProgress != nil {
			onProgress(Progress{CurrentPath: f.Path, Current: i + 1, Total: len(working), FreedSoFar: outcome.SpaceFreed})
		}

		if opts.SkipInUseFiles && e.inUse(f.Path) {
			outcome.Errors = append(outcome.Errors, types.CleanupError{Kind: types.CleanupFileInUse, Path: f.Path})
			continue
		}

		if opts.DryRun {
			outcome.FilesRemoved++
			outcome.SpaceFreed += f.Size
			continue
		}

		if err := e.deleteOne(f, opts); err != nil {
			if os.IsNotExist(err) {
				// Already gone; nothing was destroyed.
				outcome.Errors = append(outcome.Errors, types.CleanupError{Kind: types.CleanupFileNotFound, Path: f.Path})
				continue
			}

			e.rollback(outcome.Archive, ledger, opts)
			e.state.Store(int32(StateFailed))
			outcome.FilesRemoved = 0
			outcome.SpaceFreed = 0
			failErr := deleteError(f.Path, err)
			outcome.Errors = append(outcome.Errors, failErr)
			logger.Error("deletion failed, rolled back session", "path", f.Path, "error", err)
			return outcome, failErr
		}

		ledger = append(ledger, ledgerEntry{path: f.Path, size: f.Size})
		outcome.FilesRemoved++
		outcome.SpaceFreed += f.Size
	}

	e.state.Store(int32(StateCompleted))
	logger.Info("cleanup completed",
		"removed", outcome.FilesRemoved,
		"freed", outcome.SpaceFreed,
		"errors", len(outcome.Errors),
		"dryRun", opts.DryRun)
	return outcome, nil
}

func (e *Executor) deleteOne(f types.FileRecord, opts types.CleanupOptions) error {
	if opts.MoveToTrash {
		return e.moveToTrash(f.Path)
	}
	return e.removeFile(f.Path)
}

// rollback restores exactly the files the session ledger recorded as
// deleted, using the run's own archive. Files merely skipped in this run are
// never touched; their live content may have moved on since the backup.
// Best-effort: without an archive there is nothing to restore from. Runs on
// a background context so cancellation of the cleanup cannot also cancel its
// own repair.
func (e *Executor) rollback(ref *types.ArchiveRef, ledger []ledgerEntry, opts types.CleanupOptions) {
	if ref == nil || len(ledger) == 0 || opts.DryRun {
		return
	}
	paths := make([]string, len(ledger))
	for i, entry := range ledger {
		paths[i] = entry.path
	}
	restored, err := e.store.RestorePaths(context.Background(), *ref, "", paths)
	if err != nil {
		logger.Error("rollback restore failed", "archive", ref.ID, "error", err)
		return
	}
	logger.Warn("session rolled back",
		"archive", ref.ID,
		"deleted", len(ledger),
		"restored", restored.Restored,
		"failed", restored.Failed)
}

func deleteError(path string, err error) types.CleanupError {
	if os.IsPermission(err) {
		return types.CleanupError{Kind: types.CleanupPermissionDenied, Path: path}
	}
	return types.CleanupError{Kind: types.CleanupUnknown, Path: path, Msg: err.Error()}
}
