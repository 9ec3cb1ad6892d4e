// Package scanner enumerates files under a set of roots, skipping protected
// subtrees and collecting metadata in bounded batches.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
	"github.com/TomerGlick/MacCleaner-sub001/internal/utils"
)

const defaultBatchSize = 1000

// ProgressFunc receives the path being processed, the number of records
// scanned so far and an advisory completion fraction. Invoked once per
// flushed batch.
type ProgressFunc func(currentPath string, totalScanned int, fraction float64)

// PathGuard answers whether a path is protected from any destructive
// operation. Satisfied by guard.Guard and by test doubles.
type PathGuard interface {
	IsProtected(path string) bool
}

// FileScanner is the scanning contract consumed by callers.
type FileScanner interface {
	Scan(ctx context.Context, roots []string, onProgress ProgressFunc) (*types.ScanResult, error)
}

// Scanner walks roots depth-first with guard pruning. Peak memory stays
// proportional to the batch size, not the total file count.
type Scanner struct {
	guard     PathGuard
	batchSize int
	limiter   *rate.Limiter
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBatchSize overrides the default flush bound of 1000 records.
func WithBatchSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithRateLimit caps stat operations per second, easing I/O pressure on
// spinning disks and network mounts.
func WithRateLimit(perSecond int) Option {
	return func(s *Scanner) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// New builds a Scanner around the given guard.
func New(guard PathGuard, opts ...Option) *Scanner {
	s := &Scanner{guard: guard, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every root and returns the collected records. Per-entry errors
// accumulate in the result; only cancellation fails the call, and even then
// the partial result is returned alongside the error.
func (s *Scanner) Scan(ctx context.Context, roots []string, onProgress ProgressFunc) (*types.ScanResult, error) {
	start := time.Now()
	result := &types.ScanResult{}
	batch := make([]types.FileRecord, 0, s.batchSize)

	flush := func(current string, fraction float64) {
		if len(batch) == 0 {
			return
		}
		result.Files = append(result.Files, batch...)
		batch = batch[:0]
		if onProgress != nil {
			onProgress(current, len(result.Files), fraction)
		}
	}

	for i, root := range roots {
		expanded := filepath.Clean(utils.ExpandPath(root))
		fraction := float64(i) / float64(len(roots))

		if s.guard.IsProtected(expanded) {
			logger.Debug("skipping protected root", "root", expanded)
			continue
		}
		if _, err := os.Stat(expanded); err != nil {
			if os.IsNotExist(err) {
				result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanPathNotFound, Path: expanded})
			} else if os.IsPermission(err) {
				result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanPermissionDenied, Path: expanded})
			} else {
				result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanUnknown, Path: expanded, Msg: err.Error()})
			}
			continue
		}

		err := filepath.WalkDir(expanded, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				s.recordWalkError(result, path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				// Prune protected subtrees without descending.
				if path != expanded && s.guard.IsProtected(path) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return err
				}
			}

			rec, err := s.statRecord(path, d)
			if err != nil {
				s.recordWalkError(result, path, err)
				return nil
			}

			batch = append(batch, rec)
			if len(batch) >= s.batchSize {
				flush(path, fraction)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				flush(expanded, fraction)
				result.Duration = time.Since(start)
				result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanCancelled})
				return result, types.ScanError{Kind: types.ScanCancelled}
			}
			s.recordWalkError(result, expanded, err)
		}
		flush(expanded, float64(i+1)/float64(len(roots)))
	}

	result.Duration = time.Since(start)
	logger.Info("scan finished",
		"roots", len(roots),
		"files", len(result.Files),
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

func (s *Scanner) recordWalkError(result *types.ScanResult, path string, err error) {
	if os.IsPermission(err) {
		result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanPermissionDenied, Path: path})
		return
	}
	if os.IsNotExist(err) {
		// Raced with a concurrent delete; nothing to report.
		return
	}
	result.Errors = append(result.Errors, types.ScanError{Kind: types.ScanUnknown, Path: path, Msg: err.Error()})
}

// statRecord resolves size, timestamps and permissions into a FileRecord.
// File content is never read here.
func (s *Scanner) statRecord(path string, d fs.DirEntry) (types.FileRecord, error) {
	info, err := d.Info()
	if err != nil {
		return types.FileRecord{}, err
	}

	ts := utils.StatTimes(path, info.ModTime())
	readable, writable, deletable := utils.StatPermissions(path)
	kind, ext := kindOf(path)

	return types.FileRecord{
		Path:     path,
		Size:     info.Size(),
		Created:  ts.Created,
		Modified: ts.Modified,
		Accessed: ts.Accessed,
		Kind:     kind,
		Ext:      ext,
		Perm: types.Permissions{
			Readable:  readable,
			Writable:  writable,
			Deletable: deletable,
		},
	}, nil
}
