package types

import (
	"path/filepath"
	"strings"
	"time"
)

// FileKind is a coarse file classification derived from path and extension.
type FileKind string

const (
	KindCache       FileKind = "cache"
	KindLog         FileKind = "log"
	KindTemporary   FileKind = "temporary"
	KindDocument    FileKind = "document"
	KindApplication FileKind = "application"
	KindArchive     FileKind = "archive"
	KindMedia       FileKind = "media"
	KindOther       FileKind = "other"
)

// CategoryTag marks why a file is a cleanup candidate. A record can carry
// several tags at once.
type CategoryTag string

const (
	TagSystemCache  CategoryTag = "system-cache"
	TagAppCache     CategoryTag = "app-cache"
	TagBrowserCache CategoryTag = "browser-cache"
	TagTemp         CategoryTag = "temp"
	TagLarge        CategoryTag = "large"
	TagOld          CategoryTag = "old"
	TagLog          CategoryTag = "log"
	TagDownloads    CategoryTag = "downloads"
	TagDuplicate    CategoryTag = "duplicate"
)

// Permissions is the access triple resolved at scan time.
type Permissions struct {
	Readable  bool
	Writable  bool
	Deletable bool
}

// FileRecord is an immutable snapshot of a file taken during one scan pass.
// Re-scanning supersedes it; nothing mutates it in place.
type FileRecord struct {
	Path     string
	Size     int64
	Created  time.Time
	Modified time.Time
	Accessed time.Time
	Kind     FileKind
	Ext      string // set when Kind is KindOther
	Perm     Permissions
	InUse    bool
}

// Name returns the last path component for display.
func (r FileRecord) Name() string {
	return filepath.Base(r.Path)
}

// AccessAge returns how long ago the file was last accessed.
func (r FileRecord) AccessAge(now time.Time) time.Duration {
	return now.Sub(r.Accessed)
}

// IsAppBundle reports whether the record sits inside a .app bundle.
func (r FileRecord) IsAppBundle() bool {
	return r.Kind == KindApplication || strings.Contains(r.Path, ".app/")
}

// DuplicateGroup is a set of files proven byte-identical by content hash.
// A group only exists with two or more members.
type DuplicateGroup struct {
	Hash  string // hex SHA-256 digest
	Size  int64
	Files []FileRecord
}

// WastedSpace is the space reclaimable by keeping a single member.
func (g DuplicateGroup) WastedSpace() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// ScanResult is the outcome of a single scan pass over a set of roots.
type ScanResult struct {
	Files    []FileRecord
	Errors   []ScanError
	Duration time.Duration
}

// TotalSize sums the sizes of all scanned files.
func (r *ScanResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// CleanupOptions controls how a cleanup run treats its working set.
// DryRun counts bytes without touching the disk.
type CleanupOptions struct {
	CreateBackup   bool
	MoveToTrash    bool
	SkipInUseFiles bool
	DryRun         bool
}

// CleanupSelection is the caller-chosen set of records to remove. Order is
// preserved through execution for reproducible progress reporting.
type CleanupSelection struct {
	Files   []FileRecord
	Options CleanupOptions
}

// ValidationOutcome partitions a selection before execution. Blocked files
// are excluded from the working set, never deleted.
type ValidationOutcome struct {
	Blocked  []FileRecord
	Warnings []string
}

// ArchiveRef identifies one backup container on disk.
type ArchiveRef struct {
	ID        string
	Path      string
	CreatedAt time.Time
	FileCount int
	TotalSize int64
}

// CleanupOutcome reports what a cleanup run actually did. Archive is non-nil
// iff a backup was created.
type CleanupOutcome struct {
	FilesRemoved int
	SpaceFreed   int64
	Errors       []CleanupError
	Archive      *ArchiveRef
}

// RestoreOutcome is the per-entry split of a restore run. Failures are
// per-entry; a corrupt entry never aborts the rest.
type RestoreOutcome struct {
	Restored int
	Failed   int
	Errors   []RestoreError
}
