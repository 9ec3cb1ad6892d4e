package types

import "fmt"

// ScanErrorKind enumerates scan failure modes.
type ScanErrorKind string

const (
	ScanPermissionDenied ScanErrorKind = "permission_denied"
	ScanPathNotFound     ScanErrorKind = "path_not_found"
	ScanCancelled        ScanErrorKind = "cancelled"
	ScanUnknown          ScanErrorKind = "unknown"
)

// ScanError is a per-entry scan failure. Accumulated alongside successful
// records; a single unreadable subtree never aborts the whole scan.
type ScanError struct {
	Kind ScanErrorKind
	Path string
	Msg  string
}

func (e ScanError) Error() string {
	switch e.Kind {
	case ScanPermissionDenied:
		return "permission denied: " + e.Path
	case ScanPathNotFound:
		return "path not found: " + e.Path
	case ScanCancelled:
		return "scan cancelled"
	default:
		return fmt.Sprintf("scan error: %s: %s", e.Path, e.Msg)
	}
}

// CleanupErrorKind enumerates cleanup failure modes.
type CleanupErrorKind string

const (
	CleanupFileProtected    CleanupErrorKind = "file_protected"
	CleanupFileInUse        CleanupErrorKind = "file_in_use"
	CleanupPermissionDenied CleanupErrorKind = "permission_denied"
	CleanupFileNotFound     CleanupErrorKind = "file_not_found"
	CleanupCancelled        CleanupErrorKind = "cancelled"
	CleanupBackupFailed     CleanupErrorKind = "backup_failed"
	CleanupUnknown          CleanupErrorKind = "unknown"
)

// CleanupError is a per-file cleanup failure.
type CleanupError struct {
	Kind CleanupErrorKind
	Path string
	Msg  string
}

func (e CleanupError) Error() string {
	switch e.Kind {
	case CleanupFileProtected:
		return "protected path, skipped: " + e.Path
	case CleanupFileInUse:
		return "file in use, skipped: " + e.Path
	case CleanupPermissionDenied:
		return "permission denied: " + e.Path
	case CleanupFileNotFound:
		return "file not found: " + e.Path
	case CleanupCancelled:
		return "cleanup cancelled"
	case CleanupBackupFailed:
		return "backup failed: " + e.Msg
	default:
		return fmt.Sprintf("cleanup error: %s: %s", e.Path, e.Msg)
	}
}

// RestoreErrorKind enumerates restore failure modes.
type RestoreErrorKind string

const (
	RestoreBackupNotFound         RestoreErrorKind = "backup_not_found"
	RestoreBackupCorrupted        RestoreErrorKind = "backup_corrupted"
	RestoreDestinationNotWritable RestoreErrorKind = "destination_not_writable"
	RestoreInsufficientSpace      RestoreErrorKind = "insufficient_space"
	RestoreUnknown                RestoreErrorKind = "unknown"
)

// RestoreError is a per-entry restore failure.
type RestoreError struct {
	Kind RestoreErrorKind
	Path string
	Msg  string
}

func (e RestoreError) Error() string {
	switch e.Kind {
	case RestoreBackupNotFound:
		return "backup not found: " + e.Path
	case RestoreBackupCorrupted:
		return "backup corrupted: " + e.Path
	case RestoreDestinationNotWritable:
		return "destination not writable: " + e.Path
	case RestoreInsufficientSpace:
		return "insufficient space for restore"
	default:
		return fmt.Sprintf("restore error: %s: %s", e.Path, e.Msg)
	}
}
