package scanner

import (
	"path/filepath"
	"strings"

	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".md": true,
	".rtf": true, ".pages": true, ".xls": true, ".xlsx": true, ".csv": true,
	".ppt": true, ".pptx": true, ".key": true, ".numbers": true,
}

var archiveExts = map[string]bool{
	".zip": true, ".tar": true, ".gz": true, ".tgz": true, ".bz2": true,
	".xz": true, ".7z": true, ".rar": true, ".dmg": true, ".zst": true,
}

var mediaExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".heic": true,
	".tiff": true, ".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".mp3": true, ".aac": true, ".wav": true, ".flac": true,
}

var tempExts = map[string]bool{
	".tmp": true, ".temp": true, ".swp": true, ".bak": true, ".part": true,
	".crdownload": true, ".download": true,
}

// kindOf derives the coarse FileKind from path and extension alone. The
// returned ext is only meaningful for KindOther.
func kindOf(path string) (types.FileKind, string) {
	ext := strings.ToLower(filepath.Ext(path))
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".app") || strings.Contains(lower, ".app/"):
		return types.KindApplication, ""
	case tempExts[ext] || strings.Contains(lower, "/tmp/") || strings.HasSuffix(lower, "~"):
		return types.KindTemporary, ""
	case ext == ".log" || strings.Contains(lower, "/logs/"):
		return types.KindLog, ""
	case strings.Contains(lower, "/caches/") || strings.Contains(lower, "/cache/"):
		return types.KindCache, ""
	case documentExts[ext]:
		return types.KindDocument, ""
	case archiveExts[ext]:
		return types.KindArchive, ""
	case mediaExts[ext]:
		return types.KindMedia, ""
	default:
		return types.KindOther, strings.TrimPrefix(ext, ".")
	}
}
