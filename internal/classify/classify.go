// Package classify assigns category tags to scanned records and groups
// byte-identical files. Classification is pure; only duplicate detection
// reads file content.
package classify

import (
	"sort"
	"strings"
	"time"

	"github.com/TomerGlick/MacCleaner-sub001/internal/config"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

// PathGuard is the subset of the guard the classifier needs: the "old" rule
// never fires for protected paths.
type PathGuard interface {
	IsProtected(path string) bool
}

// Caches roots owned by the OS rather than individual applications.
var systemCachesRoots = []string{
	"/Library/Caches/",
	"/System/Library/Caches/",
	"/private/var/folders/",
}

// Cache directories of known browsers, relative match anywhere in the path.
var browserCacheSegments = []string{
	"/Google/Chrome/",
	"/Firefox/Profiles/",
	"/com.apple.Safari/",
	"/Microsoft Edge/",
	"/BraveSoftware/",
	"/Arc/",
}

// Classifier evaluates each rule independently; a record can match several.
type Classifier struct {
	guard      PathGuard
	thresholds config.Thresholds
	now        func() time.Time
}

// New builds a Classifier with the given guard and thresholds. The old-file
// age threshold is clamped to its documented bounds up front.
func New(guard PathGuard, th config.Thresholds) *Classifier {
	th.OldFileDays = config.ClampAgeDays(th.OldFileDays)
	return &Classifier{guard: guard, thresholds: th, now: time.Now}
}

// Classify returns the set of category tags the record matches.
func (c *Classifier) Classify(rec types.FileRecord) []types.CategoryTag {
	var tags []types.CategoryTag
	lower := strings.ToLower(rec.Path)

	if tag, ok := c.cacheTag(rec.Path, lower); ok {
		tags = append(tags, tag)
	}
	if rec.Kind == types.KindLog || strings.Contains(lower, "/logs/") {
		tags = append(tags, types.TagLog)
	}
	if rec.Kind == types.KindTemporary {
		tags = append(tags, types.TagTemp)
	}
	if strings.Contains(lower, "/downloads/") {
		tags = append(tags, types.TagDownloads)
	}
	if rec.Size >= c.thresholds.LargeFileBytes {
		tags = append(tags, types.TagLarge)
	}
	if c.isOld(rec) {
		tags = append(tags, types.TagOld)
	}

	return tags
}

// cacheTag resolves the three mutually exclusive cache tags: the OS-owned
// caches roots win, then known browser cache directories, then any other
// caches directory.
func (c *Classifier) cacheTag(path, lower string) (types.CategoryTag, bool) {
	for _, root := range systemCachesRoots {
		if strings.HasPrefix(path, root) {
			return types.TagSystemCache, true
		}
	}

	inCaches := strings.Contains(lower, "/caches/") || strings.Contains(lower, "/cache/")
	if !inCaches {
		return "", false
	}
	for _, segment := range browserCacheSegments {
		if strings.Contains(path, segment) {
			return types.TagBrowserCache, true
		}
	}
	return types.TagAppCache, true
}

func (c *Classifier) isOld(rec types.FileRecord) bool {
	threshold := time.Duration(c.thresholds.OldFileDays) * 24 * time.Hour
	if rec.AccessAge(c.now()) < threshold {
		return false
	}
	if rec.IsAppBundle() {
		return false
	}
	return !c.guard.IsProtected(rec.Path)
}

// FilterByAge returns records last accessed more than thresholdDays ago.
// The threshold is clamped to the documented bounds before use.
func FilterByAge(files []types.FileRecord, thresholdDays int) []types.FileRecord {
	days := config.ClampAgeDays(thresholdDays)
	cutoff := time.Now().AddDate(0, 0, -days)

	var out []types.FileRecord
	for _, f := range files {
		if f.Accessed.Before(cutoff) {
			out = append(out, f)
		}
	}
	return out
}

// FilterBySize returns records at least minBytes large.
func FilterBySize(files []types.FileRecord, minBytes int64) []types.FileRecord {
	var out []types.FileRecord
	for _, f := range files {
		if f.Size >= minBytes {
			out = append(out, f)
		}
	}
	return out
}

// FilterByKind returns records of the given kind.
func FilterByKind(files []types.FileRecord, kind types.FileKind) []types.FileRecord {
	var out []types.FileRecord
	for _, f := range files {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// SortBySize sorts largest first.
func SortBySize(files []types.FileRecord) {
	sort.SliceStable(files, func(i, j int) bool { return files[i].Size > files[j].Size })
}

// SortByName sorts by base name ascending.
func SortByName(files []types.FileRecord) {
	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name()) < strings.ToLower(files[j].Name())
	})
}

// SortByAge sorts oldest access first.
func SortByAge(files []types.FileRecord) {
	sort.SliceStable(files, func(i, j int) bool { return files[i].Accessed.Before(files[j].Accessed) })
}

// SortByKind sorts by kind, then size descending within a kind.
func SortByKind(files []types.FileRecord) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Kind != files[j].Kind {
			return files[i].Kind < files[j].Kind
		}
		return files[i].Size > files[j].Size
	})
}
