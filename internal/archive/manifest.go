package archive

import (
	"strings"
	"time"
)

const manifestName = "manifest.json"

// ManifestEntry records one backed-up file with enough metadata to put it
// back exactly where it came from.
type ManifestEntry struct {
	OriginalPath string    `json:"originalPath"`
	Size         int64     `json:"size"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	Kind         string    `json:"kind"`
	SHA256       string    `json:"sha256"`
}

// Manifest describes one archive container. The manifest lives inside the
// container and shares its lifecycle.
type Manifest struct {
	ArchiveID string          `json:"archiveId"`
	CreatedAt time.Time       `json:"createdAt"`
	Entries   []ManifestEntry `json:"entries"`
}

// flattenName maps an absolute path to a flat, collision-free member name.
// Percent-escaping the escape character before the separator guarantees two
// distinct paths can never flatten to the same name.
func flattenName(originalPath string) string {
	s := strings.ReplaceAll(originalPath, "%", "%25")
	s = strings.ReplaceAll(s, "/", "%2F")
	return s
}
