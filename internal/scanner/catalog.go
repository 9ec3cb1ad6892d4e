package scanner

import (
	"sort"

	"github.com/TomerGlick/MacCleaner-sub001/internal/config"
	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/utils"
)

// ExpandCatalog resolves the vendor cache catalog into concrete scan roots.
// Glob wildcards are expanded against the live filesystem; entries whose
// paths match nothing are dropped (the vendor tool is not installed).
func ExpandCatalog(entries []config.CatalogEntry) []string {
	seen := make(map[string]bool)
	var roots []string

	for _, entry := range entries {
		for _, pattern := range entry.Paths {
			matches, err := utils.GlobPaths(pattern)
			if err != nil {
				logger.Warn("bad catalog pattern", "id", entry.ID, "pattern", pattern, "error", err)
				continue
			}
			for _, m := range matches {
				if !seen[m] {
					seen[m] = true
					roots = append(roots, m)
				}
			}
		}
	}

	sort.Strings(roots)
	return roots
}
