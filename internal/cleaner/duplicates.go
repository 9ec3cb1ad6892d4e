package cleaner

import (
	"context"

	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

// CleanupDuplicates removes redundant copies from each duplicate group,
// keeping the member named in keep (group hash -> path to retain) or the
// first member when the group has no entry. Before any deletion it asserts
// that every group keeps at least one survivor; a keep-map naming a
// non-member falls back to the first member rather than emptying the group.
func (e *Executor) CleanupDuplicates(ctx context.Context, groups []types.DuplicateGroup, keep map[string]string, opts types.CleanupOptions, onProgress ProgressFunc) (*types.CleanupOutcome, error) {
	var deletions []types.FileRecord

	for _, group := range groups {
		if len(group.Files) < 2 {
			// Not a duplicate group; nothing redundant to remove.
			continue
		}

		keeper := group.Files[0].Path
		if want, ok := keep[group.Hash]; ok {
			for _, f := range group.Files {
				if f.Path == want {
					keeper = want
					break
				}
			}
		}

		survivors := 0
		for _, f := range group.Files {
			if f.Path == keeper {
				survivors++
				continue
			}
			deletions = append(deletions, f)
		}
		if survivors == 0 {
			return nil, types.CleanupError{
				Kind: types.CleanupUnknown,
				Msg:  "duplicate group " + group.Hash + " would lose every member",
			}
		}
	}

	return e.Cleanup(ctx, types.CleanupSelection{Files: deletions, Options: opts}, onProgress)
}
