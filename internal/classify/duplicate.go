package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

// hashChunkSize bounds memory while hashing arbitrarily large files and is
// the granularity at which cancellation is polled.
const hashChunkSize = 1 << 20

// FindDuplicates groups byte-identical files. Detection narrows candidates in
// stages: size gate, size grouping, cheap xxhash pass, then SHA-256
// confirmation. Size equality alone never proves duplication.
func (c *Classifier) FindDuplicates(ctx context.Context, records []types.FileRecord) ([]types.DuplicateGroup, error) {
	bySize := make(map[int64][]types.FileRecord)
	for _, rec := range records {
		if rec.Size < c.thresholds.DuplicateMinBytes || !rec.Perm.Readable {
			continue
		}
		bySize[rec.Size] = append(bySize[rec.Size], rec)
	}

	buf := make([]byte, hashChunkSize)
	var groups []types.DuplicateGroup

	for size, candidates := range bySize {
		if len(candidates) < 2 {
			continue
		}

		// Cheap pre-grouping pass so most same-size non-duplicates never
		// pay for a cryptographic digest.
		byQuick := make(map[uint64][]types.FileRecord)
		for _, rec := range candidates {
			sum, err := quickHash(ctx, rec.Path, buf)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("duplicate pre-hash failed", "path", rec.Path, "error", err)
				continue
			}
			byQuick[sum] = append(byQuick[sum], rec)
		}

		for _, quickGroup := range byQuick {
			if len(quickGroup) < 2 {
				continue
			}
			byDigest := make(map[string][]types.FileRecord)
			for _, rec := range quickGroup {
				digest, err := contentDigest(ctx, rec.Path, buf)
				if err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					logger.Warn("duplicate hash failed", "path", rec.Path, "error", err)
					continue
				}
				byDigest[digest] = append(byDigest[digest], rec)
			}
			for digest, members := range byDigest {
				if len(members) < 2 {
					continue
				}
				sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })
				groups = append(groups, types.DuplicateGroup{Hash: digest, Size: size, Files: members})
			}
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].WastedSpace() > groups[j].WastedSpace() })
	return groups, nil
}

func quickHash(ctx context.Context, path string, buf []byte) (uint64, error) {
	h := xxhash.New()
	if err := streamFile(ctx, path, buf, h.Write); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func contentDigest(ctx context.Context, path string, buf []byte) (string, error) {
	h := sha256.New()
	if err := streamFile(ctx, path, buf, h.Write); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// streamFile feeds a file through sink in fixed-size chunks, polling
// cancellation between chunks so a multi-gigabyte file cannot stall a
// cancelled run.
func streamFile(ctx context.Context, path string, buf []byte, sink func([]byte) (int, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, err := sink(buf[:n]); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}
