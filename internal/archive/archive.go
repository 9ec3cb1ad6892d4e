// Package archive produces and restores single-file compressed backups with
// per-entry checksums. Every cleanup that promises reversibility goes
// through here.
package archive

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"

	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

const (
	containerExt  = ".tar.zst"
	stampLayout   = "20060102T150405Z"
	copyChunkSize = 1 << 20
)

// Store keeps archive containers in a single directory. Each archive/restore
// pair works in its own UUID-named scratch directory, so concurrent
// operations on different archives cannot collide.
type Store struct {
	dir string
}

// NewStore builds a Store rooted at dir. The directory is created on first
// use, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Archive copies every file into a staged flat layout, writes the manifest,
// and seals both into a tar+zstd container under destDir (the store
// directory when destDir is empty). Nothing is deleted here; deletion is the
// caller's business.
func (s *Store) Archive(ctx context.Context, files []types.FileRecord, destDir string) (*types.ArchiveRef, error) {
	if len(files) == 0 {
		return nil, errors.New("archive: empty file set")
	}
	if destDir == "" {
		destDir = s.dir
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create destination: %w", err)
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()
	staging := filepath.Join(destDir, "stage-"+id)
	if err := os.MkdirAll(staging, 0o700); err != nil {
		return nil, fmt.Errorf("archive: create staging: %w", err)
	}
	defer os.RemoveAll(staging)

	manifest := Manifest{ArchiveID: id, CreatedAt: createdAt}
	var totalSize int64

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		staged := filepath.Join(staging, flattenName(f.Path))
		digest, size, err := copyAndDigest(ctx, f.Path, staged)
		if err != nil {
			return nil, fmt.Errorf("archive: stage %s: %w", f.Path, err)
		}
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			OriginalPath: f.Path,
			Size:         size,
			ModifiedAt:   f.Modified,
			Kind:         string(f.Kind),
			SHA256:       digest,
		})
		totalSize += size
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("archive: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, manifestName), manifestData, 0o600); err != nil {
		return nil, fmt.Errorf("archive: write manifest: %w", err)
	}

	name := fmt.Sprintf("backup_%s_%s%s", createdAt.Format(stampLayout), id, containerExt)
	containerPath := filepath.Join(destDir, name)
	if err := sealContainer(ctx, staging, containerPath); err != nil {
		os.Remove(containerPath)
		return nil, fmt.Errorf("archive: seal container: %w", err)
	}

	logger.Info("archive created", "id", id, "files", len(files), "bytes", totalSize, "path", containerPath)
	return &types.ArchiveRef{
		ID:        id,
		Path:      containerPath,
		CreatedAt: createdAt,
		FileCount: len(manifest.Entries),
		TotalSize: totalSize,
	}, nil
}

// Restore extracts the container into a scratch directory, verifies each
// staged copy against the manifest, and copies entries back. With an empty
// destDir entries return to their recorded original paths; otherwise they
// are re-rooted under destDir. Corrupt entries are skipped, not fatal.
func (s *Store) Restore(ctx context.Context, ref types.ArchiveRef, destDir string) (*types.RestoreOutcome, error) {
	return s.restore(ctx, ref, destDir, nil)
}

// RestorePaths restores only the manifest entries whose original path is in
// paths. Entries outside the set stay inside the container, so a partial
// rollback cannot clobber files that were never deleted.
func (s *Store) RestorePaths(ctx context.Context, ref types.ArchiveRef, destDir string, paths []string) (*types.RestoreOutcome, error) {
	only := make(map[string]bool, len(paths))
	for _, p := range paths {
		only[p] = true
	}
	return s.restore(ctx, ref, destDir, only)
}

func (s *Store) restore(ctx context.Context, ref types.ArchiveRef, destDir string, only map[string]bool) (*types.RestoreOutcome, error) {
	outcome := &types.RestoreOutcome{}

	if _, err := os.Stat(ref.Path); err != nil {
		return outcome, types.RestoreError{Kind: types.RestoreBackupNotFound, Path: ref.Path}
	}
	if destDir != "" {
		if err := os.MkdirAll(destDir, 0o755); err != nil || unix.Access(destDir, unix.W_OK) != nil {
			return outcome, types.RestoreError{Kind: types.RestoreDestinationNotWritable, Path: destDir}
		}
	}

	scratch := filepath.Join(filepath.Dir(ref.Path), "restore-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return outcome, types.RestoreError{Kind: types.RestoreUnknown, Path: scratch, Msg: err.Error()}
	}
	defer os.RemoveAll(scratch)

	if err := extractContainer(ctx, ref.Path, scratch); err != nil {
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		return outcome, types.RestoreError{Kind: types.RestoreBackupCorrupted, Path: ref.Path, Msg: err.Error()}
	}

	manifest, err := readManifest(scratch)
	if err != nil {
		return outcome, types.RestoreError{Kind: types.RestoreBackupCorrupted, Path: ref.Path, Msg: err.Error()}
	}

	entries := manifest.Entries
	if only != nil {
		var selected []ManifestEntry
		for _, entry := range manifest.Entries {
			if only[entry.OriginalPath] {
				selected = append(selected, entry)
			}
		}
		entries = selected
	}

	if err := checkFreeSpace(entries, destDir); err != nil {
		return outcome, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		if err := s.restoreEntry(ctx, scratch, entry, destDir); err != nil {
			outcome.Failed++
			var restoreErr types.RestoreError
			if errors.As(err, &restoreErr) {
				outcome.Errors = append(outcome.Errors, restoreErr)
			} else {
				outcome.Errors = append(outcome.Errors, types.RestoreError{
					Kind: types.RestoreUnknown, Path: entry.OriginalPath, Msg: err.Error(),
				})
			}
			continue
		}
		outcome.Restored++
	}

	logger.Info("restore finished", "id", ref.ID, "restored", outcome.Restored, "failed", outcome.Failed)
	return outcome, nil
}

// restoreEntry verifies the staged copy, removes any stale destination file,
// copies the entry out, and re-verifies the copy. Restoration targets the
// manifest's recorded original path, never just the base name.
func (s *Store) restoreEntry(ctx context.Context, scratch string, entry ManifestEntry, destDir string) error {
	staged := filepath.Join(scratch, flattenName(entry.OriginalPath))

	digest, err := digestFile(ctx, staged)
	if err != nil {
		return types.RestoreError{Kind: types.RestoreBackupCorrupted, Path: entry.OriginalPath, Msg: "staged copy unreadable"}
	}
	if digest != entry.SHA256 {
		return types.RestoreError{Kind: types.RestoreBackupCorrupted, Path: entry.OriginalPath, Msg: "staged checksum mismatch"}
	}

	dest := entry.OriginalPath
	if destDir != "" {
		dest = filepath.Join(destDir, entry.OriginalPath)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return types.RestoreError{Kind: types.RestoreDestinationNotWritable, Path: dest, Msg: err.Error()}
	}

	// Never partially overwrite: clear any stale file first.
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return types.RestoreError{Kind: types.RestoreDestinationNotWritable, Path: dest, Msg: err.Error()}
		}
	}

	copied, _, err := copyAndDigest(ctx, staged, dest)
	if err != nil {
		return err
	}
	if copied != entry.SHA256 {
		os.Remove(dest)
		return types.RestoreError{Kind: types.RestoreBackupCorrupted, Path: dest, Msg: "restored checksum mismatch"}
	}
	return nil
}

// List enumerates the containers in the store directory, newest first.
func (s *Store) List() ([]types.ArchiveRef, error) {
	pattern := filepath.Join(s.dir, "backup_*"+containerExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var refs []types.ArchiveRef
	for _, path := range matches {
		ref, ok := parseContainerName(path)
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].CreatedAt.After(refs[j].CreatedAt) })
	return refs, nil
}

// Delete removes a container. The manifest inside dies with it.
func (s *Store) Delete(ref types.ArchiveRef) error {
	if err := os.Remove(ref.Path); err != nil {
		if os.IsNotExist(err) {
			return types.RestoreError{Kind: types.RestoreBackupNotFound, Path: ref.Path}
		}
		return err
	}
	logger.Info("archive deleted", "id", ref.ID, "path", ref.Path)
	return nil
}

func parseContainerName(path string) (types.ArchiveRef, bool) {
	base := strings.TrimSuffix(filepath.Base(path), containerExt)
	parts := strings.SplitN(base, "_", 3)
	if len(parts) != 3 || parts[0] != "backup" {
		return types.ArchiveRef{}, false
	}
	createdAt, err := time.Parse(stampLayout, parts[1])
	if err != nil {
		return types.ArchiveRef{}, false
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return types.ArchiveRef{}, false
	}
	return types.ArchiveRef{ID: parts[2], Path: path, CreatedAt: createdAt}, true
}

func checkFreeSpace(entries []ManifestEntry, destDir string) error {
	var required uint64
	for _, e := range entries {
		required += uint64(e.Size)
	}

	probe := destDir
	if probe == "" {
		probe = "/"
	}
	usage, err := disk.Usage(probe)
	if err != nil {
		// Unknown capacity is not a reason to refuse; the copy will fail
		// loudly if space runs out.
		logger.Warn("free-space probe failed", "path", probe, "error", err)
		return nil
	}
	if usage.Free < required {
		return types.RestoreError{Kind: types.RestoreInsufficientSpace}
	}
	return nil
}

// sealContainer packs the flat staging directory into a tar+zstd container.
func sealContainer(ctx context.Context, staging, containerPath string) error {
	out, err := os.Create(containerPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			continue
		}
		if err := addTarEntry(tw, staging, entry.Name()); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

func addTarEntry(tw *tar.Writer, staging, name string) error {
	path := filepath.Join(staging, name)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}

// extractContainer unpacks a container into the scratch directory. Member
// names are flat; anything with a path separator is rejected outright.
func extractContainer(ctx context.Context, containerPath, scratch string) error {
	in, err := os.Open(containerPath)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.ContainsAny(hdr.Name, "/\\") || hdr.Name == ".." {
			return fmt.Errorf("suspicious member name %q", hdr.Name)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		dest := filepath.Join(scratch, hdr.Name)
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
}

// copyAndDigest streams src to dst, hashing as it copies so integrity
// tracking costs a single read. Cancellation is polled per chunk.
func copyAndDigest(ctx context.Context, src, dst string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	tee := io.TeeReader(in, h)
	buf := make([]byte, copyChunkSize)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			os.Remove(dst)
			return "", 0, err
		}
		n, readErr := tee.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				out.Close()
				os.Remove(dst)
				return "", 0, err
			}
			written += int64(n)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			out.Close()
			os.Remove(dst)
			return "", 0, readErr
		}
	}

	if err := out.Close(); err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), written, nil
}

func digestFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return "", readErr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readManifest(scratch string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(scratch, manifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
