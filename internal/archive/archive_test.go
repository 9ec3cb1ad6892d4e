package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

func writeSource(t *testing.T, dir, name string, content []byte) types.FileRecord {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return types.FileRecord{
		Path:     path,
		Size:     int64(len(content)),
		Modified: time.Now().Add(-time.Hour),
		Kind:     types.KindDocument,
	}
}

func sha(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func TestArchive_CreatesContainerAndDiscardStaging(t *testing.T) {
	srcDir := t.TempDir()
	storeDir := t.TempDir()
	rec := writeSource(t, srcDir, "a.txt", []byte("hello archive"))

	store := NewStore(storeDir)
	ref, err := store.Archive(context.Background(), []types.FileRecord{rec}, "")

	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, 1, ref.FileCount)
	assert.Equal(t, rec.Size, ref.TotalSize)
	assert.FileExists(t, ref.Path)
	assert.Contains(t, filepath.Base(ref.Path), "backup_")

	// Staging directories are gone once the container is sealed.
	entries, err := os.ReadDir(storeDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir())
}

func TestArchive_FailsOnEmptySet(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Archive(context.Background(), nil, "")

	assert.Error(t, err)
}

func TestArchive_FailsWhenSourceUnreadable(t *testing.T) {
	store := NewStore(t.TempDir())
	ghost := types.FileRecord{Path: "/nonexistent/file.txt", Size: 10}

	_, err := store.Archive(context.Background(), []types.FileRecord{ghost}, "")

	assert.Error(t, err)
}

func TestRestore_RoundTripsBytesExactly(t *testing.T) {
	srcDir := t.TempDir()
	content := []byte("precious bytes that must survive")
	rec := writeSource(t, srcDir, "nested/dir/file.bin", content)

	store := NewStore(t.TempDir())
	ref, err := store.Archive(context.Background(), []types.FileRecord{rec}, "")
	require.NoError(t, err)

	// Simulate the deletion the backup protects against.
	require.NoError(t, os.Remove(rec.Path))

	outcome, err := store.Restore(context.Background(), *ref, "")

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Restored)
	assert.Equal(t, 0, outcome.Failed)

	restored, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, sha(content), sha(restored))
}

func TestRestore_ReRootsUnderDestinationDir(t *testing.T) {
	srcDir := t.TempDir()
	rec := writeSource(t, srcDir, "data.txt", []byte("rerooted"))

	store := NewStore(t.TempDir())
	ref, err := store.Archive(context.Background(), []types.FileRecord{rec}, "")
	require.NoError(t, err)

	destDir := t.TempDir()
	outcome, err := store.Restore(context.Background(), *ref, destDir)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Restored)
	assert.FileExists(t, filepath.Join(destDir, rec.Path))
}

func TestRestorePaths_RestoresOnlyNamedEntries(t *testing.T) {
	srcDir := t.TempDir()
	wanted := writeSource(t, srcDir, "wanted.txt", []byte("bring me back"))
	other := writeSource(t, srcDir, "other.txt", []byte("archived other"))

	store := NewStore(t.TempDir())
	ref, err := store.Archive(context.Background(), []types.FileRecord{wanted, other}, "")
	require.NoError(t, err)

	// One file is deleted; the other lives on and is rewritten.
	require.NoError(t, os.Remove(wanted.Path))
	require.NoError(t, os.WriteFile(other.Path, []byte("live content written later"), 0o644))

	outcome, err := store.RestorePaths(context.Background(), *ref, "", []string{wanted.Path})

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Restored)
	assert.Equal(t, 0, outcome.Failed)

	restored, err := os.ReadFile(wanted.Path)
	require.NoError(t, err)
	assert.Equal(t, "bring me back", string(restored))

	live, err := os.ReadFile(other.Path)
	require.NoError(t, err)
	assert.Equal(t, "live content written later", string(live))
}

func TestRestore_RemovesStaleDestinationFirst(t *testing.T) {
	srcDir := t.TempDir()
	content := []byte("authoritative content")
	rec := writeSource(t, srcDir, "file.txt", content)

	store := NewStore(t.TempDir())
	ref, err := store.Archive(context.Background(), []types.FileRecord{rec}, "")
	require.NoError(t, err)

	// A stale, longer file sits at the destination.
	require.NoError(t, os.WriteFile(rec.Path, []byte("stale stale stale stale stale stale"), 0o644))

	outcome, err := store.Restore(context.Background(), *ref, "")

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Restored)
	restored, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, content, restored)
}

func TestRestore_SkipsCorruptEntries_RestoresRest(t *testing.T) {
	// Build a container by hand with one good and one lying manifest entry.
	storeDir := t.TempDir()
	victimDir := t.TempDir()
	goodContent := []byte("good entry content")
	badContent := []byte("bad entry content")
	goodPath := filepath.Join(victimDir, "good.txt")
	badPath := filepath.Join(victimDir, "bad.txt")

	id := uuid.NewString()
	staging := filepath.Join(storeDir, "stage-"+id)
	require.NoError(t, os.MkdirAll(staging, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(staging, flattenName(goodPath)), goodContent, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(staging, flattenName(badPath)), badContent, 0o600))

	manifest := Manifest{
		ArchiveID: id,
		CreatedAt: time.Now().UTC(),
		Entries: []ManifestEntry{
			{OriginalPath: goodPath, Size: int64(len(goodContent)), Kind: "document", SHA256: sha(goodContent)},
			{OriginalPath: badPath, Size: int64(len(badContent)), Kind: "document", SHA256: sha([]byte("something else entirely"))},
		},
	}
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staging, manifestName), data, 0o600))

	containerPath := filepath.Join(storeDir, "backup_"+time.Now().UTC().Format(stampLayout)+"_"+id+containerExt)
	require.NoError(t, sealContainer(context.Background(), staging, containerPath))
	require.NoError(t, os.RemoveAll(staging))

	store := NewStore(storeDir)
	ref := types.ArchiveRef{ID: id, Path: containerPath}
	outcome, err := store.Restore(context.Background(), ref, "")

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Restored)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, types.RestoreBackupCorrupted, outcome.Errors[0].Kind)
	assert.FileExists(t, goodPath)
	assert.NoFileExists(t, badPath)
}

func TestRestore_FailsWhenContainerMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	ref := types.ArchiveRef{ID: "gone", Path: "/nonexistent/backup.tar.zst"}

	_, err := store.Restore(context.Background(), ref, "")

	var restoreErr types.RestoreError
	require.ErrorAs(t, err, &restoreErr)
	assert.Equal(t, types.RestoreBackupNotFound, restoreErr.Kind)
}

func TestList_ReturnsContainersNewestFirst(t *testing.T) {
	srcDir := t.TempDir()
	storeDir := t.TempDir()
	store := NewStore(storeDir)

	first := writeSource(t, srcDir, "first.txt", []byte("one"))
	refA, err := store.Archive(context.Background(), []types.FileRecord{first}, "")
	require.NoError(t, err)

	refs, err := store.List()
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, refA.ID, refs[0].ID)
}

func TestDelete_RemovesContainer(t *testing.T) {
	srcDir := t.TempDir()
	store := NewStore(t.TempDir())
	rec := writeSource(t, srcDir, "x.txt", []byte("x"))
	ref, err := store.Archive(context.Background(), []types.FileRecord{rec}, "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(*ref))

	assert.NoFileExists(t, ref.Path)
	refs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestDelete_FailsWhenAlreadyGone(t *testing.T) {
	store := NewStore(t.TempDir())

	err := store.Delete(types.ArchiveRef{ID: "x", Path: "/nonexistent/backup.tar.zst"})

	var restoreErr types.RestoreError
	require.ErrorAs(t, err, &restoreErr)
	assert.Equal(t, types.RestoreBackupNotFound, restoreErr.Kind)
}

func TestFlattenName_IsCollisionFree(t *testing.T) {
	a := flattenName("/tmp/a/b.txt")
	b := flattenName("/tmp/a%2Fb.txt")

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "/")
}

func TestArchive_Cancelled_LeavesNoContainer(t *testing.T) {
	srcDir := t.TempDir()
	storeDir := t.TempDir()
	rec := writeSource(t, srcDir, "a.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(storeDir)
	_, err := store.Archive(ctx, []types.FileRecord{rec}, "")

	require.Error(t, err)
	entries, readErr := os.ReadDir(storeDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
