package classify

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomerGlick/MacCleaner-sub001/internal/config"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

func writeRecord(t *testing.T, dir, name string, content []byte) types.FileRecord {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return types.FileRecord{
		Path: path,
		Size: int64(len(content)),
		Perm: types.Permissions{Readable: true, Writable: true, Deletable: true},
	}
}

func TestFindDuplicates_GroupsIdenticalContent(t *testing.T) {
	// Two identical 2 MB files under different paths form one group.
	dir := t.TempDir()
	content := bytes.Repeat([]byte("d"), 2*1024*1024)
	a := writeRecord(t, dir, "one/copy.bin", content)
	b := writeRecord(t, dir, "two/copy.bin", content)

	c := New(stubGuard{}, config.DefaultThresholds())
	groups, err := c.FindDuplicates(context.Background(), []types.FileRecord{a, b})

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Files, 2)
	assert.Equal(t, int64(2*1024*1024), groups[0].WastedSpace())
	assert.Len(t, groups[0].Hash, 64) // hex SHA-256
}

func TestFindDuplicates_SameSizeDifferentContent_NoGroup(t *testing.T) {
	dir := t.TempDir()
	a := writeRecord(t, dir, "a.bin", bytes.Repeat([]byte("a"), 1<<20))
	b := writeRecord(t, dir, "b.bin", bytes.Repeat([]byte("b"), 1<<20))

	c := New(stubGuard{}, config.DefaultThresholds())
	groups, err := c.FindDuplicates(context.Background(), []types.FileRecord{a, b})

	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_SkipsFilesBelowMinSize(t *testing.T) {
	dir := t.TempDir()
	content := []byte("tiny but identical")
	a := writeRecord(t, dir, "a.txt", content)
	b := writeRecord(t, dir, "b.txt", content)

	c := New(stubGuard{}, config.DefaultThresholds())
	groups, err := c.FindDuplicates(context.Background(), []types.FileRecord{a, b})

	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_HonoursLoweredThreshold(t *testing.T) {
	dir := t.TempDir()
	content := []byte("small duplicate content")
	a := writeRecord(t, dir, "a.txt", content)
	b := writeRecord(t, dir, "b.txt", content)

	th := config.DefaultThresholds()
	th.DuplicateMinBytes = 1
	c := New(stubGuard{}, th)
	groups, err := c.FindDuplicates(context.Background(), []types.FileRecord{a, b})

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, [2]string{a.Path, b.Path}, [2]string{groups[0].Files[0].Path, groups[0].Files[1].Path})
}

func TestFindDuplicates_ThreeWayGroup(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("x"), 1<<20)
	recs := []types.FileRecord{
		writeRecord(t, dir, "a", content),
		writeRecord(t, dir, "b", content),
		writeRecord(t, dir, "c", content),
	}

	c := New(stubGuard{}, config.DefaultThresholds())
	groups, err := c.FindDuplicates(context.Background(), recs)

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Files, 3)
	assert.Equal(t, int64(2<<20), groups[0].WastedSpace())
}

func TestFindDuplicates_FailsFast_WhenCancelled(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("x"), 1<<20)
	a := writeRecord(t, dir, "a", content)
	b := writeRecord(t, dir, "b", content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(stubGuard{}, config.DefaultThresholds())
	_, err := c.FindDuplicates(ctx, []types.FileRecord{a, b})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindDuplicates_SkipsUnreadableCandidates(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("x"), 1<<20)
	a := writeRecord(t, dir, "a", content)
	b := writeRecord(t, dir, "b", content)
	ghost := types.FileRecord{Path: filepath.Join(dir, "missing"), Size: int64(len(content))}

	c := New(stubGuard{}, config.DefaultThresholds())
	groups, err := c.FindDuplicates(context.Background(), []types.FileRecord{a, b, ghost})

	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Files, 2)
}
