package cache

import (
	"errors"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/NullGuard/models"
)

func writeKotlin(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "Test.kt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewFileCache(t *testing.T) {
	tdir := t.TempDir()
	fc, err := New(tdir)
	require.NoError(t, err)
	require.NotNil(t, fc)
	require.Equal(t, filepath.Join(tdir, CacheDir), fc.GetCacheDir())
	require.NotEmpty(t, fc.RunID())
}

func TestStoreAndLookup(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "package kotlin")

	fc, err := New(tdir)
	require.NoError(t, err)

	level := models.ReportLevelStrict
	finding := &models.Finding{ID: "f-1", Type: models.FindingNullabilityAnnotation, Level: &level, Line: 3}
	require.NoError(t, fc.Store(testFile, "key-a", nil, []*models.Finding{finding}))

	cached, ok := fc.Lookup(testFile, "key-a")
	require.True(t, ok)
	require.Len(t, cached, 1)
	require.Equal(t, "f-1", cached[0].ID)
	require.NotSame(t, finding, cached[0])

	_, ok = fc.Lookup(testFile, "key-b")
	require.False(t, ok, "another policy must miss")

	record, err := fc.GetFileRecord(testFile)
	require.NoError(t, err)
	require.NotEmpty(t, record.Hash)
	require.Equal(t, fc.RunID(), record.RunID)
}

func TestLookupAfterChange(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "package a")

	fc, err := New(tdir)
	require.NoError(t, err)
	require.NoError(t, fc.Store(testFile, "k", nil, nil))

	_, ok := fc.Lookup(testFile, "k")
	require.True(t, ok)

	require.NoError(t, os.WriteFile(testFile, []byte("package b"), 0o644))
	_, ok = fc.Lookup(testFile, "k")
	require.False(t, ok)

	_, ok = fc.Lookup(filepath.Join(tdir, "missing.kt"), "k")
	require.False(t, ok)
}

func TestPersistence(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "package kotlin")

	fc, err := New(tdir)
	require.NoError(t, err)
	level := models.ReportLevelWarn
	require.NoError(t, fc.Store(testFile, "k", nil, []*models.Finding{{ID: "x", Level: &level}}))
	require.NoError(t, fc.Close())

	_, err = os.Stat(filepath.Join(tdir, CacheDir, CacheFile))
	require.NoError(t, err)

	reopened, err := New(tdir)
	require.NoError(t, err)
	cached, ok := reopened.Lookup(testFile, "k")
	require.True(t, ok)
	require.Len(t, cached, 1)
	require.NotNil(t, cached[0].Level)
	require.Equal(t, models.ReportLevelWarn, *cached[0].Level)
}

func TestCorruptCacheIsDiscarded(t *testing.T) {
	tdir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tdir, CacheDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tdir, CacheDir, CacheFile), []byte("not zstd"), 0o644))

	fc, err := New(tdir)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCacheDiscarded))
	require.NotNil(t, fc)
	require.Equal(t, 0, fc.GetStats()["total_files"])
}

func TestGetFileRecordMissing(t *testing.T) {
	fc, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = fc.GetFileRecord("nope.kt")
	require.ErrorIs(t, err, ErrNotCached)
}

func TestGetStats(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "package kotlin")

	fc, err := New(tdir)
	require.NoError(t, err)

	require.NoError(t, fc.Store(testFile, "k", nil, []*models.Finding{{ID: "1"}, {ID: "2"}}))
	_, _ = fc.Lookup(testFile, "k")
	_, _ = fc.Lookup(testFile, "other")
	fc.MarkFullScan()

	stats := fc.GetStats()
	require.Equal(t, 1, stats["total_files"])
	require.Equal(t, 2, stats["total_findings"])
	require.Equal(t, 1, stats["cache_hits"])
	require.Equal(t, 1, stats["cache_misses"])
}

func TestClearCache(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "package kotlin")

	fc, err := New(tdir)
	require.NoError(t, err)
	require.NoError(t, fc.Store(testFile, "k", nil, nil))
	require.NoError(t, fc.ClearCache())

	_, err = fc.GetFileRecord(testFile)
	require.Error(t, err)
}

func TestKey(t *testing.T) {
	require.Equal(t, Key("warn", "a"), Key("warn", "a"))
	require.NotEqual(t, Key("warn", "a"), Key("strict", "a"))
	require.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	require.Len(t, Key(), 16)
}

func TestCachedAnnotations(t *testing.T) {
	tdir := t.TempDir()
	testFile := writeKotlin(t, tdir, "annotation class A")

	fc, err := New(tdir)
	require.NoError(t, err)

	_, ok := fc.CachedAnnotations(testFile)
	require.False(t, ok)

	classes := []*models.AnnotationClass{{Position: token.Position{Line: 1}}}
	require.NoError(t, fc.Store(testFile, "k", classes, nil))

	got, ok := fc.CachedAnnotations(testFile)
	require.True(t, ok)
	require.Len(t, got, 1)

	require.NoError(t, os.WriteFile(testFile, []byte("annotation class B"), 0o644))
	_, ok = fc.CachedAnnotations(testFile)
	require.False(t, ok)
}
