//go:build cgo

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/NullGuard/cache"
	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/models"
)

const (
	annotationSource = `package org.example

import kotlin.annotations.jvm.MigrationStatus
import kotlin.annotations.jvm.UnderMigration

@UnderMigration(status = MigrationStatus.STRICT)
annotation class MyNullable
`

	useSource = `package org.example

fun take(@MyNullable value: String) {}

// nullguard:ignore-next-line
fun skipped(@MyNullable value: String) {}
`

	stdlibSource = `package kotlin

@SinceKotlin("1.1")
fun <T : AutoCloseable?, R> T.use(block: (T) -> R): R = block(this)
`
)

func writeProject(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Annotations.kt": annotationSource,
		"Use.kt":         useSource,
		"Stdlib.kt":      stdlibSource,
	}
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	paths, err := collectKotlinFiles(dir, DefaultConfig().Paths.Exclude)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	return dir, paths
}

func findingsByType(findings []*models.Finding) map[models.FindingType][]string {
	out := make(map[models.FindingType][]string)
	for _, f := range findings {
		out[f.Type] = append(out[f.Type], f.Symbol)
	}
	return out
}

func TestScanAcrossFiles(t *testing.T) {
	_, paths := writeProject(t)

	result, err := newScanner(DefaultConfig(), jsr305.Default, nil).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Equal(t, 3, result.Files)
	require.Zero(t, result.ParseErrors)

	got := findingsByType(result.Findings)
	require.Equal(t, []string{"kotlin.use"}, got[models.FindingLowPriorityOverload])
	require.Equal(t, []string{"org.example.take.value"}, got[models.FindingNullabilityAnnotation])
	for _, f := range result.Findings {
		if f.Type == models.FindingNullabilityAnnotation {
			require.Equal(t, models.SeverityLevelHigh, f.Severity)
		}
	}
}

func TestScanPolicyAndConfig(t *testing.T) {
	_, paths := writeProject(t)

	result, err := newScanner(DefaultConfig(), jsr305.FromArgs([]string{"under-migration:ignore"}), nil).
		scan(context.Background(), paths)
	require.NoError(t, err)
	require.Empty(t, findingsByType(result.Findings)[models.FindingNullabilityAnnotation])

	cfg := DefaultConfig()
	cfg.Analyzers.LowPriority.Enabled = false
	result, err = newScanner(cfg, jsr305.Default, nil).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Empty(t, findingsByType(result.Findings)[models.FindingLowPriorityOverload])

	cfg = DefaultConfig()
	cfg.Analyzers.Nullability.Exclude = []string{"Use.kt"}
	result, err = newScanner(cfg, jsr305.Default, nil).scan(context.Background(), paths)
	require.NoError(t, err)
	got := findingsByType(result.Findings)
	require.Empty(t, got[models.FindingNullabilityAnnotation])
	require.Equal(t, []string{"kotlin.use"}, got[models.FindingLowPriorityOverload])
}

func TestScanWithCache(t *testing.T) {
	dir, paths := writeProject(t)

	fc, err := cache.New(dir)
	require.NoError(t, err)

	first, err := newScanner(DefaultConfig(), jsr305.Default, fc).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Zero(t, first.CacheHits)

	reopened, err := cache.New(dir)
	require.NoError(t, err)
	second, err := newScanner(DefaultConfig(), jsr305.Default, reopened).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Equal(t, 3, second.CacheHits)
	require.Equal(t, findingsByType(first.Findings), findingsByType(second.Findings))

	// turning an analyzer off must not replay its stored findings
	lowOff := DefaultConfig()
	lowOff.Analyzers.LowPriority.Enabled = false
	disabled, err := newScanner(lowOff, jsr305.Default, reopened).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Zero(t, disabled.CacheHits)
	require.Empty(t, findingsByType(disabled.Findings)[models.FindingLowPriorityOverload])
	require.NotEmpty(t, findingsByType(disabled.Findings)[models.FindingNullabilityAnnotation])

	// another policy must not reuse the stored findings
	third, err := newScanner(DefaultConfig(), jsr305.FromArgs([]string{"under-migration:warn"}), reopened).
		scan(context.Background(), paths)
	require.NoError(t, err)
	require.Zero(t, third.CacheHits)
	for _, f := range third.Findings {
		if f.Type == models.FindingNullabilityAnnotation {
			require.Equal(t, models.SeverityLevelMedium, f.Severity)
		}
	}

	// changing the annotation class invalidates the files using it
	changed := []byte(annotationSource[:len(annotationSource)-len("annotation class MyNullable\n")] + "annotation class Other\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Annotations.kt"), changed, 0o644))
	fourth, err := newScanner(DefaultConfig(), jsr305.Default, reopened).scan(context.Background(), paths)
	require.NoError(t, err)
	require.Empty(t, findingsByType(fourth.Findings)[models.FindingNullabilityAnnotation])
}

func TestScanCanceled(t *testing.T) {
	_, paths := writeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(DefaultConfig(), jsr305.Default, nil).scan(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)
}
