package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/SergeiSkv/NullGuard/analyzer"
	"github.com/SergeiSkv/NullGuard/cache"
	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
)

type scanResult struct {
	Findings    []*models.Finding
	Files       int
	Lines       int
	CacheHits   int
	ParseErrors int
}

// scanner runs the analyzers over every Kotlin file of a target. Annotation
// classes are collected from all files first, so a custom annotation declared
// in one file applies to its uses in the others.
type scanner struct {
	policy   *jsr305.Policy
	enabled  map[string]bool
	excludes map[string][]string
	cache    *cache.FileCache
	workers  int
}

func newScanner(config *Config, policy *jsr305.Policy, fc *cache.FileCache) *scanner {
	return &scanner{
		policy:   policy,
		enabled:  buildEnabledAnalyzers(config),
		excludes: buildAnalyzerExcludes(config),
		cache:    fc,
		workers:  runtime.NumCPU(),
	}
}

func (s *scanner) scan(ctx context.Context, paths []string) (*scanResult, error) {
	files := make([]*kotlinsrc.File, len(paths))
	classes := make([][]*models.AnnotationClass, len(paths))
	failed := make([]bool, len(paths))

	err := s.forEach(ctx, paths, func(r *kotlinsrc.Reader, i int, path string) {
		if s.cache != nil {
			if cached, ok := s.cache.CachedAnnotations(path); ok {
				classes[i] = cached
				return
			}
		}
		file, err := r.ReadFile(ctx, path)
		if err != nil {
			slog.Warn("Error parsing file", "file", path, "error", err)
			failed[i] = true
			return
		}
		files[i] = file
		classes[i] = file.AnnotationClasses
	})
	if err != nil {
		return nil, err
	}

	idx := analyzer.NewAnnotationIndex()
	for _, c := range classes {
		idx.AddClasses(c...)
	}
	policyKey, fingerprint := s.policy.String(), idx.Fingerprint()

	findings := make([][]*models.Finding, len(paths))
	hits := make([]bool, len(paths))
	err = s.forEach(ctx, paths, func(r *kotlinsrc.Reader, i int, path string) {
		if failed[i] {
			return
		}
		enabled := s.enabledFor(path)
		key := cache.Key(policyKey, fingerprint, enabledKey(enabled))
		if s.cache != nil {
			if cached, ok := s.cache.Lookup(path, key); ok {
				findings[i] = cached
				hits[i] = true
				return
			}
		}
		file := files[i]
		if file == nil {
			var err error
			if file, err = r.ReadFile(ctx, path); err != nil {
				slog.Warn("Error parsing file", "file", path, "error", err)
				failed[i] = true
				return
			}
		}
		findings[i] = analyzer.Analyze(file, s.policy, idx, enabled)
		if s.cache != nil {
			if err := s.cache.Store(path, key, file.AnnotationClasses, findings[i]); err != nil {
				slog.Debug("Failed to save to cache", "file", path, "error", err)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	result := &scanResult{Findings: make([]*models.Finding, 0, len(paths))}
	for i, path := range paths {
		if failed[i] {
			result.ParseErrors++
			continue
		}
		result.Files++
		result.Lines += countLines(path)
		if hits[i] {
			result.CacheHits++
		}
		result.Findings = append(result.Findings, findings[i]...)
	}
	sortFindings(result.Findings)

	if s.cache != nil {
		s.cache.MarkFullScan()
		if err := s.cache.Flush(); err != nil {
			slog.Warn("Failed to write cache", "error", err)
		}
	}
	return result, nil
}

// forEach hands the paths to a pool of workers, each with its own reader.
func (s *scanner) forEach(
	ctx context.Context, paths []string, fn func(r *kotlinsrc.Reader, i int, path string),
) error {
	workers := min(max(s.workers, 1), max(len(paths), 1))
	jobs := make(chan int, len(paths))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := kotlinsrc.NewReader()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(reader, i, paths[i])
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

// collectKotlinFiles walks the target and returns the Kotlin files not excluded by config.
func collectKotlinFiles(target string, excludes []string) ([]string, error) {
	var paths []string
	err := filepath.Walk(
		target, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			skip, skipDir := shouldSkipPath(path, info, excludes)
			if skipDir && path != target {
				return filepath.SkipDir
			}
			if skip {
				return nil
			}

			if !info.IsDir() && kotlinsrc.IsKotlinFile(path) {
				paths = append(paths, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", target, err)
	}
	return paths, nil
}

func sortFindings(findings []*models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Type < b.Type
	})
}

// buildEnabledAnalyzers builds the map of enabled analyzers from config
func buildEnabledAnalyzers(config *Config) map[string]bool {
	if config == nil {
		return nil // nil means run all
	}

	enabledAnalyzers := make(map[string]bool, len(analyzer.Names()))
	for _, name := range analyzer.Names() {
		enabledAnalyzers[name] = config.GetAnalyzerConfig(name).Enabled
	}
	return enabledAnalyzers
}

// buildAnalyzerExcludes collects the per-analyzer exclude patterns from config
func buildAnalyzerExcludes(config *Config) map[string][]string {
	if config == nil {
		return nil
	}

	excludes := make(map[string][]string)
	for _, name := range analyzer.Names() {
		if patterns := config.GetAnalyzerConfig(name).Exclude; len(patterns) > 0 {
			excludes[name] = patterns
		}
	}
	return excludes
}

// enabledFor narrows the enabled analyzers to the ones not excluding path.
func (s *scanner) enabledFor(path string) map[string]bool {
	if len(s.excludes) == 0 {
		return s.enabled
	}

	enabled := make(map[string]bool, len(analyzer.Names()))
	for _, name := range analyzer.Names() {
		on := s.enabled == nil || s.enabled[name]
		enabled[name] = on && !excludedFile(path, s.excludes[name])
	}
	return enabled
}

// enabledKey is the canonical form of an enable map, e.g.
// "lowpriority=true,nullability=false". A nil map enables everything.
func enabledKey(enabled map[string]bool) string {
	pairs := make([]string, 0, len(analyzer.Names()))
	for _, name := range analyzer.Names() {
		on := enabled == nil || enabled[name]
		pairs = append(pairs, name+"="+strconv.FormatBool(on))
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

func excludedFile(path string, patterns []string) bool {
	cleanPath := filepath.Clean(path)
	for _, exclude := range patterns {
		if kotlinsrc.IsKotlinFile(exclude) {
			if strings.HasSuffix(cleanPath, exclude) {
				return true
			}
			continue
		}
		if hasPathSegment(cleanPath, filepath.Clean(exclude)) || filepath.Base(cleanPath) == exclude {
			return true
		}
	}
	return false
}

// shouldSkipPath checks if a path should be skipped based on exclusion rules
func shouldSkipPath(path string, info os.FileInfo, excludes []string) (skip, skipDir bool) {
	cleanPath := filepath.Clean(path)

	for _, exclude := range excludes {
		cleanExclude := filepath.Clean(exclude)

		if kotlinsrc.IsKotlinFile(exclude) {
			// File pattern (e.g., "Test.kt")
			if !info.IsDir() && strings.HasSuffix(cleanPath, exclude) {
				return true, false
			}
			continue
		}

		if hasPathSegment(cleanPath, cleanExclude) || filepath.Base(cleanPath) == exclude {
			if info.IsDir() {
				return false, true
			}
			return true, false
		}
	}

	return false, false
}

// hasPathSegment matches whole path elements, so "out" excludes "app/out" but not "layout".
func hasPathSegment(path, segment string) bool {
	if segment == "." || segment == "" {
		return false
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	want := strings.Split(filepath.ToSlash(segment), "/")
	for i := 0; i+len(want) <= len(parts); i++ {
		match := true
		for j := range want {
			if parts[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// countLines counts the number of lines in a file
func countLines(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer func() {
		_ = file.Close()
	}()

	sc := bufio.NewScanner(file)
	lineCount := 0
	for sc.Scan() {
		lineCount++
	}
	return lineCount
}
