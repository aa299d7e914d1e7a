// Package cache keeps the findings of previous scans so unchanged files are
// not parsed again.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/SergeiSkv/NullGuard/models"
)

const (
	CacheDir     = ".nullguard"
	CacheFile    = "cache.json.zst"
	CacheVersion = "1"
)

type FileCache struct {
	mu       sync.RWMutex
	baseDir  string
	cacheDir string
	runID    string
	dirty    bool
	data     *CacheData
}

type CacheData struct {
	Version     string                 `json:"version"`
	LastRunID   string                 `json:"last_run_id,omitempty"`
	Files       map[string]*FileRecord `json:"files"`
	Stats       *CacheStats            `json:"stats"`
	LastUpdated time.Time              `json:"last_updated"`
}

// FileRecord holds the findings of one file. Key identifies everything besides
// the file content the findings depend on, such as the JSR-305 policy.
type FileRecord struct {
	Path              string                    `json:"path"`
	Hash              string                    `json:"hash"`
	Key               string                    `json:"key"`
	RunID             string                    `json:"run_id"`
	LastAnalyzed      time.Time                 `json:"last_analyzed"`
	AnnotationClasses []*models.AnnotationClass `json:"annotation_classes,omitempty"`
	Findings          []*models.Finding         `json:"findings"`
}

type CacheStats struct {
	TotalFiles    int       `json:"total_files"`
	TotalFindings int       `json:"total_findings"`
	LastFullScan  time.Time `json:"last_full_scan"`
	CacheHits     int       `json:"cache_hits"`
	CacheMisses   int       `json:"cache_misses"`
}

// New creates a new file-based cache
func New(baseDir string) (*FileCache, error) {
	if baseDir == "" {
		var err error
		baseDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	cacheDir := filepath.Join(baseDir, CacheDir)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fc := &FileCache{
		baseDir:  baseDir,
		cacheDir: cacheDir,
		runID:    uuid.New().String(),
		data:     emptyData(),
	}

	if err := fc.load(); err != nil {
		// a broken cache is rebuilt from scratch
		fc.data = emptyData()
		return fc, fmt.Errorf("%w: %w", ErrCacheDiscarded, err)
	}

	return fc, nil
}

func emptyData() *CacheData {
	return &CacheData{
		Version:     CacheVersion,
		Files:       make(map[string]*FileRecord, 100),
		Stats:       &CacheStats{},
		LastUpdated: time.Now(),
	}
}

// load reads cache from disk
func (fc *FileCache) load() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	compressed, err := os.ReadFile(filepath.Join(fc.cacheDir, CacheFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress cache: %w", err)
	}

	var cacheData CacheData
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&cacheData); err != nil {
		return fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	if cacheData.Version != CacheVersion {
		return fmt.Errorf("cache version mismatch: expected %s, got %s", CacheVersion, cacheData.Version)
	}
	if cacheData.Files == nil {
		cacheData.Files = make(map[string]*FileRecord, 100)
	}
	if cacheData.Stats == nil {
		cacheData.Stats = &CacheStats{}
	}

	fc.data = &cacheData
	return nil
}

// Flush writes the cache to disk if anything changed since the last write.
func (fc *FileCache) Flush() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if !fc.dirty {
		return nil
	}
	return fc.saveUnsafe()
}

// saveUnsafe writes cache to disk without locking (must be called with lock held)
func (fc *FileCache) saveUnsafe() error {
	fc.data.LastUpdated = time.Now()
	fc.data.LastRunID = fc.runID

	raw, err := json.Marshal(fc.data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	data := enc.EncodeAll(raw, make([]byte, 0, len(raw)/4))
	_ = enc.Close()

	cacheFile := filepath.Join(fc.cacheDir, CacheFile)
	tempFile := cacheFile + ".tmp"

	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	if err := os.Rename(tempFile, cacheFile); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to save cache: %w", err)
	}

	fc.dirty = false
	return nil
}

// CalculateFileHash calculates SHA256 hash of a file using streaming for better memory efficiency
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CachedAnnotations returns the annotation classes declared in a file when its
// content did not change since they were stored.
func (fc *FileCache) CachedAnnotations(filePath string) ([]*models.AnnotationClass, bool) {
	currentHash, err := CalculateFileHash(filePath)
	if err != nil {
		return nil, false
	}

	fc.mu.RLock()
	defer fc.mu.RUnlock()
	record, ok := fc.data.Files[filePath]
	if !ok || record.Hash != currentHash {
		return nil, false
	}
	return record.AnnotationClasses, true
}

// Lookup returns the cached findings of a file when neither its content nor
// the key changed since they were stored.
func (fc *FileCache) Lookup(filePath, key string) ([]*models.Finding, bool) {
	currentHash, err := CalculateFileHash(filePath)
	if err != nil {
		fc.count(false)
		return nil, false
	}

	fc.mu.RLock()
	record, ok := fc.data.Files[filePath]
	fc.mu.RUnlock()

	hit := ok && record.Hash == currentHash && record.Key == key
	fc.count(hit)
	if !hit {
		return nil, false
	}
	return cloneFindings(record.Findings), true
}

func (fc *FileCache) count(hit bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if hit {
		fc.data.Stats.CacheHits++
	} else {
		fc.data.Stats.CacheMisses++
	}
	fc.dirty = true
}

// Store saves or replaces the record of a file. Call Flush to persist it.
func (fc *FileCache) Store(
	filePath, key string, classes []*models.AnnotationClass, findings []*models.Finding,
) error {
	hash, err := CalculateFileHash(filePath)
	if err != nil {
		return err
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.data.Files[filePath] = &FileRecord{
		Path:              filePath,
		Hash:              hash,
		Key:               key,
		RunID:             fc.runID,
		LastAnalyzed:      time.Now(),
		AnnotationClasses: classes,
		Findings:          cloneFindings(findings),
	}
	fc.updateStats()
	fc.dirty = true
	return nil
}

// GetFileRecord retrieves a file record
func (fc *FileCache) GetFileRecord(filePath string) (*FileRecord, error) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	record, ok := fc.data.Files[filePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, filePath)
	}
	recordCopy := *record
	recordCopy.Findings = cloneFindings(record.Findings)
	return &recordCopy, nil
}

// MarkFullScan records the time of a scan over the whole project.
func (fc *FileCache) MarkFullScan() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.data.Stats.LastFullScan = time.Now()
	fc.dirty = true
}

// GetStats returns cache statistics
func (fc *FileCache) GetStats() map[string]interface{} {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return map[string]interface{}{
		"total_files":    fc.data.Stats.TotalFiles,
		"total_findings": fc.data.Stats.TotalFindings,
		"cache_hits":     fc.data.Stats.CacheHits,
		"cache_misses":   fc.data.Stats.CacheMisses,
		"last_full_scan": fc.data.Stats.LastFullScan,
		"last_updated":   fc.data.LastUpdated,
		"last_run_id":    fc.data.LastRunID,
	}
}

// updateStats recalculates statistics
func (fc *FileCache) updateStats() {
	stats := &CacheStats{
		CacheHits:    fc.data.Stats.CacheHits,
		CacheMisses:  fc.data.Stats.CacheMisses,
		LastFullScan: fc.data.Stats.LastFullScan,
	}

	for _, record := range fc.data.Files {
		stats.TotalFiles++
		stats.TotalFindings += len(record.Findings)
	}

	fc.data.Stats = stats
}

// ClearCache clears all cached data
func (fc *FileCache) ClearCache() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.data = emptyData()
	return fc.saveUnsafe()
}

// RunID identifies the process that opened the cache.
func (fc *FileCache) RunID() string {
	return fc.runID
}

// GetCacheDir returns the cache directory path
func (fc *FileCache) GetCacheDir() string {
	return fc.cacheDir
}

// Close flushes pending changes to disk.
func (fc *FileCache) Close() error {
	return fc.Flush()
}

func cloneFindings(src []*models.Finding) []*models.Finding {
	cloned := make([]*models.Finding, 0, len(src))
	for _, f := range src {
		if f == nil {
			continue
		}
		findingCopy := *f
		cloned = append(cloned, &findingCopy)
	}
	return cloned
}
