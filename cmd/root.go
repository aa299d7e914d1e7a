package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SergeiSkv/NullGuard/analyzer"
	"github.com/SergeiSkv/NullGuard/cache"
	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
	"github.com/SergeiSkv/NullGuard/version"
)

var (
	jsonOutput  bool
	configPath  string
	compact     bool
	verbose     bool
	logLevel    string
	enableCache bool
	clearCache  bool
	logger      *slog.Logger
)

// JSONOutput represents the JSON structure for results
type JSONOutput struct {
	Target    string            `json:"target"`
	Policy    []string          `json:"policy"`
	Summary   Summary           `json:"summary"`
	Findings  []*models.Finding `json:"findings"`
	FileStats []fileStat        `json:"file_stats"`
}

// Summary contains overall statistics
type Summary struct {
	TotalFindings int `json:"total_findings"`
	High          int `json:"high"`
	Medium        int `json:"medium"`
	Low           int `json:"low"`
	Files         int `json:"files"`
	Lines         int `json:"lines"`
	CacheHits     int `json:"cache_hits"`
	ParseErrors   int `json:"parse_errors"`
}

type fileStat struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

var rootCmd = &cobra.Command{
	Use:   "nullguard [path]",
	Short: "NullGuard - JSR-305 report levels and stdlib overload priority for Kotlin sources",
	Long: `NullGuard scans Kotlin sources the way the compiler's JSR-305 support sees them.
It reports declarations whose nullability annotations are enforced at warn or
strict level, and the legacy kotlin-stdlib-jre7/8 overloads that lose overload
resolution against their kotlin-stdlib counterparts.`,
	Example: `
  nullguard .                                    # Scan current directory
  nullguard --jsr305 strict ./src                # Enforce every JSR-305 annotation
  nullguard --jsr305 ignore,@org.example.NonNull:warn .
  nullguard --json .                             # JSON output for CI/CD
  nullguard --compact .                          # Compact IDE-friendly output`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = append(args, ".")
		}
		target := args[0]
		slog.Debug("Starting scan", "version", version.String(), "target", target)

		if _, err := os.Stat(target); os.IsNotExist(err) {
			slog.Error("Path does not exist", "path", target)
			os.Exit(1)
		}

		if !kotlinsrc.IsAvailable() {
			slog.Error("Kotlin reader unavailable", "error", kotlinsrc.ErrUnavailable)
			os.Exit(1)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		applyOutputFormat(cmd, config)

		policy := buildPolicy(policyTokens(settings, config))

		var fc *cache.FileCache
		if enableCache || config.Cache.Enabled {
			fc = openCache(target)
			if fc != nil {
				defer func() { _ = fc.Close() }()
			}
		}

		paths, err := collectKotlinFiles(target, config.Paths.Exclude)
		if err != nil {
			slog.Error("Error scanning target", "error", err)
			os.Exit(1)
		}

		result, err := newScanner(config, policy, fc).scan(cmd.Context(), paths)
		if err != nil {
			slog.Error("Scan interrupted", "error", err)
			os.Exit(1)
		}

		if jsonOutput {
			err = outputJSON(os.Stdout, target, policy, result, config.Output.MaxFindings)
		} else {
			outputHuman(os.Stdout, result, config.Output.MaxFindings)
			fmt.Fprintf(os.Stderr, "\nAnalyzed %d files (%d lines of code)\n", result.Files, result.Lines)
		}
		if err != nil {
			slog.Error("Error encoding JSON", "error", err)
			os.Exit(1)
		}

		// Exit with error code if strict findings remain
		if high, _, _ := countBySeverity(result.Findings); high > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	flags.StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	flags.BoolVarP(&compact, "compact", "", false, "Compact IDE-friendly output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	flags.StringVarP(&logLevel, "log-level", "", "info", "Log level: debug, info, warn, error")
	flags.BoolVar(&enableCache, "enable-cache", false, "Enable file cache for faster subsequent runs")
	flags.BoolVar(&clearCache, "clear-cache", false, "Clear the cache before analyzing")
	flags.StringSlice(jsr305Key, nil, "JSR-305 policy tokens: ignore|warn|strict, under-migration:<level>, @<fq.Name>:<level>")
	bindPolicyFlag(settings, flags)

	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(classifyCmd)

	// Setup logger
	cobra.OnInitialize(initLogger)
}

func initLogger() {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time, level, source - only show message and custom attrs
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.SourceKey {
				return slog.Attr{}
			}
			return a
		},
	}

	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func Execute() error {
	return rootCmd.Execute()
}

// applyOutputFormat lets the config pick the format unless a flag already did.
func applyOutputFormat(cmd *cobra.Command, config *Config) {
	if cmd.Flags().Changed("json") || cmd.Flags().Changed("compact") {
		return
	}
	switch config.Output.Format {
	case formatJSON:
		jsonOutput = true
	case formatCompact:
		compact = true
	}
}

func openCache(target string) *cache.FileCache {
	fc, err := cache.New(getProjectRoot(target))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheDiscarded) || fc == nil {
			slog.Warn("Failed to open cache", "error", err)
			return nil
		}
		slog.Warn("Rebuilding cache", "error", err)
	}

	if clearCache {
		if err := fc.ClearCache(); err != nil {
			slog.Warn("Failed to clear cache", "error", err)
		} else {
			slog.Info("Cache cleared")
		}
	}
	return fc
}

func outputJSON(w io.Writer, target string, policy *jsr305.Policy, result *scanResult, maxFindings int) error {
	fileStats := make([]fileStat, 0, 16)
	findFileIndex := func(filename string) int {
		for i, f := range fileStats {
			if f.Filename == filename {
				return i
			}
		}
		return -1
	}

	for _, finding := range result.Findings {
		if idx := findFileIndex(finding.File); idx == -1 {
			fileStats = append(fileStats, fileStat{Filename: finding.File, Count: 1})
		} else {
			fileStats[idx].Count++
		}
	}

	high, medium, low := countBySeverity(result.Findings)
	output := JSONOutput{
		Target: target,
		Policy: policy.Describe(),
		Summary: Summary{
			TotalFindings: len(result.Findings),
			High:          high,
			Medium:        medium,
			Low:           low,
			Files:         result.Files,
			Lines:         result.Lines,
			CacheHits:     result.CacheHits,
			ParseErrors:   result.ParseErrors,
		},
		Findings:  limitFindings(result.Findings, maxFindings),
		FileStats: fileStats,
	}

	return json.NewEncoder(w).Encode(output)
}

func outputHuman(w io.Writer, result *scanResult, maxFindings int) {
	if len(result.Findings) == 0 {
		_, _ = fmt.Fprintln(w, "✅ No findings!")
		return
	}

	shown := limitFindings(bySeverity(result.Findings), maxFindings)
	if compact {
		printCompactFindings(w, shown)
	} else {
		printGroupedFindings(w, shown)
	}
	if len(shown) < len(result.Findings) {
		_, _ = fmt.Fprintf(w, "... %d more findings not shown\n", len(result.Findings)-len(shown))
	}

	high, medium, low := countBySeverity(result.Findings)
	_, _ = fmt.Fprintf(w, "Summary: %d HIGH, %d MEDIUM, %d LOW\n", high, medium, low)
}

// bySeverity returns a copy sorted HIGH first, then by NG code.
func bySeverity(findings []*models.Finding) []*models.Finding {
	sorted := append([]*models.Finding(nil), findings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity > sorted[j].Severity
		}
		return sorted[i].Type < sorted[j].Type
	})
	return sorted
}

func limitFindings(findings []*models.Finding, maxFindings int) []*models.Finding {
	if maxFindings <= 0 || len(findings) <= maxFindings {
		return findings
	}
	return findings[:maxFindings]
}

type analyzerGroup struct {
	Icon     string
	Analyzer models.AnalyzerType
}

var analyzerGroups = []analyzerGroup{
	{Icon: "🛡️", Analyzer: models.AnalyzerNullability},
	{Icon: "📦", Analyzer: models.AnalyzerLowPriority},
}

func printGroupedFindings(w io.Writer, findings []*models.Finding) {
	var sb strings.Builder
	sb.Grow(len(findings) * 200)

	for _, g := range analyzerGroups {
		group := make([]*models.Finding, 0, len(findings))
		for _, finding := range findings {
			if finding.Type.GetAnalyzer() == g.Analyzer {
				group = append(group, finding)
			}
		}
		if len(group) == 0 {
			continue
		}

		sb.WriteString(g.Icon)
		sb.WriteString(" ")
		sb.WriteString(analyzer.DisplayName(g.Analyzer))
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(len(group)))
		sb.WriteString(" findings):\n")
		sb.WriteString(strings.Repeat("─", 50) + "\n")
		addGroupFindings(&sb, group)
		sb.WriteString("\n")
	}
	_, _ = io.WriteString(w, sb.String())
}

func addGroupFindings(sb *strings.Builder, findings []*models.Finding) {
	for _, finding := range findings {
		sb.WriteString("\t")
		sb.WriteString(getSeverityIcon(finding.Severity))
		sb.WriteString(" ")
		sb.WriteString(finding.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(finding.Line))
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(finding.Column))
		sb.WriteString(" [")
		sb.WriteString(finding.Type.GetNGID())
		sb.WriteString("]\n")
		sb.WriteString("\t\t")
		sb.WriteString(finding.Message)
		sb.WriteString("\n")
		if finding.Suggestion != "" {
			sb.WriteString("\t\t")
			sb.WriteString(finding.Suggestion)
			sb.WriteString("\n")
		}
	}
}

func printCompactFindings(w io.Writer, findings []*models.Finding) {
	var sb strings.Builder
	sb.Grow(len(findings) * 150)

	for _, finding := range findings {
		// Standard compiler error format that all IDEs understand
		fmt.Fprintf(
			&sb, "%s:%d:%d: %s [%s] %s - %s\n",
			finding.File, finding.Line, finding.Column,
			getSeverityIcon(finding.Severity), finding.Type.GetNGID(), finding.Message, finding.Suggestion,
		)
	}
	_, _ = io.WriteString(w, sb.String())
}

func getSeverityIcon(severity models.SeverityLevel) string {
	switch severity {
	case models.SeverityLevelHigh:
		return "🔴"
	case models.SeverityLevelMedium:
		return "🟡"
	case models.SeverityLevelLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func countBySeverity(findings []*models.Finding) (high, medium, low int) {
	for _, finding := range findings {
		switch finding.Severity {
		case models.SeverityLevelHigh:
			high++
		case models.SeverityLevelMedium:
			medium++
		case models.SeverityLevelLow:
			low++
		}
	}
	return
}

const defaultConfigFile = ".nullguard.yaml"

func createDefaultConfig(path string) error {
	yamlData, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	const configFileMode = 0o644
	if err := os.WriteFile(path, yamlData, configFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var projectMarkers = []string{
	"settings.gradle.kts",
	"settings.gradle",
	"build.gradle.kts",
	"build.gradle",
	"pom.xml",
	".git",
}

// getProjectRoot finds the closest directory holding a Gradle, Maven or git marker
func getProjectRoot(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	// If it's a file, start from its directory
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	current := absPath
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(current, marker)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Reached root, return original path
			return absPath
		}
		current = parent
	}
}
