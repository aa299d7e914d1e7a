package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SergeiSkv/NullGuard/analyzer"
	"github.com/SergeiSkv/NullGuard/cache"
	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
	"github.com/SergeiSkv/NullGuard/priority"
	"github.com/SergeiSkv/NullGuard/version"
)

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Creates a .nullguard.yaml configuration file with default settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := createDefaultConfig(defaultConfigFile); err != nil {
			slog.Error("Failed to create config", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Created default configuration file: %s\n", defaultConfigFile)
		fmt.Println("\tEdit this file to customize your analysis settings")
		fmt.Println("")
		fmt.Println("Example usage:")
		fmt.Println("  nullguard --config=.nullguard.yaml .")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		var sb strings.Builder
		fmt.Fprintf(&sb, "NullGuard version %s\n", version.Version)
		fmt.Fprintf(&sb, "Commit: %s\n", version.CommitHash)
		fmt.Fprintf(&sb, "Built: %s\n", version.BuiltAt)
		fmt.Fprintf(&sb, "Kotlin reader: %s\n", readerStatus())
		fmt.Print(sb.String())
	},
}

func readerStatus() string {
	if kotlinsrc.IsAvailable() {
		return "tree-sitter"
	}
	return "unavailable (built without cgo)"
}

var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Show cache statistics",
	Long:  `Shows statistics about the cached analysis results.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		fc, err := cache.New(getProjectRoot(target))
		if err != nil {
			slog.Error("Failed to open cache", "error", err)
			os.Exit(1)
		}
		defer func() { _ = fc.Close() }()

		printStats(os.Stdout, fc)
	},
}

func printStats(w io.Writer, fc *cache.FileCache) {
	stats := fc.GetStats()

	var sb strings.Builder
	sb.WriteString("Cache Statistics:\n")
	sb.WriteString("====================\n")
	fmt.Fprintf(&sb, "Total files analyzed:  %d\n", stats["total_files"])
	fmt.Fprintf(&sb, "Total findings:        %d\n", stats["total_findings"])
	fmt.Fprintf(&sb, "Cache hits:            %d\n", stats["cache_hits"])
	fmt.Fprintf(&sb, "Cache misses:          %d\n", stats["cache_misses"])
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Cache location: %s\n", fc.GetCacheDir())

	if fileInfo, err := os.Stat(filepath.Join(fc.GetCacheDir(), cache.CacheFile)); err == nil {
		fmt.Fprintf(&sb, "Cache size:     %.2f KB\n", float64(fileInfo.Size())/1024)
	}
	_, _ = io.WriteString(w, sb.String())
}

var analyzerDescriptions = map[string]string{
	models.AnalyzerLowPriority.ConfigName(): "Legacy kotlin-stdlib-jre7/8 overloads ranked below kotlin-stdlib",
	models.AnalyzerNullability.ConfigName(): "JSR-305 annotations enforced at warn or strict level",
}

var listCmd = &cobra.Command{
	Use:   "list-analyzers",
	Short: "List all available analyzers",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available Analyzers:")
		fmt.Println("====================")
		for _, name := range analyzer.Names() {
			fmt.Printf("• %-15s %s\n", name, analyzerDescriptions[name])
		}
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the canonical form of the JSR-305 policy",
	Long: `Folds the --jsr305 tokens (or the ones from the config file) into a policy
and prints its canonical tokens, one per line.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := LoadConfig(configPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		policy := buildPolicy(policyTokens(settings, config))
		if err := describePolicy(os.Stdout, policy, jsonOutput); err != nil {
			slog.Error("Error encoding JSON", "error", err)
			os.Exit(1)
		}
	},
}

type policyOutput struct {
	Describe  []string                      `json:"describe"`
	Global    models.ReportLevel            `json:"global"`
	Migration *models.ReportLevel           `json:"migration,omitempty"`
	Overrides map[string]models.ReportLevel `json:"overrides,omitempty"`
	Disabled  bool                          `json:"disabled"`
}

func describePolicy(w io.Writer, policy *jsr305.Policy, asJSON bool) error {
	if !asJSON {
		for _, token := range policy.Describe() {
			if _, err := fmt.Fprintln(w, token); err != nil {
				return err
			}
		}
		return nil
	}

	out := policyOutput{
		Describe:  policy.Describe(),
		Global:    policy.Global(),
		Overrides: policy.Overrides(),
		Disabled:  policy.IsDisabled(),
	}
	if level, ok := policy.Migration(); ok {
		out.Migration = &level
	}
	return json.NewEncoder(w).Encode(out)
}

var migrationStatus string

var resolveCmd = &cobra.Command{
	Use:   "resolve <annotation>",
	Short: "Print the report level applied to an annotation",
	Example: `  nullguard resolve javax.annotation.Nonnull
  nullguard --jsr305 under-migration:warn resolve org.example.MyNullable --under-migration STRICT`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := LoadConfig(configPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		policy := buildPolicy(policyTokens(settings, config))
		fmt.Println(resolveLevel(policy, args[0], migrationStatus))
	},
}

// resolveLevel resolves an annotation name. A non-empty status marks the
// annotation class as @UnderMigration(status = MigrationStatus.<status>).
func resolveLevel(policy *jsr305.Policy, annotation, status string) models.ReportLevel {
	var migration *jsr305.Migration
	if status != "" {
		level, known := jsr305.MigrationStatusFromEnum(strings.ToUpper(status))
		migration = &jsr305.Migration{Status: level, Known: known}
	}
	return policy.Resolve(fqname.New(annotation), migration)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <file.kt>",
	Short: "Report which functions of a file are low priority stdlib overloads",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file, err := kotlinsrc.NewReader().ReadFile(cmd.Context(), args[0])
		if err != nil {
			slog.Error("Failed to read file", "file", args[0], "error", err)
			os.Exit(1)
		}
		printClassification(os.Stdout, file)
	},
}

func printClassification(w io.Writer, file *kotlinsrc.File) {
	for _, c := range file.Callables {
		mark := "normal"
		if priority.IsLowPriorityFromStdlibJre7Or8(c) {
			mark = "low-priority"
		}
		_, _ = fmt.Fprintf(w, "%s:%d\t%s\t%s\n", file.Path, c.Position.Line, c.FqName(), mark)
	}
}

func init() {
	resolveCmd.Flags().StringVar(&migrationStatus, "under-migration", "", "Treat the annotation as @UnderMigration with this status: IGNORE, WARN or STRICT")
}
