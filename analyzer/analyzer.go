package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
)

type Analyzer interface {
	Name() string
	Analyze(file *kotlinsrc.File) []*models.Finding
}

// AnnotationIndex maps annotation class names to their declarations across
// every file of a scan, so a custom annotation can be used in another file
// than the one declaring it.
type AnnotationIndex map[fqname.FqName]*models.AnnotationClass

// NewAnnotationIndex collects the annotation classes of the given files.
// The first declaration of a name wins.
func NewAnnotationIndex(files ...*kotlinsrc.File) AnnotationIndex {
	idx := make(AnnotationIndex, 16)
	for _, f := range files {
		idx.Add(f)
	}
	return idx
}

// Add records the annotation classes declared in f.
func (idx AnnotationIndex) Add(f *kotlinsrc.File) {
	if f == nil {
		return
	}
	idx.AddClasses(f.AnnotationClasses...)
}

// AddClasses records annotation classes read earlier, e.g. from the cache.
func (idx AnnotationIndex) AddClasses(classes ...*models.AnnotationClass) {
	for _, ac := range classes {
		if ac == nil {
			continue
		}
		if _, ok := idx[ac.FqName]; !ok {
			idx[ac.FqName] = ac
		}
	}
}

// Fingerprint identifies the nullability-relevant content of the index.
// Findings computed against indexes with equal fingerprints are equal.
func (idx AnnotationIndex) Fingerprint() string {
	entries := make([]string, 0, len(idx))
	for name, ac := range idx {
		var sb strings.Builder
		sb.WriteString(name.String())
		for _, meta := range ac.Annotations {
			sb.WriteString("|")
			sb.WriteString(meta.FqName.String())
			for _, arg := range meta.Arguments {
				fmt.Fprintf(&sb, ",%v", arg.Value)
			}
		}
		entries = append(entries, sb.String())
	}
	slices.Sort(entries)
	return strings.Join(entries, ";")
}

type analyzerEntry struct {
	kind models.AnalyzerType
	fn   func(policy *jsr305.Policy, idx AnnotationIndex) Analyzer
}

var allAnalyzers = []analyzerEntry{
	{models.AnalyzerLowPriority, func(*jsr305.Policy, AnnotationIndex) Analyzer { return NewLowPriorityAnalyzer() }},
	{models.AnalyzerNullability, func(p *jsr305.Policy, idx AnnotationIndex) Analyzer { return NewNullabilityAnalyzer(p, idx) }},
}

// Names lists the config names of all analyzers in run order.
func Names() []string {
	names := make([]string, 0, len(allAnalyzers))
	for _, entry := range allAnalyzers {
		names = append(names, entry.kind.ConfigName())
	}
	return names
}

// Analyze runs the enabled analyzers over a single file. A nil enabled map
// runs all of them. Findings silenced by ignore directives are dropped.
func Analyze(
	file *kotlinsrc.File, policy *jsr305.Policy, idx AnnotationIndex, enabledAnalyzers map[string]bool,
) []*models.Finding {
	if file == nil {
		return []*models.Finding{}
	}
	if policy == nil {
		policy = jsr305.Default
	}
	if idx == nil {
		idx = NewAnnotationIndex(file)
	}

	findings := make([]*models.Finding, 0, 8)
	for _, entry := range allAnalyzers {
		if !isEnabled(enabledAnalyzers, entry.kind.ConfigName()) {
			continue
		}
		findings = append(findings, entry.fn(policy, idx).Analyze(file)...)
	}

	return FilterFindingsByComments(findings, file)
}

func isEnabled(enabled map[string]bool, name string) bool {
	if enabled == nil {
		return true
	}
	for key, on := range enabled {
		if strings.EqualFold(key, name) {
			return on
		}
	}
	return false
}

// DisplayName is the human-readable name of an analyzer, as used in reports.
func DisplayName(kind models.AnalyzerType) string {
	for _, entry := range allAnalyzers {
		if entry.kind == kind {
			return entry.fn(nil, nil).Name()
		}
	}
	return kind.String()
}
