package analyzer

import (
	"math"
	"strings"

	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
)

const (
	directiveIgnore         = "nullguard:ignore"
	directiveIgnoreLine     = "nullguard:ignore-line"
	directiveIgnoreNextLine = "nullguard:ignore-next-line"
	directiveIgnoreFile     = "nullguard:ignore-file"
)

// IgnoreChecker checks if findings should be ignored based on comments
type IgnoreChecker struct {
	ignoreRanges map[string][]ignoreRange // key is finding type, empty key means all types
}

type ignoreRange struct {
	startLine int
	endLine   int
}

// NewIgnoreChecker creates a new ignore checker for a file
func NewIgnoreChecker(file *kotlinsrc.File) *IgnoreChecker {
	ic := &IgnoreChecker{
		ignoreRanges: make(map[string][]ignoreRange, 4),
	}
	if file != nil {
		for _, c := range file.Comments {
			text := extractCommentText(c.Text)
			if strings.HasPrefix(text, directiveIgnore) {
				ic.processIgnoreDirective(text, c.Line)
			}
		}
	}
	return ic
}

func extractCommentText(text string) string {
	if strings.HasPrefix(text, "//") {
		text = strings.TrimPrefix(text, "//")
	} else if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}
	return strings.TrimSpace(text)
}

func (ic *IgnoreChecker) processIgnoreDirective(text string, line int) {
	parts := strings.Fields(text)
	directive := parts[0]
	var findingTypes []string
	if len(parts) > 1 {
		findingTypes = strings.Split(parts[1], ",")
	}

	switch directive {
	case directiveIgnoreLine:
		ic.addAll(findingTypes, line, line)
	case directiveIgnoreNextLine, directiveIgnore:
		ic.addAll(findingTypes, line+1, line+1)
	case directiveIgnoreFile:
		ic.addAll(findingTypes, 0, math.MaxInt)
	}
}

func (ic *IgnoreChecker) addAll(findingTypes []string, startLine, endLine int) {
	if len(findingTypes) == 0 {
		ic.addIgnoreRange("", startLine, endLine)
		return
	}
	for _, ft := range findingTypes {
		ft = strings.TrimSpace(ft)
		if ft == "*" {
			ft = ""
		}
		ic.addIgnoreRange(ft, startLine, endLine)
	}
}

func (ic *IgnoreChecker) addIgnoreRange(findingType string, startLine, endLine int) {
	ic.ignoreRanges[findingType] = append(ic.ignoreRanges[findingType], ignoreRange{
		startLine: startLine,
		endLine:   endLine,
	})
}

// ShouldIgnore checks if a finding type at a specific line should be ignored.
func (ic *IgnoreChecker) ShouldIgnore(findingType string, line int) bool {
	return ic.covered(findingType, line) || ic.covered("", line)
}

// ShouldIgnoreFinding accepts either the type name or the NG-ID in directives.
func (ic *IgnoreChecker) ShouldIgnoreFinding(f *models.Finding) bool {
	return ic.ShouldIgnore(f.Type.String(), f.Line) || ic.covered(f.Type.GetNGID(), f.Line)
}

func (ic *IgnoreChecker) covered(key string, line int) bool {
	for _, r := range ic.ignoreRanges[key] {
		if line >= r.startLine && line <= r.endLine {
			return true
		}
	}
	return false
}

// FilterFindingsByComments removes findings that should be ignored based on comments
func FilterFindingsByComments(findings []*models.Finding, file *kotlinsrc.File) []*models.Finding {
	if file == nil || len(file.Comments) == 0 {
		return findings
	}

	ic := NewIgnoreChecker(file)

	filtered := make([]*models.Finding, 0, len(findings))
	for _, finding := range findings {
		if finding == nil {
			continue
		}
		if !ic.ShouldIgnoreFinding(finding) {
			filtered = append(filtered, finding)
		}
	}

	return filtered
}

// Example usage in comments:
// Ignore next line for all finding types:
// // nullguard:ignore
// Ignore next line for specific finding types:
// // nullguard:ignore LowPriorityOverload,NG-002
// Ignore current line:
// // nullguard:ignore-line NullabilityAnnotation
// Ignore entire file for all findings:
// // nullguard:ignore-file *
