package analyzer

import (
	"fmt"
	"go/token"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/SergeiSkv/NullGuard/jsr305"
	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
)

// NullabilityAnalyzer reports declarations whose JSR-305 annotations the
// policy enforces at warn or strict level.
type NullabilityAnalyzer struct {
	policy *jsr305.Policy
	index  AnnotationIndex
}

func NewNullabilityAnalyzer(policy *jsr305.Policy, idx AnnotationIndex) Analyzer {
	if policy == nil {
		policy = jsr305.Default
	}
	return &NullabilityAnalyzer{policy: policy, index: idx}
}

func (na *NullabilityAnalyzer) Name() string {
	return "JSR-305 Nullability"
}

func (na *NullabilityAnalyzer) Analyze(file *kotlinsrc.File) []*models.Finding {
	if file == nil || na.policy.IsDisabled() {
		return nil
	}

	v := &nullabilityVisitor{
		analyzer: na,
		file:     file,
		local:    NewAnnotationIndex(file),
		findings: make([]*models.Finding, 0, 4),
	}
	for _, c := range file.Callables {
		symbol := c.FqName().String()
		v.check(symbol, c.Annotations, c.Position)
		for _, p := range c.ValueParameters {
			v.check(symbol+"."+p.Name, p.Annotations, p.Position)
		}
	}
	return v.findings
}

type nullabilityVisitor struct {
	analyzer *NullabilityAnalyzer
	file     *kotlinsrc.File
	local    AnnotationIndex
	findings []*models.Finding
}

func (v *nullabilityVisitor) check(symbol string, annotations []models.Annotation, pos token.Position) {
	for _, ann := range annotations {
		migration, ok := v.qualifier(ann)
		if !ok {
			continue
		}
		level := v.analyzer.policy.Resolve(ann.FqName, migration)
		severity, report := models.SeverityForReportLevel(level)
		if !report {
			continue
		}
		v.findings = append(v.findings, &models.Finding{
			ID:         uuid.NewString(),
			File:       v.file.Path,
			Line:       pos.Line,
			Column:     pos.Column,
			Position:   pos,
			Type:       models.FindingNullabilityAnnotation,
			Severity:   severity,
			Level:      &level,
			Symbol:     symbol,
			Annotation: ann.FqName.String(),
			Message:    fmt.Sprintf("@%s on %s is enforced at %s level", ann.FqName.ShortName(), symbol, level),
			Suggestion: suggestionFor(level),
			CreatedAt:  time.Now(),
		})
	}
}

// qualifier tells whether ann is a nullability annotation and returns its
// migration status, if any.
func (v *nullabilityVisitor) qualifier(ann models.Annotation) (*jsr305.Migration, bool) {
	if slices.Contains(jsr305.BuiltInNullabilityAnnotations, ann.FqName) {
		return nil, true
	}
	class, ok := v.local[ann.FqName]
	if !ok {
		class, ok = v.analyzer.index[ann.FqName]
	}
	if !ok {
		return nil, false
	}
	if migration := jsr305.MigrationOf(class); migration != nil {
		return migration, true
	}
	if _, nickname := class.FindAnnotation(jsr305.NicknameFqName); nickname {
		return nil, true
	}
	if _, qualifier := class.FindAnnotation(jsr305.TypeQualifierFqName); qualifier {
		return nil, true
	}
	return nil, false
}

func suggestionFor(level models.ReportLevel) string {
	if level == models.ReportLevelStrict {
		return "Callers see platform types as non-null or nullable, fix or suppress usages before upgrading"
	}
	return "Nullability mismatches are reported as warnings, pass -Xjsr305=strict once usages are clean"
}
