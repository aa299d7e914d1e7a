package analyzer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
	"github.com/SergeiSkv/NullGuard/priority"
)

type LowPriorityAnalyzer struct{}

func NewLowPriorityAnalyzer() Analyzer {
	return &LowPriorityAnalyzer{}
}

func (la *LowPriorityAnalyzer) Name() string {
	return "Low Priority Overloads"
}

func (la *LowPriorityAnalyzer) Analyze(file *kotlinsrc.File) []*models.Finding {
	if file == nil {
		return nil
	}

	findings := make([]*models.Finding, 0, 2)
	for _, c := range file.Callables {
		if !priority.IsLowPriorityFromStdlibJre7Or8(c) {
			continue
		}
		pos := c.Position
		findings = append(findings, &models.Finding{
			ID:         uuid.NewString(),
			File:       file.Path,
			Line:       pos.Line,
			Column:     pos.Column,
			Position:   pos,
			Type:       models.FindingLowPriorityOverload,
			Severity:   models.SeverityLevelLow,
			Symbol:     c.FqName().String(),
			Annotation: models.FqSince.String(),
			Message:    fmt.Sprintf("%s is a kotlin-stdlib-jre7/8 extension ranked below its kotlin-stdlib counterpart", c.FqName()),
			Suggestion: "Depend on kotlin-stdlib-jdk7/jdk8 instead of the deprecated jre7/jre8 artifacts",
			CreatedAt:  time.Now(),
		})
	}
	return findings
}
