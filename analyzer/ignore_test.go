package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/NullGuard/kotlinsrc"
	"github.com/SergeiSkv/NullGuard/models"
)

func fileWithComments(comments ...kotlinsrc.Comment) *kotlinsrc.File {
	return &kotlinsrc.File{Path: "Test.kt", Comments: comments}
}

func TestIgnoreCheckerGeneralDirective(t *testing.T) {
	checker := NewIgnoreChecker(fileWithComments(kotlinsrc.Comment{Line: 3, Text: "// nullguard:ignore"}))

	require.True(t, checker.ShouldIgnore(models.FindingNullabilityAnnotation.String(), 4))
	require.False(t, checker.ShouldIgnore(models.FindingNullabilityAnnotation.String(), 5))
	require.False(t, checker.ShouldIgnore(models.FindingNullabilityAnnotation.String(), 3))
}

func TestIgnoreCheckerSpecificDirectives(t *testing.T) {
	checker := NewIgnoreChecker(fileWithComments(
		kotlinsrc.Comment{Line: 3, Text: "// nullguard:ignore-next-line LowPriorityOverload,NullabilityAnnotation"},
		kotlinsrc.Comment{Line: 7, Text: "// nullguard:ignore-line NullabilityAnnotation"},
		kotlinsrc.Comment{Line: 11, Text: "/* nullguard:ignore LowPriorityOverload */"},
	))

	expect := map[string][][2]int{
		models.FindingLowPriorityOverload.String():   {{4, 4}, {12, 12}},
		models.FindingNullabilityAnnotation.String(): {{4, 4}, {7, 7}},
	}

	for key, want := range expect {
		ranges := checker.ignoreRanges[key]
		require.Len(t, ranges, len(want), key)
		for i, rg := range ranges {
			require.Equal(t, want[i][0], rg.startLine)
			require.Equal(t, want[i][1], rg.endLine)
		}
	}
	require.NotContains(t, checker.ignoreRanges, "")
}

func TestIgnoreCheckerFileDirective(t *testing.T) {
	checker := NewIgnoreChecker(fileWithComments(kotlinsrc.Comment{Line: 1, Text: "// nullguard:ignore-file *"}))
	require.True(t, checker.ShouldIgnore(models.FindingLowPriorityOverload.String(), 1))
	require.True(t, checker.ShouldIgnore(models.FindingNullabilityAnnotation.String(), 100000))

	checker = NewIgnoreChecker(fileWithComments(kotlinsrc.Comment{Line: 1, Text: "// nullguard:ignore-file NullabilityAnnotation"}))
	require.True(t, checker.ShouldIgnore(models.FindingNullabilityAnnotation.String(), 50))
	require.False(t, checker.ShouldIgnore(models.FindingLowPriorityOverload.String(), 50))
}

func TestIgnoreCheckerUnknownDirective(t *testing.T) {
	checker := NewIgnoreChecker(fileWithComments(
		kotlinsrc.Comment{Line: 1, Text: "// nullguard:ignored"},
		kotlinsrc.Comment{Line: 2, Text: "// just a comment"},
	))
	require.Empty(t, checker.ignoreRanges)
}

func TestFilterFindingsByComments(t *testing.T) {
	file := fileWithComments(
		kotlinsrc.Comment{Line: 4, Text: "// nullguard:ignore NG-002"},
		kotlinsrc.Comment{Line: 9, Text: "// nullguard:ignore"},
	)
	findings := []*models.Finding{
		{Type: models.FindingNullabilityAnnotation, Line: 5},
		{Type: models.FindingLowPriorityOverload, Line: 5},
		{Type: models.FindingLowPriorityOverload, Line: 10},
		{Type: models.FindingNullabilityAnnotation, Line: 12},
		nil,
	}

	filtered := FilterFindingsByComments(findings, file)
	require.Len(t, filtered, 2)
	require.Equal(t, models.FindingLowPriorityOverload, filtered[0].Type)
	require.Equal(t, 5, filtered[0].Line)
	require.Equal(t, 12, filtered[1].Line)

	require.Equal(t, findings, FilterFindingsByComments(findings, nil))
}
