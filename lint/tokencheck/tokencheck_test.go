package tokencheck_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/SergeiSkv/NullGuard/lint/tokencheck"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), tokencheck.Analyzer, "a")
}

func TestAnalyzerExtraFunctions(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), tokencheck.NewAnalyzer("b.Parse"), "b")
}
