// Package plugin exposes tokencheck as a golangci-lint module plugin.
package plugin

import (
	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"

	"github.com/SergeiSkv/NullGuard/lint/tokencheck"
)

const Name = "nullguard"

func init() {
	register.Plugin(Name, New)
}

// Settings is the custom linter configuration block of .golangci.yml:
//
//	linters:
//	  settings:
//	    custom:
//	      nullguard:
//	        type: module
//	        settings:
//	          functions: ["example.com/policy.Parse"]
type Settings struct {
	// Functions taking a token slice as first argument, checked besides jsr305.FromArgs.
	Functions []string `json:"functions"`
}

type Plugin struct {
	settings Settings
}

func New(settings any) (register.LinterPlugin, error) {
	s, err := register.DecodeSettings[Settings](settings)
	if err != nil {
		return nil, err
	}
	return &Plugin{settings: s}, nil
}

func (p *Plugin) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{tokencheck.NewAnalyzer(p.settings.Functions...)}, nil
}

func (p *Plugin) GetLoadMode() string {
	return register.LoadModeTypesInfo
}
