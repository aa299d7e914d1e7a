package models

import "fmt"

// AnalyzerType represents the type of analyzer
type AnalyzerType uint8

const (
	AnalyzerLowPriority AnalyzerType = iota
	AnalyzerNullability
)

var analyzerTypeNames = map[AnalyzerType]string{
	AnalyzerLowPriority: "LowPriority",
	AnalyzerNullability: "Nullability",
}

func (a AnalyzerType) String() string {
	if name, ok := analyzerTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AnalyzerType(%d)", a)
}

// ConfigName is the lowercase key used in config files and enable maps
func (a AnalyzerType) ConfigName() string {
	switch a {
	case AnalyzerLowPriority:
		return "lowpriority"
	case AnalyzerNullability:
		return "nullability"
	default:
		return ""
	}
}
