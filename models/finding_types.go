package models

import "fmt"

// FindingType represents the kind of a finding
type FindingType uint16

const (
	// FindingLowPriorityOverload marks a legacy kotlin-stdlib-jre7/8 overload
	// that overload resolution ranks below its kotlin-stdlib counterpart.
	FindingLowPriorityOverload FindingType = iota + 1

	// FindingNullabilityAnnotation marks a JSR-305 annotated declaration
	// enforced at warn or strict level.
	FindingNullabilityAnnotation
)

var findingTypeNames = map[FindingType]string{
	FindingLowPriorityOverload:   "LowPriorityOverload",
	FindingNullabilityAnnotation: "NullabilityAnnotation",
}

func (f FindingType) String() string {
	if name, ok := findingTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FindingType(%d)", f)
}

// findingAnalyzerMap maps each finding type to the analyzer producing it
var findingAnalyzerMap = map[FindingType]AnalyzerType{
	FindingLowPriorityOverload:   AnalyzerLowPriority,
	FindingNullabilityAnnotation: AnalyzerNullability,
}

func (f FindingType) GetAnalyzer() AnalyzerType {
	if analyzer, ok := findingAnalyzerMap[f]; ok {
		return analyzer
	}
	return AnalyzerLowPriority
}

// GetNGID returns the NG-ID for this finding type (e.g., NG-001)
func (f FindingType) GetNGID() string {
	return fmt.Sprintf("NG-%03d", int(f))
}
