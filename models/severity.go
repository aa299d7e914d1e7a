package models

import "fmt"

// SeverityLevel represents the severity of a finding
type SeverityLevel uint8

const (
	SeverityLevelLow    SeverityLevel = iota // informational, e.g. low priority overloads
	SeverityLevelMedium                      // warn-level nullability enforcement
	SeverityLevelHigh                        // strict nullability enforcement
)

var severityLevelNames = map[SeverityLevel]string{
	SeverityLevelLow:    "Low",
	SeverityLevelMedium: "Medium",
	SeverityLevelHigh:   "High",
}

func (s SeverityLevel) String() string {
	if name, ok := severityLevelNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SeverityLevel(%d)", s)
}

// SeverityLevelValues returns all severity levels, lowest first
func SeverityLevelValues() []SeverityLevel {
	return []SeverityLevel{SeverityLevelLow, SeverityLevelMedium, SeverityLevelHigh}
}

// IsASeverityLevel reports whether s is a declared level
func (s SeverityLevel) IsASeverityLevel() bool {
	_, ok := severityLevelNames[s]
	return ok
}

// SeverityForReportLevel maps an enforcement level onto a finding severity.
// Ignore has no severity: nothing is reported for it.
func SeverityForReportLevel(level ReportLevel) (SeverityLevel, bool) {
	switch level {
	case ReportLevelWarn:
		return SeverityLevelMedium, true
	case ReportLevelStrict:
		return SeverityLevelHigh, true
	default:
		return SeverityLevelLow, false
	}
}
