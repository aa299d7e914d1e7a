package models

import "fmt"

// ReportLevel is the enforcement level applied to JSR-305 nullability annotations.
type ReportLevel uint8

const (
	ReportLevelIgnore ReportLevel = iota
	ReportLevelWarn
	ReportLevelStrict
)

var reportLevelDescriptions = [...]string{
	ReportLevelIgnore: "ignore",
	ReportLevelWarn:   "warn",
	ReportLevelStrict: "strict",
}

// String returns the canonical lowercase code ("ignore", "warn", "strict").
func (r ReportLevel) String() string {
	if int(r) < len(reportLevelDescriptions) {
		return reportLevelDescriptions[r]
	}
	return fmt.Sprintf("invalid(%d)", r)
}

// ReportLevelValues returns every level in declaration order.
func ReportLevelValues() []ReportLevel {
	return []ReportLevel{ReportLevelIgnore, ReportLevelWarn, ReportLevelStrict}
}

// FindReportLevel resolves a code by exact, case-sensitive match.
func FindReportLevel(description string) (ReportLevel, bool) {
	for _, level := range ReportLevelValues() {
		if level.String() == description {
			return level, true
		}
	}
	return ReportLevelIgnore, false
}

func (r ReportLevel) IsWarning() bool { return r == ReportLevelWarn }

func (r ReportLevel) IsIgnore() bool { return r == ReportLevelIgnore }

// MarshalText for writing levels into configs and reports.
func (r ReportLevel) MarshalText() ([]byte, error) {
	if int(r) >= len(reportLevelDescriptions) {
		return nil, fmt.Errorf("unknown report level %d", r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText for setting values with configs, CLI, etc.
func (r *ReportLevel) UnmarshalText(rawtext []byte) error {
	level, ok := FindReportLevel(string(rawtext))
	if !ok {
		return fmt.Errorf("unknown report level %q", string(rawtext))
	}
	*r = level
	return nil
}
