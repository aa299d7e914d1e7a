package models

import (
	"go/token"
	"time"
)

// Finding represents a declaration the scanner reports on
type Finding struct {
	ID         string         `json:"id,omitempty"`
	File       string         `json:"file,omitempty"`
	Line       int            `json:"line,omitempty"`
	Column     int            `json:"column,omitempty"`
	Position   token.Position `json:"position"`
	Type       FindingType    `json:"type"`
	Severity   SeverityLevel  `json:"severity"`
	Level      *ReportLevel   `json:"level,omitempty"`
	Symbol     string         `json:"symbol,omitempty"`
	Annotation string         `json:"annotation,omitempty"`
	Message    string         `json:"message,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
}
