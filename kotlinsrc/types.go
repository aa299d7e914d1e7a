// Package kotlinsrc reads Kotlin source files into declaration snapshots the
// classifier and the nullability checks work on.
package kotlinsrc

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

// ErrUnavailable is returned by readers built without cgo.
var ErrUnavailable = errors.New("kotlin reader requires cgo")

// Import is a single import directive.
type Import struct {
	FqName fqname.FqName `json:"fq_name"`
	Alias  string        `json:"alias,omitempty"`
	Star   bool          `json:"star,omitempty"`
}

// Comment is a source comment with the line it starts on.
type Comment struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// File is everything read from one Kotlin source file.
type File struct {
	Path              string                    `json:"path"`
	Package           fqname.FqName             `json:"package"`
	Imports           []Import                  `json:"imports,omitempty"`
	Callables         []*models.Callable        `json:"callables,omitempty"`
	AnnotationClasses []*models.AnnotationClass `json:"annotation_classes,omitempty"`
	Comments          []Comment                 `json:"comments,omitempty"`
	HasErrors         bool                      `json:"has_errors,omitempty"`
}

// IsKotlinFile checks the extension of a path.
func IsKotlinFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".kt" || ext == ".kts"
}
