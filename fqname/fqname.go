// Package fqname models dot-separated qualified names such as kotlin.collections.Map.
package fqname

import "strings"

// FqName is an immutable qualified name. The zero value is the root name.
type FqName struct {
	name string
}

// Root is the empty qualified name.
var Root = FqName{}

// New builds a qualified name from its dotted form.
func New(name string) FqName {
	return FqName{name: strings.Trim(name, ".")}
}

// FromSegments joins segments into a qualified name.
func FromSegments(segments ...string) FqName {
	return New(strings.Join(segments, "."))
}

func (f FqName) String() string {
	return f.name
}

// IsRoot reports whether f is the empty name.
func (f FqName) IsRoot() bool {
	return f.name == ""
}

// Segments returns the dot-separated parts of f, nil for the root.
func (f FqName) Segments() []string {
	if f.IsRoot() {
		return nil
	}
	return strings.Split(f.name, ".")
}

// ShortName returns the last segment.
func (f FqName) ShortName() string {
	if i := strings.LastIndexByte(f.name, '.'); i >= 0 {
		return f.name[i+1:]
	}
	return f.name
}

// Parent drops the last segment. The parent of a single-segment name is Root.
func (f FqName) Parent() FqName {
	if i := strings.LastIndexByte(f.name, '.'); i >= 0 {
		return FqName{name: f.name[:i]}
	}
	return Root
}

// Child appends a segment.
func (f FqName) Child(name string) FqName {
	if f.IsRoot() {
		return New(name)
	}
	return FqName{name: f.name + "." + name}
}

// StartsWith reports whether the first segment of f equals segment.
func (f FqName) StartsWith(segment string) bool {
	if f.IsRoot() || segment == "" {
		return false
	}
	first, _, _ := strings.Cut(f.name, ".")
	return first == segment
}

// StartsWithName reports whether prefix is a whole-segment prefix of f.
// Every name starts with Root.
func (f FqName) StartsWithName(prefix FqName) bool {
	if prefix.IsRoot() {
		return true
	}
	if !strings.HasPrefix(f.name, prefix.name) {
		return false
	}
	return len(f.name) == len(prefix.name) || f.name[len(prefix.name)] == '.'
}

func (f FqName) MarshalText() ([]byte, error) {
	return []byte(f.name), nil
}

func (f *FqName) UnmarshalText(text []byte) error {
	*f = New(string(text))
	return nil
}
