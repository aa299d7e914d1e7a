package models

import (
	"go/token"

	"github.com/SergeiSkv/NullGuard/fqname"
)

// Well-known names of the Kotlin built-ins consulted by the checks.
var (
	FqString  = fqname.New("kotlin.String")
	FqAny     = fqname.New("kotlin.Any")
	FqSince   = fqname.New("kotlin.SinceKotlin")
	BuiltInFq = fqname.New("kotlin")
)

// ClassifierKind tells classes and type parameters apart
type ClassifierKind uint8

const (
	ClassifierClass ClassifierKind = iota
	ClassifierTypeParameter
)

// Classifier is the declaration a type refers to
type Classifier struct {
	Kind        ClassifierKind `json:"kind"`
	Name        string         `json:"name"`
	FqName      fqname.FqName  `json:"fq_name"`
	UpperBounds []TypeRef      `json:"upper_bounds,omitempty"`
}

// TypeRef is a use of a type. Declaration is nil when the name could not be resolved.
type TypeRef struct {
	Declaration *Classifier `json:"declaration,omitempty"`
	Nullable    bool        `json:"nullable,omitempty"`
	Text        string      `json:"text,omitempty"`
}

// IsStringOrNullableString reports whether t is kotlin.String or kotlin.String?.
func IsStringOrNullableString(t TypeRef) bool {
	d := t.Declaration
	return d != nil && d.Kind == ClassifierClass && d.FqName == FqString
}

// StringValue is a string constant annotation argument
type StringValue string

// EnumValue is an enum entry annotation argument, e.g. MigrationStatus.WARN
type EnumValue struct {
	Enum  fqname.FqName `json:"enum"`
	Entry string        `json:"entry"`
}

// RawValue is any other argument, kept as source text
type RawValue string

// AnnotationArgument is a single argument of an annotation use
type AnnotationArgument struct {
	Name  string `json:"name,omitempty"`
	Value any    `json:"value"`
}

// Annotation is an annotation use on a declaration
type Annotation struct {
	FqName    fqname.FqName        `json:"fq_name"`
	Arguments []AnnotationArgument `json:"arguments,omitempty"`
}

// ContainerKind tells package fragments and classes apart
type ContainerKind uint8

const (
	ContainerPackage ContainerKind = iota
	ContainerClass
)

// Container is the declaration directly enclosing a callable
type Container struct {
	Kind   ContainerKind `json:"kind"`
	FqName fqname.FqName `json:"fq_name"`
}

// ValueParameter is a declared parameter of a callable
type ValueParameter struct {
	Name        string       `json:"name"`
	Type        TypeRef      `json:"type"`
	Annotations []Annotation `json:"annotations,omitempty"`
	Position    token.Position
}

// Callable is a snapshot of a function declaration
type Callable struct {
	Container         Container        `json:"container"`
	Name              string           `json:"name"`
	TypeParameters    []*Classifier    `json:"type_parameters,omitempty"`
	ExtensionReceiver *TypeRef         `json:"extension_receiver,omitempty"`
	ValueParameters   []ValueParameter `json:"value_parameters,omitempty"`
	Annotations       []Annotation     `json:"annotations,omitempty"`
	Position          token.Position   `json:"position"`
}

// FqName is the qualified name of the callable itself
func (c *Callable) FqName() fqname.FqName {
	return c.Container.FqName.Child(c.Name)
}

// FindAnnotation returns the first annotation with the given name
func (c *Callable) FindAnnotation(fq fqname.FqName) (*Annotation, bool) {
	return findAnnotation(c.Annotations, fq)
}

func findAnnotation(annotations []Annotation, fq fqname.FqName) (*Annotation, bool) {
	for i := range annotations {
		if annotations[i].FqName == fq {
			return &annotations[i], true
		}
	}
	return nil, false
}

// AnnotationClass is an annotation class declared in scanned sources
type AnnotationClass struct {
	FqName      fqname.FqName  `json:"fq_name"`
	Annotations []Annotation   `json:"annotations,omitempty"`
	Position    token.Position `json:"position"`
}

// FindAnnotation returns the first meta-annotation with the given name
func (a *AnnotationClass) FindAnnotation(fq fqname.FqName) (*Annotation, bool) {
	return findAnnotation(a.Annotations, fq)
}
