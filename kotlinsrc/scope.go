package kotlinsrc

import (
	"strings"
	"unicode"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

// defaultImports lists the classifiers visible without an import on the JVM.
var defaultImports = map[string]string{
	"Any":                  "kotlin.Any",
	"Array":                "kotlin.Array",
	"Boolean":              "kotlin.Boolean",
	"Byte":                 "kotlin.Byte",
	"Char":                 "kotlin.Char",
	"CharSequence":         "kotlin.CharSequence",
	"Comparable":           "kotlin.Comparable",
	"Deprecated":           "kotlin.Deprecated",
	"Double":               "kotlin.Double",
	"Float":                "kotlin.Float",
	"Int":                  "kotlin.Int",
	"Long":                 "kotlin.Long",
	"Nothing":              "kotlin.Nothing",
	"Number":               "kotlin.Number",
	"Short":                "kotlin.Short",
	"SinceKotlin":          "kotlin.SinceKotlin",
	"String":               "kotlin.String",
	"Suppress":             "kotlin.Suppress",
	"Throwable":            "kotlin.Throwable",
	"Unit":                 "kotlin.Unit",
	"Target":               "kotlin.annotation.Target",
	"Retention":            "kotlin.annotation.Retention",
	"MustBeDocumented":     "kotlin.annotation.MustBeDocumented",
	"Collection":           "kotlin.collections.Collection",
	"HashMap":              "kotlin.collections.HashMap",
	"Iterable":             "kotlin.collections.Iterable",
	"Iterator":             "kotlin.collections.Iterator",
	"List":                 "kotlin.collections.List",
	"Map":                  "kotlin.collections.Map",
	"MutableList":          "kotlin.collections.MutableList",
	"MutableMap":           "kotlin.collections.MutableMap",
	"MutableSet":           "kotlin.collections.MutableSet",
	"Set":                  "kotlin.collections.Set",
	"JvmName":              "kotlin.jvm.JvmName",
	"JvmStatic":            "kotlin.jvm.JvmStatic",
	"Sequence":             "kotlin.sequences.Sequence",
	"MatchGroup":           "kotlin.text.MatchGroup",
	"MatchGroupCollection": "kotlin.text.MatchGroupCollection",
	"MatchResult":          "kotlin.text.MatchResult",
	"Regex":                "kotlin.text.Regex",
	"AutoCloseable":        "java.lang.AutoCloseable",
	"Exception":            "java.lang.Exception",
	"Runnable":             "java.lang.Runnable",
	"Thread":               "java.lang.Thread",
}

// scope resolves simple names the way a file sees them: type parameters,
// explicit imports, default imports, then the file's own package.
type scope struct {
	pkg        fqname.FqName
	explicit   map[string]fqname.FqName
	typeParams map[string]*models.Classifier
}

func newScope(pkg fqname.FqName, imports []Import) *scope {
	s := &scope{
		pkg:      pkg,
		explicit: make(map[string]fqname.FqName, len(imports)),
	}
	for _, imp := range imports {
		if imp.Star {
			continue
		}
		name := imp.Alias
		if name == "" {
			name = imp.FqName.ShortName()
		}
		s.explicit[name] = imp.FqName
	}
	return s
}

// withTypeParams returns a child scope that also sees the given type parameters.
func (s *scope) withTypeParams(params []*models.Classifier) *scope {
	child := &scope{pkg: s.pkg, explicit: s.explicit, typeParams: make(map[string]*models.Classifier, len(params))}
	for name, tp := range s.typeParams {
		child.typeParams[name] = tp
	}
	for _, tp := range params {
		child.typeParams[tp.Name] = tp
	}
	return child
}

// resolveFqName turns a possibly dotted name as written into a qualified name.
func (s *scope) resolveFqName(text string) fqname.FqName {
	text = strings.TrimSpace(text)
	first, rest, dotted := strings.Cut(text, ".")

	if dotted && !startsUpper(first) {
		if _, imported := s.explicit[first]; !imported {
			return fqname.New(text)
		}
	}

	var head fqname.FqName
	if fq, ok := s.explicit[first]; ok {
		head = fq
	} else if fq, ok := defaultImports[first]; ok {
		head = fqname.New(fq)
	} else {
		head = s.pkg.Child(first)
	}

	if dotted {
		return fqname.FromSegments(head.String(), rest)
	}
	return head
}

// resolveClassifier resolves a type name to its declaration.
func (s *scope) resolveClassifier(text string) *models.Classifier {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if tp, ok := s.typeParams[text]; ok {
		return tp
	}
	fq := s.resolveFqName(text)
	return &models.Classifier{Kind: models.ClassifierClass, Name: fq.ShortName(), FqName: fq}
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
