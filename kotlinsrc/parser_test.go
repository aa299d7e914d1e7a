//go:build cgo

package kotlinsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

const stdlibSource = `package kotlin

import java.lang.AutoCloseable

// closes the resource
@SinceKotlin("1.1")
fun <T : AutoCloseable?, R> T.use(block: (T) -> R): R {
    return block(this)
}

fun plain(x: Int): Int = x
`

func readSource(t *testing.T, src string) *File {
	t.Helper()
	f, err := NewReader().ReadSource(context.Background(), "test.kt", []byte(src))
	require.NoError(t, err)
	return f
}

func findCallable(f *File, name string) *models.Callable {
	for _, c := range f.Callables {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestReadSourcePackageAndImports(t *testing.T) {
	f := readSource(t, stdlibSource)

	require.Equal(t, "kotlin", f.Package.String())
	require.Len(t, f.Imports, 1)
	require.Equal(t, "java.lang.AutoCloseable", f.Imports[0].FqName.String())
	require.False(t, f.HasErrors)
}

func TestReadSourceExtension(t *testing.T) {
	f := readSource(t, stdlibSource)

	use := findCallable(f, "use")
	require.NotNil(t, use)
	require.Equal(t, models.ContainerPackage, use.Container.Kind)
	require.Equal(t, "kotlin.use", use.FqName().String())
	require.Equal(t, 6, use.Position.Line)

	require.Len(t, use.TypeParameters, 2)
	tp := use.TypeParameters[0]
	require.Equal(t, "T", tp.Name)
	require.Len(t, tp.UpperBounds, 1)
	require.True(t, tp.UpperBounds[0].Nullable)
	require.Equal(t, fqname.New("java.lang.AutoCloseable"), tp.UpperBounds[0].Declaration.FqName)

	require.NotNil(t, use.ExtensionReceiver)
	require.Same(t, tp, use.ExtensionReceiver.Declaration)

	ann, ok := use.FindAnnotation(models.FqSince)
	require.True(t, ok)
	require.Len(t, ann.Arguments, 1)
	require.Equal(t, models.StringValue("1.1"), ann.Arguments[0].Value)

	plain := findCallable(f, "plain")
	require.NotNil(t, plain)
	require.Nil(t, plain.ExtensionReceiver)
	require.Len(t, plain.ValueParameters, 1)
	require.Equal(t, "x", plain.ValueParameters[0].Name)
	require.Equal(t, fqname.New("kotlin.Int"), plain.ValueParameters[0].Type.Declaration.FqName)
}

func TestReadSourceComments(t *testing.T) {
	f := readSource(t, stdlibSource)
	require.NotEmpty(t, f.Comments)
	require.Equal(t, 5, f.Comments[0].Line)
	require.Contains(t, f.Comments[0].Text, "closes the resource")
}

func TestReadSourceWhereClause(t *testing.T) {
	f := readSource(t, `package kotlin

fun <T> T.use(): Unit where T : AutoCloseable {}
`)
	use := findCallable(f, "use")
	require.NotNil(t, use)
	require.Len(t, use.TypeParameters, 1)
	require.Len(t, use.TypeParameters[0].UpperBounds, 1)
	require.Equal(t, "AutoCloseable", use.TypeParameters[0].UpperBounds[0].Declaration.Name)
}

func TestReadSourceMembers(t *testing.T) {
	f := readSource(t, `package org.example

class Holder {
    fun get(name: String?): String? = name
}
`)
	get := findCallable(f, "get")
	require.NotNil(t, get)
	require.Equal(t, models.ContainerClass, get.Container.Kind)
	require.Equal(t, "org.example.Holder", get.Container.FqName.String())
	require.Len(t, get.ValueParameters, 1)
	require.True(t, get.ValueParameters[0].Type.Nullable)
	require.True(t, models.IsStringOrNullableString(get.ValueParameters[0].Type))
}

func TestReadSourceAnnotationClass(t *testing.T) {
	f := readSource(t, `package org.example

import kotlin.annotations.jvm.MigrationStatus
import kotlin.annotations.jvm.UnderMigration

@UnderMigration(status = MigrationStatus.STRICT)
annotation class MyNullable

fun take(@MyNullable value: String) {}
`)
	require.Len(t, f.AnnotationClasses, 1)
	ac := f.AnnotationClasses[0]
	require.Equal(t, "org.example.MyNullable", ac.FqName.String())

	ann, ok := ac.FindAnnotation(fqname.New("kotlin.annotations.jvm.UnderMigration"))
	require.True(t, ok)
	require.Len(t, ann.Arguments, 1)
	require.Equal(t, "status", ann.Arguments[0].Name)
	require.Equal(t, models.EnumValue{
		Enum:  fqname.New("kotlin.annotations.jvm.MigrationStatus"),
		Entry: "STRICT",
	}, ann.Arguments[0].Value)

	take := findCallable(f, "take")
	require.NotNil(t, take)
	require.Len(t, take.ValueParameters, 1)
	require.Len(t, take.ValueParameters[0].Annotations, 1)
	require.Equal(t, "org.example.MyNullable", take.ValueParameters[0].Annotations[0].FqName.String())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Use.kt")
	require.NoError(t, os.WriteFile(path, []byte(stdlibSource), 0o644))

	f, err := NewReader().ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, f.Path)
	require.NotNil(t, findCallable(f, "use"))

	_, err = NewReader().ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.kt"))
	require.Error(t, err)
}

func TestIsAvailable(t *testing.T) {
	require.True(t, IsAvailable())
}

func TestReaderReusedAfterTreeIsClosed(t *testing.T) {
	r := NewReader()
	first, err := r.ReadSource(context.Background(), "a.kt", []byte(stdlibSource))
	require.NoError(t, err)

	for range 3 {
		again, err := r.ReadSource(context.Background(), "a.kt", []byte(stdlibSource))
		require.NoError(t, err)
		require.Equal(t, first.Package, again.Package)
		require.Len(t, again.Callables, len(first.Callables))
		require.Equal(t, "kotlin.use", findCallable(again, "use").FqName().String())
	}
}

func TestParseImport(t *testing.T) {
	tests := []struct {
		text string
		want Import
		ok   bool
	}{
		{"import java.lang.AutoCloseable", Import{FqName: fqname.New("java.lang.AutoCloseable")}, true},
		{"import kotlin.annotations.jvm.UnderMigration as UM", Import{FqName: fqname.New("kotlin.annotations.jvm.UnderMigration"), Alias: "UM"}, true},
		{"import javax.annotation.*", Import{FqName: fqname.New("javax.annotation"), Star: true}, true},
		{"import org.example.Foo;", Import{FqName: fqname.New("org.example.Foo")}, true},
		{"import", Import{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parseImport(tt.text)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
