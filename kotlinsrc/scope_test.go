package kotlinsrc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SergeiSkv/NullGuard/fqname"
	"github.com/SergeiSkv/NullGuard/models"
)

func TestScopeResolveFqName(t *testing.T) {
	imports := []Import{
		{FqName: fqname.New("org.jetbrains.annotations.Nullable")},
		{FqName: fqname.New("kotlin.annotations.jvm.MigrationStatus"), Alias: "Status"},
		{FqName: fqname.New("javax.annotation"), Star: true},
	}
	s := newScope(fqname.New("org.example"), imports)

	tests := []struct {
		text string
		want string
	}{
		{"Nullable", "org.jetbrains.annotations.Nullable"},
		{"Status", "kotlin.annotations.jvm.MigrationStatus"},
		{"Status.WARN", "kotlin.annotations.jvm.MigrationStatus.WARN"},
		{"String", "kotlin.String"},
		{"AutoCloseable", "java.lang.AutoCloseable"},
		{"MatchGroupCollection", "kotlin.text.MatchGroupCollection"},
		{"MyNullable", "org.example.MyNullable"},
		{"javax.annotation.Nonnull", "javax.annotation.Nonnull"},
		{"Outer.Inner", "org.example.Outer.Inner"},
		{" Map ", "kotlin.collections.Map"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, s.resolveFqName(tt.text).String())
		})
	}
}

func TestScopeRootPackage(t *testing.T) {
	s := newScope(fqname.Root, nil)
	require.Equal(t, "Foo", s.resolveFqName("Foo").String())
	require.Equal(t, "Outer.Inner", s.resolveFqName("Outer.Inner").String())
}

func TestScopeResolveClassifier(t *testing.T) {
	s := newScope(fqname.New("kotlin"), nil)
	tp := &models.Classifier{Kind: models.ClassifierTypeParameter, Name: "T"}
	inner := s.withTypeParams([]*models.Classifier{tp})

	require.Same(t, tp, inner.resolveClassifier("T"))
	require.Nil(t, inner.resolveClassifier(""))

	c := s.resolveClassifier("T")
	require.Equal(t, models.ClassifierClass, c.Kind)
	require.Equal(t, "kotlin.T", c.FqName.String())

	str := inner.resolveClassifier("String")
	require.Equal(t, "String", str.Name)
	require.Equal(t, models.FqString, str.FqName)

	// the parent scope is left untouched
	require.Empty(t, s.typeParams)
}

func TestIsKotlinFile(t *testing.T) {
	require.True(t, IsKotlinFile("src/Main.kt"))
	require.True(t, IsKotlinFile("build.gradle.KTS"))
	require.False(t, IsKotlinFile("Main.java"))
	require.False(t, IsKotlinFile("kt"))
}
