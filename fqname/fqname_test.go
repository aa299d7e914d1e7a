package fqname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShortNameAndParent(t *testing.T) {
	name := New("kotlin.collections.Map")
	require.Equal(t, "Map", name.ShortName())
	require.Equal(t, New("kotlin.collections"), name.Parent())
	require.Equal(t, Root, New("kotlin").Parent())
	require.Equal(t, "", Root.ShortName())
}

func TestChild(t *testing.T) {
	require.Equal(t, New("kotlin.streams"), New("kotlin").Child("streams"))
	require.Equal(t, New("kotlin"), Root.Child("kotlin"))
}

func TestSegments(t *testing.T) {
	require.Nil(t, Root.Segments())
	require.Equal(t, []string{"java", "lang", "AutoCloseable"}, New("java.lang.AutoCloseable").Segments())
	require.Equal(t, New("java.lang.AutoCloseable"), FromSegments("java.lang", "AutoCloseable"))
}

func TestStartsWithIsSegmentBased(t *testing.T) {
	tests := []struct {
		name    string
		fq      FqName
		segment string
		want    bool
	}{
		{"exact root package", New("kotlin"), "kotlin", true},
		{"child package", New("kotlin.text"), "kotlin", true},
		{"longer first segment", New("kotlinx.coroutines"), "kotlin", false},
		{"different package", New("java.lang"), "kotlin", false},
		{"root name", Root, "kotlin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.fq.StartsWith(tt.segment))
		})
	}
}

func TestStartsWithName(t *testing.T) {
	require.True(t, New("kotlin.text.Regex").StartsWithName(New("kotlin.text")))
	require.True(t, New("kotlin.text").StartsWithName(New("kotlin.text")))
	require.False(t, New("kotlin.textual").StartsWithName(New("kotlin.text")))
	require.True(t, New("anything").StartsWithName(Root))
}

func TestNewTrimsDots(t *testing.T) {
	require.Equal(t, "kotlin.text", New(".kotlin.text.").String())
	require.True(t, New("").IsRoot())
}
