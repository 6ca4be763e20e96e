package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatternAccess(t *testing.T) {
	t.Run("gets URL", func(t *testing.T) {
		access, err := NewPatternAccess("https://cdn.example.com/images/{key}?v=1")
		require.NoError(t, err)

		url, err := access.Location("width:100/path/to/image.jpg")
		require.NoError(t, err)
		require.Equal(t, "https://cdn.example.com/images/width:100/path/to/image.jpg?v=1", url.String())
	})

	t.Run("escapes key", func(t *testing.T) {
		access, err := NewPatternAccess("https://cdn.example.com/{key}")
		require.NoError(t, err)

		url, err := access.Location("width:100/my image?.jpg")
		require.NoError(t, err)
		require.Equal(t, "https://cdn.example.com/width:100/my%20image%3F.jpg", url.String())
	})

	t.Run("missing pattern", func(t *testing.T) {
		_, err := NewPatternAccess("http://localhost/images")
		require.Error(t, err)
		require.Contains(t, err.Error(), "URL string does not contain required pattern")
	})

	t.Run("invalid url", func(t *testing.T) {
		access, err := NewPatternAccess("://localhost/{key}")
		require.NoError(t, err)

		_, err = access.Location("a.jpg")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing protocol scheme")
	})
}

func TestBaseAccess(t *testing.T) {
	t.Run("joins base and key", func(t *testing.T) {
		access, err := NewBaseAccess("https://resize.to")
		require.NoError(t, err)

		url, err := access.Location("width:100/path/to/image.jpg")
		require.NoError(t, err)
		require.Equal(t, "https://resize.to/width:100/path/to/image.jpg", url.String())
	})

	t.Run("trailing slash and base path", func(t *testing.T) {
		access, err := NewBaseAccess("http://localhost:3000/processed/")
		require.NoError(t, err)

		url, err := access.Location("width:100,height:50/a.png")
		require.NoError(t, err)
		require.Equal(t, "http://localhost:3000/processed/width:100,height:50/a.png", url.String())
	})

	t.Run("escapes key", func(t *testing.T) {
		access, err := NewBaseAccess("https://resize.to")
		require.NoError(t, err)

		url, err := access.Location("width:100/100%/#1.jpg")
		require.NoError(t, err)
		require.Equal(t, "https://resize.to/width:100/100%25/%231.jpg", url.String())
	})

	t.Run("relative base", func(t *testing.T) {
		_, err := NewBaseAccess("/processed")
		require.Error(t, err)
	})

	t.Run("query or fragment", func(t *testing.T) {
		for _, base := range []string{
			"https://resize.to?v=1",
			"https://resize.to/processed?",
			"https://resize.to/#top",
		} {
			_, err := NewBaseAccess(base)
			require.ErrorContains(t, err, "must not have a query or fragment", base)
		}
	})
}

func TestFromURI(t *testing.T) {
	a, err := FromURI("https://cdn.example.com/{key}")
	require.NoError(t, err)
	require.IsType(t, &PatternAccess{}, a)

	a, err = FromURI("http://d.s3-website.us-east-2.amazonaws.com")
	require.NoError(t, err)
	require.IsType(t, &BaseAccess{}, a)
}
