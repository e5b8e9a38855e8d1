package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/gomod-prefetch/domain"
)

func TestParseMLines(t *testing.T) {
	t.Parallel()

	t.Run("should parse a plain module line", func(t *testing.T) {
		t.Parallel()

		// given
		text := "example.com/foo v1.2.3"

		// when
		modules, hints := ParseMLines(text, nil)

		// then
		require.Len(t, modules, 1)
		assert.Equal(t, domain.ModuleRecord{Name: "example.com/foo", Kind: domain.KindGoMod, Version: "v1.2.3"}, modules[0])
		assert.Empty(t, hints)
	})

	t.Run("should collapse a five-field replace line without a hint when the old name was not requested", func(t *testing.T) {
		t.Parallel()

		// given
		text := "example.com/old v1.0.0 => example.com/new v1.1.0"

		// when
		modules, hints := ParseMLines(text, nil)

		// then
		require.Len(t, modules, 1)
		assert.Equal(t, "example.com/new", modules[0].Name)
		assert.Equal(t, "v1.1.0", modules[0].Version)
		assert.Nil(t, modules[0].Replaces)
		assert.Empty(t, hints)
	})

	t.Run("should record a replaces hint when the old name was requested", func(t *testing.T) {
		t.Parallel()

		// given
		text := "example.com/old v1.0.0 => example.com/new v1.1.0"
		requested := map[string]bool{"example.com/old": true}

		// when
		modules, hints := ParseMLines(text, requested)

		// then
		require.Len(t, modules, 1)
		require.NotNil(t, modules[0].Replaces)
		assert.Equal(t, "example.com/old", modules[0].Replaces.Name)
		require.Len(t, hints, 1)
		assert.Equal(t, domain.ReplaceHint{OldName: "example.com/old", OldVersion: "v1.0.0"}, hints[0])
	})

	t.Run("should ignore blank lines and log unparseable shapes", func(t *testing.T) {
		t.Parallel()

		// given
		text := "\n\nexample.com/foo v1.2.3\ngarbage field set with too many words here\n"

		// when
		modules, _ := ParseMLines(text, nil)

		// then
		require.Len(t, modules, 1)
		assert.Equal(t, "example.com/foo", modules[0].Name)
	})
}

func TestParseDepsJSON(t *testing.T) {
	t.Parallel()

	t.Run("should decode a concatenated stream of listing entries", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"ImportPath":"example.com/foo","Deps":["fmt"],"Module":{"Path":"example.com/foo","Version":"v1.0.0","Main":true}}` +
			`{"ImportPath":"fmt","Standard":true}`

		// when
		listing, err := ParseDepsJSON(text)

		// then
		require.NoError(t, err)
		require.Contains(t, listing, "example.com/foo")
		require.Contains(t, listing, "fmt")
		assert.True(t, listing["fmt"].Standard)
		assert.Equal(t, "example.com/foo", listing["example.com/foo"].Module.Path)
	})

	t.Run("should surface a decode error as UnexpectedFormat", func(t *testing.T) {
		t.Parallel()

		// given
		text := `{"ImportPath": not valid json`

		// when
		_, err := ParseDepsJSON(text)

		// then
		require.Error(t, err)
		var unexpected *domain.UnexpectedFormat
		assert.ErrorAs(t, err, &unexpected)
	})

	t.Run("should resolve a replaced module's version over its own", func(t *testing.T) {
		t.Parallel()

		// given
		entry := domain.ListingEntry{
			Module: &domain.ModuleRef{
				Path: "example.com/foo", Version: "v1.0.0",
				Replace: &domain.ReplaceModRef{Path: "example.com/fork", Version: "v2.0.0"},
			},
		}

		// when
		version := depVersion(entry, "v9.9.9")

		// then
		assert.Equal(t, "v2.0.0", version)
	})

	t.Run("should fall back to the main module's version when no module info is present", func(t *testing.T) {
		t.Parallel()

		// given
		entry := domain.ListingEntry{}

		// when
		version := depVersion(entry, "v9.9.9")

		// then
		assert.Equal(t, "v9.9.9", version)
	})
}
