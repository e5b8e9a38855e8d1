package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplacements(t *testing.T) {
	t.Parallel()

	t.Run("should parse a plain name and version", func(t *testing.T) {
		t.Parallel()

		// when
		out, err := parseReplacements([]string{"example.com/foo@v1.2.3"})

		// then
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "example.com/foo", out[0].Name)
		assert.Empty(t, out[0].NewName)
		assert.Equal(t, "v1.2.3", out[0].Version)
	})

	t.Run("should parse a rename form", func(t *testing.T) {
		t.Parallel()

		// when
		out, err := parseReplacements([]string{"example.com/foo=>example.com/fork@v1.2.3"})

		// then
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "example.com/foo", out[0].Name)
		assert.Equal(t, "example.com/fork", out[0].NewName)
		assert.Equal(t, "v1.2.3", out[0].Version)
	})

	t.Run("should parse multiple repeated flags in order", func(t *testing.T) {
		t.Parallel()

		// when
		out, err := parseReplacements([]string{"example.com/a@v1.0.0", "example.com/b@v2.0.0"})

		// then
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "example.com/a", out[0].Name)
		assert.Equal(t, "example.com/b", out[1].Name)
	})

	t.Run("should reject a value with no @version", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := parseReplacements([]string{"example.com/foo"})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --replace value")
	})

	t.Run("should return an empty slice for no flags", func(t *testing.T) {
		t.Parallel()

		// when
		out, err := parseReplacements(nil)

		// then
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
