package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/gomod-prefetch/domain"
)

func TestParseModulesTxt(t *testing.T) {
	t.Parallel()

	t.Run("should keep only modules that vendor at least one package", func(t *testing.T) {
		t.Parallel()

		// given
		text := "# example.com/with-pkg v1.0.0\n" +
			"## explicit\n" +
			"example.com/with-pkg/sub\n" +
			"# example.com/empty v2.0.0\n" +
			"## explicit\n"

		// when
		modules, err := ParseModulesTxt(text)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com/with-pkg v1.0.0"}, modules)
	})

	t.Run("should reject a package line with no parent module", func(t *testing.T) {
		t.Parallel()

		// given
		text := "example.com/orphan/pkg\n"

		// when
		_, err := ParseModulesTxt(text)

		// then
		require.Error(t, err)
		var unexpected *domain.UnexpectedFormat
		assert.ErrorAs(t, err, &unexpected)
	})

	t.Run("should reject an unrecognized directive", func(t *testing.T) {
		t.Parallel()

		// given
		text := "#weird\n"

		// when
		_, err := ParseModulesTxt(text)

		// then
		require.Error(t, err)
	})
}

type fakeGitInspector struct {
	domain.GitInspector
	addIntentToAddErr error
	diffPathOut       string
	diffPathErr       error
	diffNameStatusOut string
	diffNameStatusErr error
	resetCalled       bool
}

func (f *fakeGitInspector) AddIntentToAdd(context.Context, string, string) error { return f.addIntentToAddErr }
func (f *fakeGitInspector) DiffPath(context.Context, string, string) (string, error) {
	return f.diffPathOut, f.diffPathErr
}
func (f *fakeGitInspector) DiffNameStatus(context.Context, string, string) (string, error) {
	return f.diffNameStatusOut, f.diffNameStatusErr
}
func (f *fakeGitInspector) ResetPath(context.Context, string, string) error {
	f.resetCalled = true
	return nil
}

func TestVendorChanged(t *testing.T) {
	t.Parallel()

	t.Run("should report change from a modules.txt diff alone", func(t *testing.T) {
		t.Parallel()

		// given
		git := &fakeGitInspector{diffPathOut: "- old\n+ new\n"}

		// when
		changed, err := VendorChanged(context.Background(), git, "/repo", "/repo")

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, git.resetCalled)
	})

	t.Run("should fall back to a name-status diff when modules.txt is unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		git := &fakeGitInspector{diffNameStatusOut: "A\tvendor/example.com/new/file.go\n"}

		// when
		changed, err := VendorChanged(context.Background(), git, "/repo", "/repo")

		// then
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("should report no change when both diffs are empty", func(t *testing.T) {
		t.Parallel()

		// given
		git := &fakeGitInspector{}

		// when
		changed, err := VendorChanged(context.Background(), git, "/repo", "/repo")

		// then
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("should always reset the intent-to-add stage even when the diff fails", func(t *testing.T) {
		t.Parallel()

		// given
		git := &fakeGitInspector{diffPathErr: assert.AnError}

		// when
		_, err := VendorChanged(context.Background(), git, "/repo", "/repo")

		// then
		require.Error(t, err)
		assert.True(t, git.resetCalled)
	})
}
