package gitoracle_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/gomod-prefetch/infrastructure/gitoracle"
)

// runGit shells out to the real git binary to build a fixture repository;
// the Inspector under test is exercised against an actual .git directory
// rather than a fake, since its whole job is translating go-git/git-CLI
// semantics correctly.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v: %s", args, out)
}

func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/fixture\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")
	return dir
}

func TestInspector_ResolveCommit(t *testing.T) {
	t.Parallel()

	t.Run("should resolve HEAD to the tip commit", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		inspector := gitoracle.New()

		// when
		info, err := inspector.ResolveCommit(context.Background(), dir, "HEAD")

		// then
		require.NoError(t, err)
		assert.Len(t, info.SHA, 40)
		assert.False(t, info.CommittedAt.IsZero())
	})
}

func TestInspector_TagsPointingAt(t *testing.T) {
	t.Parallel()

	t.Run("should find a lightweight tag pointing at the commit", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		runGit(t, dir, "tag", "v1.0.0")
		inspector := gitoracle.New()
		head, err := inspector.ResolveCommit(context.Background(), dir, "HEAD")
		require.NoError(t, err)

		// when
		tags, err := inspector.TagsPointingAt(context.Background(), dir, head.SHA)

		// then
		require.NoError(t, err)
		assert.Contains(t, tags, "v1.0.0")
	})

	t.Run("should find an annotated tag pointing at the commit", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		runGit(t, dir, "tag", "-a", "v1.1.0", "-m", "release")
		inspector := gitoracle.New()
		head, err := inspector.ResolveCommit(context.Background(), dir, "HEAD")
		require.NoError(t, err)

		// when
		tags, err := inspector.TagsPointingAt(context.Background(), dir, head.SHA)

		// then
		require.NoError(t, err)
		assert.Contains(t, tags, "v1.1.0")
	})
}

func TestInspector_TagsReachableFrom(t *testing.T) {
	t.Parallel()

	t.Run("should include a tag on an ancestor commit", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		runGit(t, dir, "tag", "v1.0.0")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.go"), []byte("package fixture\n"), 0o644))
		runGit(t, dir, "add", ".")
		runGit(t, dir, "commit", "-q", "-m", "second")

		inspector := gitoracle.New()
		head, err := inspector.ResolveCommit(context.Background(), dir, "HEAD")
		require.NoError(t, err)

		// when
		tags, err := inspector.TagsReachableFrom(context.Background(), dir, head.SHA)

		// then
		require.NoError(t, err)
		assert.Contains(t, tags, "v1.0.0")
	})
}

func TestInspector_VendorDriftOperations(t *testing.T) {
	t.Parallel()

	t.Run("should report no diff for unmodified tracked content", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		inspector := gitoracle.New()

		// when
		diff, err := inspector.DiffPath(context.Background(), dir, "go.mod")

		// then
		require.NoError(t, err)
		assert.Empty(t, diff)
	})

	t.Run("should surface a diff after modifying a tracked file and always reset the stage", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/fixture\n\ngo 1.22\n"), 0o644))
		inspector := gitoracle.New()

		// when
		require.NoError(t, inspector.AddIntentToAdd(context.Background(), dir, "go.mod"))
		diff, diffErr := inspector.DiffPath(context.Background(), dir, "go.mod")
		require.NoError(t, inspector.ResetPath(context.Background(), dir, "go.mod"))

		// then
		require.NoError(t, diffErr)
		assert.Contains(t, diff, "go 1.22")
	})

	t.Run("should surface a name-status diff for an untracked file under intent-to-add", func(t *testing.T) {
		t.Parallel()

		// given
		dir := newFixtureRepo(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "new.go"), []byte("package vendor\n"), 0o644))
		inspector := gitoracle.New()

		// when
		require.NoError(t, inspector.AddIntentToAdd(context.Background(), dir, "vendor"))
		status, statusErr := inspector.DiffNameStatus(context.Background(), dir, "vendor")
		require.NoError(t, inspector.ResetPath(context.Background(), dir, "vendor"))

		// then
		require.NoError(t, statusErr)
		assert.Contains(t, status, "vendor/new.go")
	})
}
