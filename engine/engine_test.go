package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/gomod-prefetch/domain"
	"github.com/forgecode/gomod-prefetch/engine"
	"github.com/forgecode/gomod-prefetch/resolve"
)

type fakePlanGit struct {
	domain.GitInspector
	commit domain.CommitInfo
	tags   []string
}

func (f *fakePlanGit) ResolveCommit(context.Context, string, string) (domain.CommitInfo, error) {
	return f.commit, nil
}

func (f *fakePlanGit) TagsPointingAt(context.Context, string, string) ([]string, error) {
	return f.tags, nil
}

func (f *fakePlanGit) TagsReachableFrom(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func TestEngine_Plan(t *testing.T) {
	t.Parallel()

	t.Run("should report the module name and version without touching the network", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/foo\n"), 0o644))

		exec := func(_ context.Context, cmd []string, _ domain.ExecParams) (string, int, error) {
			require.Equal(t, []string{"go", "list", "-m"}, cmd)
			return "example.com/foo\n", 0, nil
		}
		runner := resolve.NewRunner(exec, 1)
		git := &fakePlanGit{
			commit: domain.CommitInfo{SHA: "e92462c73bbae140c4fa2587c3a59b8f695593b4", CommittedAt: time.Now()},
			tags:   []string{"v1.0.0"},
		}
		oracle := resolve.NewGitVersionOracle(git)
		eng := engine.New(nil, runner, oracle)

		req := &domain.Request{SourceDir: dir, OutputDir: t.TempDir()}

		// when
		planned, err := eng.Plan(context.Background(), req)

		// then
		require.NoError(t, err)
		require.Len(t, planned, 1)
		assert.Equal(t, "example.com/foo", planned[0].Name)
		assert.Equal(t, "v1.0.0", planned[0].Version)
		assert.Equal(t, "", planned[0].Path)
	})

	t.Run("should reject a subpath missing go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		exec := func(context.Context, []string, domain.ExecParams) (string, int, error) {
			return "", 0, nil
		}
		runner := resolve.NewRunner(exec, 1)
		oracle := resolve.NewGitVersionOracle(&fakePlanGit{})
		eng := engine.New(nil, runner, oracle)

		req := &domain.Request{SourceDir: dir, OutputDir: t.TempDir()}

		// when
		_, err := eng.Plan(context.Background(), req)

		// then
		require.Error(t, err)
		var rejected *domain.PackageRejected
		require.ErrorAs(t, err, &rejected)
	})
}
