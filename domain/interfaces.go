package domain

import (
	"context"
	"time"
)

// ExecParams pins the working directory and the full environment (not
// inherited, other than what the caller injects explicitly) a command runs
// under. A nil Env sets no environment of its own: the process.OSExec
// implementation then lets the command inherit the caller's environment.
type ExecParams struct {
	Dir string
	Env []string
}

// Exec runs an external command to completion and reports its captured
// stdout, its exit code, and any error that prevented the command from
// running at all (a missing binary, a cancelled context). A nonzero exit
// code is not itself an error: callers classify it.
type Exec func(ctx context.Context, cmd []string, params ExecParams) (stdout string, exitCode int, err error)

// CommitInfo is the subset of a Git commit the version oracle needs: its
// full hex SHA and the time it was committed, for the pseudo-version
// timestamp component.
type CommitInfo struct {
	SHA         string
	CommittedAt time.Time
}

// GitInspector is the read/mutate boundary the resolver drives against a
// Git working tree. It never shells out to the Go toolchain and never
// reasons about module semantics; it only answers questions about commits,
// tags, and working-tree status.
type GitInspector interface {
	FetchTags(ctx context.Context, repoDir string) error
	ResolveCommit(ctx context.Context, repoDir, ref string) (CommitInfo, error)
	TagsPointingAt(ctx context.Context, repoDir, commitSHA string) ([]string, error)
	TagsReachableFrom(ctx context.Context, repoDir, commitSHA string) ([]string, error)

	AddIntentToAdd(ctx context.Context, repoDir, path string) error
	DiffPath(ctx context.Context, repoDir, path string) (string, error)
	DiffNameStatus(ctx context.Context, repoDir, path string) (string, error)
	ResetPath(ctx context.Context, repoDir, path string) error
}
