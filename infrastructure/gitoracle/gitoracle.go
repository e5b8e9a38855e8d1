// Package gitoracle implements domain.GitInspector: the read/mutate
// boundary the resolution engine drives against a Git working tree. Tag
// and commit inspection go through go-git directly; the worktree-staging
// operations used by the vendor-drift detector shell out to the git binary,
// since go-git has no equivalent of `git add --intent-to-add`.
package gitoracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/forgecode/gomod-prefetch/domain"
)

// Inspector is the go-git + git-CLI backed domain.GitInspector.
type Inspector struct{}

// New builds an Inspector.
func New() *Inspector { return &Inspector{} }

func (i *Inspector) open(repoDir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
}

// FetchTags fetches all tags from the "origin" remote, forcing updates to
// any that moved.
func (i *Inspector) FetchTags(ctx context.Context, repoDir string) error {
	repo, err := i.open(repoDir)
	if err != nil {
		return err
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// ResolveCommit resolves ref ("HEAD" or a full/short SHA) to a commit.
func (i *Inspector) ResolveCommit(ctx context.Context, repoDir, ref string) (domain.CommitInfo, error) {
	repo, err := i.open(repoDir)
	if err != nil {
		return domain.CommitInfo{}, err
	}

	var hash plumbing.Hash
	if ref == "" || ref == "HEAD" {
		head, headErr := repo.Head()
		if headErr != nil {
			return domain.CommitInfo{}, headErr
		}
		hash = head.Hash()
	} else {
		resolved, resolveErr := repo.ResolveRevision(plumbing.Revision(ref))
		if resolveErr != nil {
			return domain.CommitInfo{}, resolveErr
		}
		hash = *resolved
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return domain.CommitInfo{}, err
	}

	return domain.CommitInfo{SHA: commit.Hash.String(), CommittedAt: commit.Committer.When}, nil
}

// TagsPointingAt returns the names of every tag whose target commit is
// exactly commitSHA, resolving annotated tag objects to their underlying
// commit.
func (i *Inspector) TagsPointingAt(_ context.Context, repoDir, commitSHA string) ([]string, error) {
	repo, err := i.open(repoDir)
	if err != nil {
		return nil, err
	}

	var names []string
	refs, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		commitHash, resolveErr := resolveTagCommit(repo, ref)
		if resolveErr != nil {
			return nil //nolint:nilerr // unresolvable tags are simply not candidates
		}
		if commitHash.String() == commitSHA {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	return names, err
}

// TagsReachableFrom returns the names of every tag whose target commit is
// an ancestor of (or equal to) commitSHA.
func (i *Inspector) TagsReachableFrom(_ context.Context, repoDir, commitSHA string) ([]string, error) {
	repo, err := i.open(repoDir)
	if err != nil {
		return nil, err
	}

	target, err := repo.CommitObject(plumbing.NewHash(commitSHA))
	if err != nil {
		return nil, err
	}

	var names []string
	refs, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		commitHash, resolveErr := resolveTagCommit(repo, ref)
		if resolveErr != nil {
			return nil //nolint:nilerr
		}
		if commitHash.String() == commitSHA {
			names = append(names, ref.Name().Short())
			return nil
		}
		candidate, commitErr := repo.CommitObject(commitHash)
		if commitErr != nil {
			return nil //nolint:nilerr
		}
		isAncestor, ancestorErr := candidate.IsAncestor(target)
		if ancestorErr == nil && isAncestor {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	return names, err
}

func resolveTagCommit(repo *git.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	tagObj, err := repo.TagObject(ref.Hash())
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		// lightweight tag: the reference already points at the commit.
		return ref.Hash(), nil
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}
	commit, err := tagObj.Commit()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return commit.Hash, nil
}

// AddIntentToAdd, DiffPath, DiffNameStatus and ResetPath shell out: go-git's
// worktree API has no equivalent of intent-to-add staging.

func (i *Inspector) AddIntentToAdd(ctx context.Context, repoDir, path string) error {
	_, err := runGit(ctx, repoDir, "add", "--intent-to-add", "--force", "--", path)
	return err
}

func (i *Inspector) DiffPath(ctx context.Context, repoDir, path string) (string, error) {
	return runGit(ctx, repoDir, "diff", "--", path)
}

func (i *Inspector) DiffNameStatus(ctx context.Context, repoDir, path string) (string, error) {
	return runGit(ctx, repoDir, "diff", "--name-status", "--", path)
}

func (i *Inspector) ResetPath(ctx context.Context, repoDir, path string) error {
	_, err := runGit(ctx, repoDir, "reset", "--", path)
	return err
}

func runGit(ctx context.Context, repoDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("git %v: %w: %s", args, err, stderr.String())
	}
	return stdout.String(), nil
}
