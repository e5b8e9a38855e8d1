package resolve

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/forgecode/gomod-prefetch/domain"
)

// GoCacheScope owns a temporary directory used as GOPATH/GOCACHE for the
// lifetime of one resolution and guarantees its teardown runs in two
// phases: first a best-effort `go clean -modcache` through the owning
// Runner, then an unconditional directory removal. The second phase runs
// even when the first fails.
type GoCacheScope struct {
	Dir    string
	runner *Runner
}

// OpenGoCacheScope creates the scratch directory. Callers must defer
// Close.
func OpenGoCacheScope(runner *Runner) (*GoCacheScope, error) {
	dir, err := os.MkdirTemp("", "gomod-prefetch-*")
	if err != nil {
		return nil, err
	}
	return &GoCacheScope{Dir: dir, runner: runner}, nil
}

// Close runs `go clean -modcache` against the scope (ignoring its outcome)
// and then removes the scratch directory regardless of whether the clean
// succeeded.
func (s *GoCacheScope) Close(ctx context.Context) error {
	env := []string{"GOPATH=" + s.Dir, "GOCACHE=" + s.Dir}
	if _, err := s.runner.Run(ctx, []string{"go", "clean", "-modcache"}, domain.ExecParams{Env: env}); err != nil {
		logger.Warnf("go clean -modcache failed while tearing down cache scope %s: %v", s.Dir, err)
	}
	return os.RemoveAll(s.Dir)
}
