// Package engine is the thin seam between the CLI and the resolution
// engine: a full Run, and a read-only Plan used by --dry-run.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
	"github.com/forgecode/gomod-prefetch/resolve"
)

// Engine exposes the two entry points the CLI drives.
type Engine struct {
	Fetcher *resolve.Fetcher
	Runner  *resolve.Runner
	Oracle  *resolve.GitVersionOracle
}

// New wires an Engine from its collaborators.
func New(fetcher *resolve.Fetcher, runner *resolve.Runner, oracle *resolve.GitVersionOracle) *Engine {
	return &Engine{Fetcher: fetcher, Runner: runner, Oracle: oracle}
}

// Run performs the complete pre-fetch: download or vendor verification,
// cache population, and manifest production.
func (e *Engine) Run(ctx context.Context, req *domain.Request) ([]domain.OutputPackage, error) {
	return e.Fetcher.Fetch(ctx, req)
}

// PlannedModule is what Plan reports for a single requested subpath: the
// module's own name and the version the Git Version Oracle would assign it,
// computed without running `go mod download`/`go mod vendor` or touching
// the output cache.
type PlannedModule struct {
	Path    string
	Name    string
	Version string
}

// Plan resolves each requested subpath's module name and version only. It
// never invokes a network-touching toolchain command and never writes to
// req.OutputDir; it exists purely so `--dry-run` can report what a full Run
// would fetch.
func (e *Engine) Plan(ctx context.Context, req *domain.Request) ([]PlannedModule, error) {
	subpaths := req.Subpaths
	if len(subpaths) == 0 {
		subpaths = []string{""}
	}

	var planned []PlannedModule
	for _, sub := range subpaths {
		appDir := filepath.Join(req.SourceDir, sub)
		gomod := filepath.Join(appDir, "go.mod")
		if _, err := os.Stat(gomod); err != nil {
			return nil, &domain.PackageRejected{
				Reason:   fmt.Sprintf("go.mod not found for the requested module(s): %s", gomod),
				Solution: "double-check the module subpaths passed to the request",
			}
		}

		mainOut, err := e.Runner.Run(ctx, []string{"go", "list", "-m"}, domain.ExecParams{Dir: appDir})
		if err != nil {
			return nil, err
		}
		mainName := strings.TrimSpace(mainOut)

		subpathRel := ""
		if appDir != req.SourceDir {
			rel, relErr := filepath.Rel(req.SourceDir, appDir)
			if relErr != nil {
				return nil, relErr
			}
			subpathRel = rel
		}
		version, err := e.Oracle.Version(ctx, mainName, req.SourceDir, "HEAD", subpathRel, false)
		if err != nil {
			return nil, err
		}

		planned = append(planned, PlannedModule{Path: sub, Name: mainName, Version: version})
	}

	return planned, nil
}
