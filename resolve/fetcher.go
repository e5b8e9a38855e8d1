package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
)

// Fetcher is C10: the top-level entry point. It validates the request
// shape, fans a Resolver out across every requested module subpath, and
// flattens each ResolvedModule into the output manifest's package records.
type Fetcher struct {
	Resolver *Resolver
}

// NewFetcher builds a Fetcher.
func NewFetcher(resolver *Resolver) *Fetcher {
	return &Fetcher{Resolver: resolver}
}

// Fetch resolves every subpath in req and returns the manifest in module,
// then package, emission order.
func (f *Fetcher) Fetch(ctx context.Context, req *domain.Request) ([]domain.OutputPackage, error) {
	subpaths := req.Subpaths
	if len(subpaths) == 0 {
		subpaths = []string{""}
	}

	var missing []string
	for _, sub := range subpaths {
		gomod := filepath.Join(req.SourceDir, sub, "go.mod")
		if _, err := os.Stat(gomod); err != nil {
			missing = append(missing, gomod)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.PackageRejected{
			Reason:   fmt.Sprintf("go.mod not found for the requested module(s): %s", strings.Join(missing, "; ")),
			Solution: "double-check the module subpaths passed to the request",
		}
	}
	if len(subpaths) > 1 && len(req.Replacements) > 0 {
		return nil, &domain.UnsupportedFeature{
			Reason: "dependency replacements are only supported when resolving a single Go module",
		}
	}

	outputCacheDir := filepath.Join(req.OutputDir, "deps", "gomod", "pkg", "mod", "cache", "download")

	var out []domain.OutputPackage
	for _, sub := range subpaths {
		appDir := filepath.Join(req.SourceDir, sub)

		resolved, err := f.Resolver.Resolve(ctx, req, appDir, req.SourceDir, outputCacheDir)
		if err != nil {
			return nil, err
		}

		out = append(out, domain.OutputPackage{
			Name:         resolved.Main.Name,
			Kind:         resolved.Main.Kind,
			Version:      resolved.Main.Version,
			Path:         sub,
			Dependencies: moduleDepsToRecords(resolved.ModuleDeps),
		})

		for _, pd := range resolved.Packages {
			rel, relErr := PathToSubpackage(resolved.Main.Name, pd.Package.Name)
			if relErr != nil {
				return nil, relErr
			}
			pkgPath := filepath.ToSlash(filepath.Clean(filepath.Join(sub, rel)))

			out = append(out, domain.OutputPackage{
				Name:         pd.Package.Name,
				Kind:         pd.Package.Kind,
				Version:      derefOrEmpty(pd.Package.Version),
				Path:         pkgPath,
				Dependencies: packageDepsToRecords(pd.Deps),
			})
		}
	}

	return out, nil
}

func moduleDepsToRecords(modules []domain.ModuleRecord) []domain.DependencyRecord {
	records := make([]domain.DependencyRecord, len(modules))
	for i, m := range modules {
		v := m.Version
		records[i] = domain.DependencyRecord{Name: m.Name, Kind: m.Kind, Version: &v}
	}
	return records
}

func packageDepsToRecords(pkgs []domain.PackageRecord) []domain.DependencyRecord {
	records := make([]domain.DependencyRecord, len(pkgs))
	for i, p := range pkgs {
		records[i] = domain.DependencyRecord{Name: p.Name, Kind: p.Kind, Version: p.Version}
	}
	return records
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
