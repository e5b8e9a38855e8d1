package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
)

// ResolverConfig carries the configuration knobs that apply across every
// subpath a single invocation resolves.
type ResolverConfig struct {
	GoproxyURL       string
	StrictVendor     bool
	DownloadMaxTries int
}

// Resolver is C9: it drives one module subpath through the full sequence of
// replacement application, download-or-vendor, listing, version resolution,
// cache merge, and local-path rewriting, producing one ResolvedModule.
type Resolver struct {
	Runner      *Runner
	Oracle      *GitVersionOracle
	Git         domain.GitInspector
	Reconciler  *Reconciler
	Config      ResolverConfig
}

// NewResolver wires a Resolver from its collaborators.
func NewResolver(runner *Runner, oracle *GitVersionOracle, git domain.GitInspector, cfg ResolverConfig) *Resolver {
	return &Resolver{
		Runner:     runner,
		Oracle:     oracle,
		Git:        git,
		Reconciler: NewReconciler(runner),
		Config:     cfg,
	}
}

// Resolve runs the full algorithm for the module rooted at appDir, a
// subdirectory of the Git repository rooted at gitDir, merging its download
// cache into outputCacheDir.
func (r *Resolver) Resolve(ctx context.Context, req *domain.Request, appDir, gitDir, outputCacheDir string) (*domain.ResolvedModule, error) {
	scope, err := OpenGoCacheScope(r.Runner)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Close(ctx) }()

	env := r.buildEnv(scope.Dir, req.Flags)
	params := domain.ExecParams{Dir: appDir, Env: env}

	requestedNames := make(map[string]bool, len(req.Replacements))
	for _, rep := range req.Replacements {
		requestedNames[rep.Name] = true
	}

	if err := r.Reconciler.ApplyReplacements(ctx, appDir, env, req.Replacements); err != nil {
		return nil, err
	}

	vendorDir := filepath.Join(appDir, "vendor")
	vendorExists := dirExists(vendorDir)
	shouldVendor, canMakeChanges, err := decideVendorMode(req.Flags, vendorExists, r.Config.StrictVendor)
	if err != nil {
		return nil, err
	}

	if shouldVendor {
		if _, err := r.Runner.RunDownload(ctx, []string{"go", "mod", "vendor"}, params); err != nil {
			return nil, err
		}
		if !canMakeChanges {
			changed, err := VendorChanged(ctx, r.Git, gitDir, appDir)
			if err != nil {
				return nil, err
			}
			if changed {
				return nil, &domain.PackageRejected{
					Reason:   "the content of the vendor directory is not consistent with go.mod",
					Solution: "run `go mod vendor` locally and commit the result",
				}
			}
		}
	} else {
		if _, err := r.Runner.RunDownload(ctx, []string{"go", "mod", "download"}, params); err != nil {
			return nil, err
		}
	}

	if req.Flags[domain.FlagForceGomodTidy] || len(req.Replacements) > 0 {
		if _, err := r.Runner.Run(ctx, []string{"go", "mod", "tidy"}, params); err != nil {
			return nil, err
		}
	}

	mainOut, err := r.Runner.Run(ctx, []string{"go", "list", "-m"}, params)
	if err != nil {
		return nil, err
	}
	mainName := strings.TrimSpace(mainOut)

	var rawModuleLines string
	if shouldVendor {
		data, readErr := os.ReadFile(filepath.Join(vendorDir, "modules.txt"))
		if readErr != nil {
			return nil, readErr
		}
		moduleLines, parseErr := ParseModulesTxt(string(data))
		if parseErr != nil {
			return nil, parseErr
		}
		rawModuleLines = strings.Join(moduleLines, "\n")
	} else {
		out, listErr := r.Runner.Run(ctx, []string{
			"go", "list", "-mod", "readonly", "-m", "-f", "{{ if not .Main }}{{ .String }}{{ end }}", "all",
		}, params)
		if listErr != nil {
			return nil, listErr
		}
		rawModuleLines = out
	}

	moduleDeps, hints := ParseMLines(rawModuleLines, requestedNames)
	if err := Reconcile(req.Replacements, hints); err != nil {
		return nil, err
	}

	subpath := ""
	if appDir != gitDir {
		rel, relErr := filepath.Rel(gitDir, appDir)
		if relErr != nil {
			return nil, relErr
		}
		subpath = rel
	}
	moduleVersion, err := r.Oracle.Version(ctx, mainName, gitDir, "HEAD", subpath, true)
	if err != nil {
		return nil, err
	}
	mainRecord := domain.ModuleRecord{Name: mainName, Kind: domain.KindGoMod, Version: moduleVersion}

	if shouldVendor {
		if err := os.MkdirAll(outputCacheDir, 0o755); err != nil {
			return nil, err
		}
	} else {
		downloadCacheDir := filepath.Join(scope.Dir, "pkg", "mod", "cache", "download")
		if err := MergeCacheDirs(downloadCacheDir, outputCacheDir); err != nil {
			return nil, err
		}
	}

	listArgs := []string{"go", "list"}
	if !shouldVendor {
		listArgs = append(listArgs, "-mod", "readonly")
	}

	pkgListOut, err := r.Runner.Run(ctx, append(append([]string{}, listArgs...), "-find", "./..."), params)
	if err != nil {
		return nil, err
	}
	pkgNames := splitNonEmptyLines(pkgListOut)

	depsJSONOut, err := r.Runner.Run(ctx, append(append([]string{}, listArgs...), "-e", "-deps", "-json", "./..."), params)
	if err != nil {
		return nil, err
	}
	listing, err := ParseDepsJSON(depsJSONOut)
	if err != nil {
		return nil, err
	}

	pkgDeps := buildPackageDeps(pkgNames, listing, moduleVersion)

	if err := VetModuleDeps(moduleDeps); err != nil {
		return nil, err
	}
	for i := range pkgDeps {
		if err := VetPackageDeps(pkgDeps[i].Deps); err != nil {
			return nil, err
		}
		if err := SetFullLocalDepRelPaths(pkgDeps[i].Deps, moduleDeps); err != nil {
			return nil, err
		}
	}

	return &domain.ResolvedModule{
		Main:       mainRecord,
		ModuleDeps: moduleDeps,
		Packages:   pkgDeps,
	}, nil
}

// buildPackageDeps walks the top-level package list in order, skipping any
// package already seen as a dependency of an earlier top-level package: Go
// resolves packages top-down, so a package reachable from another top-level
// package's own dependency graph would otherwise be emitted twice.
func buildPackageDeps(pkgNames []string, listing map[string]domain.ListingEntry, moduleVersion string) []domain.PackageDeps {
	processed := make(map[string]bool)

	var pkgDeps []domain.PackageDeps
	for _, pkgName := range pkgNames {
		if processed[pkgName] {
			continue
		}

		entry, ok := listing[pkgName]

		var deps []domain.PackageRecord
		if ok {
			for _, depName := range entry.Deps {
				depEntry := listing[depName]
				processed[depName] = true

				var version *string
				if !depEntry.Standard {
					v := depVersion(depEntry, moduleVersion)
					version = &v
				}
				deps = append(deps, domain.PackageRecord{Name: depName, Kind: domain.KindGoPackage, Version: version})
			}
		}

		topVersion := moduleVersion
		pkgDeps = append(pkgDeps, domain.PackageDeps{
			Package: domain.PackageRecord{Name: pkgName, Kind: domain.KindGoPackage, Version: &topVersion},
			Deps:    deps,
		})
	}
	return pkgDeps
}

// depVersion reports the version a listed dependency package's own module
// carries: the replace target if one applies, its own recorded version
// otherwise, and the resolving main module's version as a last resort for
// packages belonging to the main module itself.
func depVersion(entry domain.ListingEntry, fallback string) string {
	if entry.Module == nil {
		return fallback
	}
	if entry.Module.Replace != nil {
		if entry.Module.Replace.Version != "" {
			return entry.Module.Replace.Version
		}
		if entry.Module.Replace.Path != "" {
			return entry.Module.Replace.Path
		}
	}
	if entry.Module.Version != "" {
		return entry.Module.Version
	}
	return fallback
}

// decideVendorMode implements the vendor-mode decision table: whether
// `go mod vendor` should run at all, and whether the resulting vendor/
// directory is allowed to differ from what's already committed.
func decideVendorMode(flags map[string]bool, vendorExists, strict bool) (shouldVendor, canMakeChanges bool, err error) {
	if flags[domain.FlagGomodVendorCheck] {
		return true, !vendorExists, nil
	}
	if flags[domain.FlagGomodVendor] {
		return true, true, nil
	}
	if strict && vendorExists {
		return false, false, &domain.PackageRejected{
			Reason:   `the "gomod-vendor" or "gomod-vendor-check" flag must be set for a repository with vendored dependencies`,
			Solution: "remove the vendor/ directory, or pass one of the required flags",
		}
	}
	return false, false, nil
}

func (r *Resolver) buildEnv(scopeDir string, flags map[string]bool) []string {
	env := []string{
		"GOPATH=" + scopeDir,
		"GOCACHE=" + scopeDir,
		"GOMODCACHE=" + filepath.Join(scopeDir, "pkg", "mod"),
		"GO111MODULE=on",
		"PATH=" + os.Getenv("PATH"),
	}
	if r.Config.GoproxyURL != "" {
		env = append(env, "GOPROXY="+r.Config.GoproxyURL)
	}
	if flags[domain.FlagCgoDisable] {
		env = append(env, "CGO_ENABLED=0")
	}
	return env
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func splitNonEmptyLines(text string) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
