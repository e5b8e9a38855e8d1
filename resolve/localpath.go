package resolve

import (
	"fmt"
	"path"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
)

// VetModuleDeps rejects a listing of module dependencies containing a local
// (filesystem) path reference: either an absolute path, or a relative path
// that escapes its module root via "..".
func VetModuleDeps(modules []domain.ModuleRecord) error {
	for _, m := range modules {
		if err := vetLocalVersion(m.Name, m.Version); err != nil {
			return err
		}
	}
	return nil
}

// VetPackageDeps applies the same check to package-level dependency
// versions, skipping standard-library packages (nil version).
func VetPackageDeps(pkgs []domain.PackageRecord) error {
	for _, p := range pkgs {
		if p.Version == nil {
			continue
		}
		if err := vetLocalVersion(p.Name, *p.Version); err != nil {
			return err
		}
	}
	return nil
}

func vetLocalVersion(name, version string) error {
	if version == "" || !strings.HasPrefix(version, ".") && !strings.HasPrefix(version, "/") &&
		!strings.HasPrefix(version, `\`) && !isWindowsDriveRoot(version) {
		return nil
	}

	if strings.HasPrefix(version, ".") {
		for _, part := range strings.Split(version, "/") {
			if part == ".." {
				return &domain.UnsupportedFeature{
					Reason: fmt.Sprintf("local dependency path escapes its module root: %s (%s)", name, version),
				}
			}
		}
		return nil
	}

	return &domain.UnsupportedFeature{
		Reason: fmt.Sprintf("absolute local dependency paths are not supported: %s (%s)", name, version),
	}
}

func isWindowsDriveRoot(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

// ContainsPackage reports whether pkg is parent itself, or a subpackage
// nested under parent (separated by "/").
func ContainsPackage(parent, pkg string) bool {
	if !strings.HasPrefix(pkg, parent) {
		return false
	}
	if len(pkg) == len(parent) {
		return true
	}
	return pkg[len(parent)] == '/'
}

// MatchParentModule finds the longest module name in moduleNames that
// contains pkgName, mirroring Go's own longest-prefix module resolution.
func MatchParentModule(pkgName string, moduleNames []string) (string, bool) {
	best := ""
	found := false
	for _, m := range moduleNames {
		if ContainsPackage(m, pkgName) && len(m) > len(best) {
			best = m
			found = true
		}
	}
	return best, found
}

// PathToSubpackage returns sub's path relative to parent ("" if sub is
// parent itself). It errors if sub does not actually live under parent.
func PathToSubpackage(parent, sub string) (string, error) {
	if !ContainsPackage(parent, sub) {
		return "", fmt.Errorf("package %s does not belong to module %s", sub, parent)
	}
	return strings.TrimPrefix(sub[len(parent):], "/"), nil
}

// SetFullLocalDepRelPaths rewrites every package dependency whose version is
// a bare relative local path (e.g. "../sibling") into a path relative to the
// repository root, by locating which local module dependency it actually
// belongs to and joining that module's own local path with the package's
// subpath inside it.
func SetFullLocalDepRelPaths(pkgDeps []domain.PackageRecord, moduleDeps []domain.ModuleRecord) error {
	var localModules []string
	for _, m := range moduleDeps {
		if strings.HasPrefix(m.Version, ".") {
			localModules = append(localModules, m.Name)
		}
	}

	for i := range pkgDeps {
		dep := &pkgDeps[i]
		if dep.Version == nil || !strings.HasPrefix(*dep.Version, ".") {
			continue
		}

		parent, ok := MatchParentModule(dep.Name, localModules)
		if !ok {
			return fmt.Errorf("could not find the local Go module owning package: %s", dep.Name)
		}
		rel, err := PathToSubpackage(parent, dep.Name)
		if err != nil {
			return err
		}
		if rel == "" {
			continue
		}

		var parentVersion string
		for _, m := range moduleDeps {
			if m.Name == parent {
				parentVersion = m.Version
				break
			}
		}
		joined := path.Join(parentVersion, rel)
		dep.Version = &joined
	}

	return nil
}
