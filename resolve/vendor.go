package resolve

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
)

// ParseModulesTxt extracts the "# module version [=> replace]" lines from a
// vendor/modules.txt file that introduce at least one vendored package,
// in file order. Modules listed with no packages underneath (an explicit
// `## explicit` marker with nothing vendored) are dropped, matching what
// `go mod vendor` itself would re-derive.
func ParseModulesTxt(text string) ([]string, error) {
	var moduleLines []string
	hasPackage := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "## "):
			continue
		case strings.HasPrefix(line, "# "):
			moduleLines = append(moduleLines, line[2:])
		case strings.HasPrefix(line, "#"):
			return nil, &domain.UnexpectedFormat{
				Reason: "vendor/modules.txt: unrecognized directive: " + line,
			}
		default:
			if len(moduleLines) == 0 {
				return nil, &domain.UnexpectedFormat{
					Reason: "vendor/modules.txt: package line has no parent module: " + line,
				}
			}
			hasPackage[moduleLines[len(moduleLines)-1]] = true
		}
	}

	var result []string
	for _, line := range moduleLines {
		if hasPackage[line] {
			result = append(result, line)
		}
	}
	return result, nil
}

// VendorChanged reports whether the vendor/ directory under appDir differs
// from what go.mod currently requires, using a Git-native three-step check:
// stage vendor/ with intent-to-add (so untracked files show up in a diff),
// compare vendor/modules.txt's content, then fall back to a name-status
// diff across the rest of vendor/. The staged intent-to-add is always
// reset before returning, on every exit path.
func VendorChanged(ctx context.Context, git domain.GitInspector, gitDir, appDir string) (bool, error) {
	if err := git.AddIntentToAdd(ctx, gitDir, appDir); err != nil {
		return false, err
	}
	defer func() { _ = git.ResetPath(ctx, gitDir, appDir) }()

	modulesTxt := filepath.Join(appDir, "vendor", "modules.txt")
	diff, err := git.DiffPath(ctx, gitDir, modulesTxt)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(diff) != "" {
		return true, nil
	}

	vendorDir := filepath.Join(appDir, "vendor")
	nameStatus, err := git.DiffNameStatus(ctx, gitDir, vendorDir)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(nameStatus) != "", nil
}
