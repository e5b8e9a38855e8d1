package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"
	xsemver "golang.org/x/mod/semver"

	"github.com/forgecode/gomod-prefetch/domain"
)

// majorSuffixPattern recognizes the "/vN" suffix a Go module path carries
// once it has passed major version 1, e.g. "example.com/mod/v3".
var majorSuffixPattern = regexp.MustCompile(`/v(\d+)$`)

// GitVersionOracle implements Go's own rule for computing a module's version
// from its position in Git history: the highest semver tag pointing at the
// target commit, the highest semver tag reachable from it (promoted to a
// pseudo-version), or, with no tag at all, a vN.0.0 pseudo-version where N
// is the module path's declared major version (0 when it declares none).
type GitVersionOracle struct {
	Git domain.GitInspector
}

// NewGitVersionOracle builds a GitVersionOracle.
func NewGitVersionOracle(git domain.GitInspector) *GitVersionOracle {
	return &GitVersionOracle{Git: git}
}

// Version resolves moduleName's version at commitRef inside the repository
// rooted at gitDir, where the module itself lives at subpath relative to
// gitDir ("" for a module at the repository root). When updateTags is true,
// tags are fetched from the remote before being inspected.
func (o *GitVersionOracle) Version(ctx context.Context, moduleName, gitDir, commitRef, subpath string, updateTags bool) (string, error) {
	var declaredMajor *int
	if m := majorSuffixPattern.FindStringSubmatch(moduleName); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 2 {
			declaredMajor = &n
		}
	}

	if updateTags {
		if err := o.Git.FetchTags(ctx, gitDir); err != nil {
			return "", &domain.FetchFailure{ModuleName: moduleName, Err: err}
		}
	}

	commit, err := o.Git.ResolveCommit(ctx, gitDir, commitRef)
	if err != nil {
		return "", err
	}

	candidates := []int{1, 0}
	if declaredMajor != nil {
		candidates = []int{*declaredMajor}
	}

	pointing, err := o.Git.TagsPointingAt(ctx, gitDir, commit.SHA)
	if err != nil {
		return "", err
	}
	for _, major := range candidates {
		if tag, _, ok := highestTagForMajor(pointing, major, subpath); ok {
			return stripSubpathPrefix(tag, subpath), nil
		}
	}

	reachable, err := o.Git.TagsReachableFrom(ctx, gitDir, commit.SHA)
	if err != nil {
		return "", err
	}
	for _, major := range candidates {
		if _, base, ok := highestTagForMajor(reachable, major, subpath); ok {
			return buildPseudoVersion(commit, base), nil
		}
	}

	major := 0
	if declaredMajor != nil {
		major = *declaredMajor
	}
	return fmt.Sprintf("v%d.0.0-%s", major, pseudoSuffix(commit)), nil
}

// highestTagForMajor scans tagNames for the highest semver tag (optionally
// namespaced under subpath, "subpath/vX.Y.Z") whose major version equals
// major. Tags that don't parse as semver are logged and ignored, matching
// Go's own lenient tag handling.
func highestTagForMajor(tagNames []string, major int, subpath string) (tagName string, version *semver.Version, ok bool) {
	var best *semver.Version
	var bestName string

	for _, raw := range tagNames {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		versionText, matched := stripTagPrefix(raw, subpath)
		if !matched {
			continue
		}
		if !xsemver.IsValid("v" + versionText) {
			logger.Warnf("ignoring unparseable semver tag %q", raw)
			continue
		}
		parsed, err := semver.NewVersion(versionText)
		if err != nil {
			logger.Warnf("ignoring unparseable semver tag %q: %v", raw, err)
			continue
		}
		if int(parsed.Major()) != major {
			continue
		}
		if best == nil || parsed.Compare(best) > 0 {
			best = parsed
			bestName = raw
		}
	}

	if best == nil {
		return "", nil, false
	}
	return bestName, best, true
}

// stripTagPrefix removes the "v" (or "subpath/v") prefix a tag must carry to
// be considered for a module rooted at subpath. It reports whether the tag
// matched that shape at all.
func stripTagPrefix(tag, subpath string) (string, bool) {
	prefix := "v"
	if subpath != "" {
		prefix = subpath + "/v"
	}
	if !strings.HasPrefix(tag, prefix) {
		return "", false
	}
	return strings.TrimPrefix(tag, prefix), true
}

func stripSubpathPrefix(tag, subpath string) string {
	if subpath == "" {
		return tag
	}
	return strings.TrimPrefix(tag, subpath+"/")
}

// buildPseudoVersion derives a Go pseudo-version from a base semver tag and
// the commit past it. A base tag with a nonempty prerelease keeps its
// version triple as-is; one without a prerelease has its patch bumped,
// matching `go mod` itself.
func buildPseudoVersion(commit domain.CommitInfo, base *semver.Version) string {
	suffix := pseudoSuffix(commit)
	if pre := base.Prerelease(); pre != "" {
		return fmt.Sprintf("v%d.%d.%d-%s.0.%s", base.Major(), base.Minor(), base.Patch(), pre, suffix)
	}
	bumped := base.IncPatch()
	return fmt.Sprintf("v%d.%d.%d-0.%s", bumped.Major(), bumped.Minor(), bumped.Patch(), suffix)
}

func pseudoSuffix(commit domain.CommitInfo) string {
	hash := commit.SHA
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return fmt.Sprintf("%s-%s", commit.CommittedAt.UTC().Format("20060102150405"), hash)
}
