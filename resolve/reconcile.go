package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/forgecode/gomod-prefetch/domain"
)

// Reconciler applies the caller's requested dependency replacements and
// later confirms each one actually took effect.
type Reconciler struct {
	Runner *Runner
}

// NewReconciler builds a Reconciler.
func NewReconciler(runner *Runner) *Reconciler {
	return &Reconciler{Runner: runner}
}

// ApplyReplacements runs `go mod edit -replace` once per requested
// replacement, in the order given.
func (r *Reconciler) ApplyReplacements(ctx context.Context, appDir string, env []string, replacements []domain.Replacement) error {
	for _, rep := range replacements {
		target := rep.Version
		if rep.NewName != "" {
			target = rep.NewName + "@" + rep.Version
		}
		arg := fmt.Sprintf("%s=%s", rep.Name, target)
		if _, err := r.Runner.Run(ctx, []string{"go", "mod", "edit", "-replace", arg}, domain.ExecParams{Dir: appDir, Env: env}); err != nil {
			return err
		}
	}
	return nil
}

// Reconcile compares the replacements the caller requested against the
// ReplaceHints actually observed while parsing the module listing. A
// requested replacement with no matching hint means go.mod's own resolution
// logic dropped it (the replaced module isn't actually required anywhere),
// which this engine treats as a rejected request rather than a silent
// no-op.
func Reconcile(replacements []domain.Replacement, hints []domain.ReplaceHint) error {
	honored := make(map[string]bool, len(hints))
	for _, h := range hints {
		honored[h.OldName] = true
	}

	var unapplied []string
	for _, rep := range replacements {
		if !honored[rep.Name] {
			unapplied = append(unapplied, rep.Name)
		}
	}
	if len(unapplied) == 0 {
		return nil
	}

	sort.Strings(unapplied)
	return &domain.PackageRejected{
		Reason:   fmt.Sprintf("the following dependency replacements don't apply to any required module: %s", strings.Join(unapplied, ", ")),
		Solution: "remove the unused replacement(s), or double-check the module name being replaced",
	}
}
