package domain

import (
	"fmt"
	"strings"
)

// PackageRejected signals that the input source tree is well-formed but the
// resolver refuses to process it: an unsatisfied dependency replacement, a
// missing go.mod, or vendored content inconsistent with go.mod.
type PackageRejected struct {
	Reason   string
	Solution string
}

func (e *PackageRejected) Error() string {
	if e.Solution == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (solution: %s)", e.Reason, e.Solution)
}

// UnsupportedFeature signals a request for something the resolver
// deliberately does not implement, such as an absolute local dependency
// path or multi-module dependency replacements.
type UnsupportedFeature struct {
	Reason string
}

func (e *UnsupportedFeature) Error() string { return e.Reason }

// UnexpectedFormat signals that toolchain or VCS output didn't match any
// shape the parser understands.
type UnexpectedFormat struct {
	Reason   string
	Solution string
}

func (e *UnexpectedFormat) Error() string {
	if e.Solution == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (solution: %s)", e.Reason, e.Solution)
}

// FetchFailure wraps an error coming from the Git Inspector collaborator,
// e.g. a failed tag fetch against a remote that has since disappeared.
type FetchFailure struct {
	ModuleName string
	Err        error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("failed to fetch git history for %s: %v", e.ModuleName, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// GoModFailure wraps a nonzero exit from a Go toolchain invocation.
type GoModFailure struct {
	Command  []string
	ExitCode int
	Message  string
}

func (e *GoModFailure) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("command %q failed with exit status %d", strings.Join(e.Command, " "), e.ExitCode)
}
