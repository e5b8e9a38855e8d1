// Package domain holds the data model and collaborator interfaces shared by
// every resolver component: requests coming in, records going out, and the
// process/git boundaries the engine drives without owning.
package domain

const (
	KindGoMod     = "gomod"
	KindGoPackage = "go-package"
)

// Request describes a single pre-fetch invocation: a source tree rooted at
// SourceDir, one or more module subpaths inside it, an output cache rooted
// at OutputDir, and the flags/replacements that steer how each subpath is
// resolved.
type Request struct {
	SourceDir    string
	OutputDir    string
	Subpaths     []string
	Replacements []Replacement
	Flags        map[string]bool
}

const (
	FlagGomodVendor      = "gomod-vendor"
	FlagGomodVendorCheck = "gomod-vendor-check"
	FlagCgoDisable       = "cgo-disable"
	FlagForceGomodTidy   = "force-gomod-tidy"
)

// Replacement is a user-requested `go mod edit -replace` directive applied
// before resolution begins.
type Replacement struct {
	Name    string
	NewName string
	Version string
}

// ModuleRecord describes one resolved Go module: its canonical name, fully
// qualified version, and the module it replaced, if any.
type ModuleRecord struct {
	Name     string
	Kind     string
	Version  string
	Replaces *ReplaceRef
}

// ReplaceRef is the (name, version) pair a ModuleRecord replaced.
type ReplaceRef struct {
	Name    string
	Version string
}

// PackageRecord describes one resolved Go package. Version is nil for
// packages belonging to the standard library.
type PackageRecord struct {
	Name    string
	Kind    string
	Version *string
}

// PackageDeps pairs a package with the packages it directly imports.
type PackageDeps struct {
	Package PackageRecord
	Deps    []PackageRecord
}

// ResolvedModule is everything the Resolver (C9) produces for a single
// module subpath: the module's own record, every module it depends on, and
// every package it contains along with each package's direct dependencies.
type ResolvedModule struct {
	Main       ModuleRecord
	ModuleDeps []ModuleRecord
	Packages   []PackageDeps
}

// ReplaceHint is a (old name, old version) pair observed on the left side of
// a `go list -m` replace line. The Reconciler (C6) compares the set of
// hints actually observed against the set of replacements the caller
// requested.
type ReplaceHint struct {
	OldName    string
	OldVersion string
}

// ModuleRef is the "Module" object embedded in a `go list -deps -json`
// listing entry.
type ModuleRef struct {
	Path    string
	Version string
	Main    bool
	Replace *ReplaceModRef
}

// ReplaceModRef is the "Replace" object nested inside a ModuleRef.
type ReplaceModRef struct {
	Path    string
	Version string
}

// ListingEntry is one decoded object from `go list -deps -json` output.
type ListingEntry struct {
	ImportPath string
	Module     *ModuleRef
	Deps       []string
	Standard   bool
}

// DependencyRecord is the flattened (name, kind, version) triple emitted in
// the output manifest's dependency lists.
type DependencyRecord struct {
	Name    string
	Kind    string
	Version *string
}

// OutputPackage is one entry of the manifest the Fetcher (C10) hands off to
// the (out of scope) serializer.
type OutputPackage struct {
	Name         string
	Kind         string
	Version      string
	Path         string
	Dependencies []DependencyRecord
}
