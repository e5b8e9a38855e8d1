package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/dig"

	"github.com/spf13/cobra"

	"github.com/forgecode/gomod-prefetch/domain"
	"github.com/forgecode/gomod-prefetch/engine"
)

var (
	goproxyURL   string
	vendorFlag   bool
	vendorCheck  bool
	cgoDisable   bool
	forceTidy    bool
	dryRun       bool
	replaceFlags []string
	maxTries     int
)

func newResolveCommand() *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve <source-dir> <output-dir> [module-subpath...]",
		Short: "Resolve Go module dependencies and emit a manifest",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runResolve,
	}

	resolveCmd.Flags().StringVar(&goproxyURL, "goproxy", "", "override GOPROXY for this invocation")
	resolveCmd.Flags().BoolVar(&vendorFlag, "vendor", false, "vendor dependencies, allowing the vendor directory to change")
	resolveCmd.Flags().BoolVar(&vendorCheck, "vendor-check", false, "vendor dependencies but reject any change to the vendor directory")
	resolveCmd.Flags().BoolVar(&cgoDisable, "cgo-disable", false, "resolve with CGO_ENABLED=0")
	resolveCmd.Flags().BoolVar(&forceTidy, "force-tidy", false, "always run `go mod tidy` before resolving")
	resolveCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be fetched without downloading or vendoring")
	resolveCmd.Flags().StringArrayVar(&replaceFlags, "replace", nil, "dependency replacement as NAME[=>NEWNAME]@VERSION, repeatable")
	resolveCmd.Flags().IntVar(&maxTries, "max-tries", 0, "override the download retry budget")

	return resolveCmd
}

func runResolve(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if goproxyURL != "" {
		cfg.GoproxyURL = goproxyURL
	}
	if maxTries > 0 {
		cfg.GomodDownloadMaxTries = maxTries
	}

	replacements, err := parseReplacements(replaceFlags)
	if err != nil {
		return err
	}

	req := &domain.Request{
		SourceDir:    args[0],
		OutputDir:    args[1],
		Subpaths:     args[2:],
		Replacements: replacements,
		Flags: map[string]bool{
			domain.FlagGomodVendor:      vendorFlag,
			domain.FlagGomodVendorCheck: vendorCheck,
			domain.FlagCgoDisable:       cgoDisable,
			domain.FlagForceGomodTidy:   forceTidy,
		},
	}

	container := dig.New()
	if err := RegisterProviders(container, cfg); err != nil {
		return err
	}

	return container.Invoke(func(eng *engine.Engine) error {
		ctx := context.Background()

		if dryRun {
			planned, planErr := eng.Plan(ctx, req)
			if planErr != nil {
				return planErr
			}
			return printJSON(planned)
		}

		packages, runErr := eng.Run(ctx, req)
		if runErr != nil {
			return runErr
		}
		return printJSON(packages)
	})
}

// parseReplacements parses "NAME[=>NEWNAME]@VERSION" flag values.
func parseReplacements(raw []string) ([]domain.Replacement, error) {
	var out []domain.Replacement
	for _, r := range raw {
		name, rest, ok := strings.Cut(r, "@")
		if !ok {
			return nil, fmt.Errorf("invalid --replace value %q: expected NAME[=>NEWNAME]@VERSION", r)
		}
		newName := ""
		if old, new, has := strings.Cut(name, "=>"); has {
			name, newName = old, new
		}
		out = append(out, domain.Replacement{Name: name, NewName: newName, Version: rest})
	}
	return out, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
