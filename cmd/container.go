package cmd

import (
	"go.uber.org/dig"

	"github.com/forgecode/gomod-prefetch/config"
	"github.com/forgecode/gomod-prefetch/domain"
	"github.com/forgecode/gomod-prefetch/engine"
	"github.com/forgecode/gomod-prefetch/infrastructure/gitoracle"
	"github.com/forgecode/gomod-prefetch/infrastructure/process"
	"github.com/forgecode/gomod-prefetch/resolve"
)

// RegisterProviders wires every collaborator the engine needs into
// container, one layer at a time: the process boundary, the Git boundary,
// the resolve-package components built on top of them, and finally the
// engine itself. Each provider is a pure constructor; cfg is the only value
// injected directly rather than constructed.
func RegisterProviders(container *dig.Container, cfg *config.Config) error {
	if err := container.Provide(func() domain.Exec { return process.OSExec }); err != nil {
		return err
	}
	if err := container.Provide(func() domain.GitInspector { return gitoracle.New() }); err != nil {
		return err
	}
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}

	if err := container.Provide(func(exec domain.Exec, c *config.Config) *resolve.Runner {
		return resolve.NewRunner(exec, c.GomodDownloadMaxTries)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(git domain.GitInspector) *resolve.GitVersionOracle {
		return resolve.NewGitVersionOracle(git)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		runner *resolve.Runner,
		oracle *resolve.GitVersionOracle,
		git domain.GitInspector,
		c *config.Config,
	) *resolve.Resolver {
		return resolve.NewResolver(runner, oracle, git, resolve.ResolverConfig{
			GoproxyURL:       c.GoproxyURL,
			StrictVendor:     c.GomodStrictVendor,
			DownloadMaxTries: c.GomodDownloadMaxTries,
		})
	}); err != nil {
		return err
	}
	if err := container.Provide(resolve.NewFetcher); err != nil {
		return err
	}

	if err := container.Provide(engine.New); err != nil {
		return err
	}

	return nil
}
