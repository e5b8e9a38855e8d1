// Package cmd is the CLI surface: cobra argument parsing and dig wiring.
// No resolution logic lives here; every command builds a domain.Request and
// hands it to the engine.
package cmd

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forgecode/gomod-prefetch/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gomod-prefetch",
	Short: "Pre-fetch and resolve Go module dependencies into a manifest",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newResolveCommand())
}

// Execute runs the root command.
func Execute() error {
	logger.SetFormatter(&logger.TextFormatter{ForceColors: true, FullTimestamp: true})
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose || os.Getenv("DEBUG") == "true" {
			logger.SetLevel(logger.DebugLevel)
		}
	}
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration: the explicit --config
// path if given, otherwise auto-discovery, falling back to defaults when
// neither produces a file.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		discovered, err := config.FindConfigFile()
		if err != nil {
			return &config.Config{GomodDownloadMaxTries: 5}, nil
		}
		path = discovered
	}
	return config.Load(path)
}
