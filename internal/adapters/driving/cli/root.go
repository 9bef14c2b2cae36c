// Package cli implements the command-line interface. Commands are package
// level vars registered in init(); the services they call are built once the
// persistent flags are parsed, via the bootstrap hook injected from main.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rackmesa/ragstack/internal/core/ports/driving"
	"github.com/rackmesa/ragstack/internal/logger"
)

var (
	// Services injected by the bootstrap hook.
	ingestionService driving.IngestionService
	queryService     driving.QueryService

	// bootstrap builds the services from the config at configPath. Set from
	// main; runs after flag parsing so --config and --verbose are honoured.
	bootstrap func(configPath string) error

	// Persistent flags.
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ragstack",
	Short: "Ask questions grounded in your own documentation",
	Long: `ragstack ingests markdown and text documentation into a local vector
store and answers questions about it using a configured AI provider. Answers
come only from the ingested content.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)

		// Version and help don't need services.
		if cmd.Name() == "version" || bootstrap == nil {
			return nil
		}
		return bootstrap(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.ragstack/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetBootstrap registers the hook that builds the services once flags are
// parsed.
func SetBootstrap(fn func(configPath string) error) {
	bootstrap = fn
}

// SetServices injects the core services the commands delegate to.
func SetServices(ingestion driving.IngestionService, query driving.QueryService) {
	ingestionService = ingestion
	queryService = query
}

// Execute parses arguments and runs the selected command.
func Execute() error {
	return rootCmd.Execute()
}
