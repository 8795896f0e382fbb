// fabricbd - Bridge-Domain Fabric Manager
//
// A CLI tool for discovering, consolidating, and deploying Layer-2 bridge
// domains across a leaf/spine/superspine fabric:
//
//	fabricbd discover <commands-dir>     # parse raw CLI output, build topology + services
//	fabricbd build <intent.json>         # validate an intent, compute paths, synthesize commands
//	fabricbd deploy <deployment-id> [-x] # stage/commit/verify a synthesized deployment
//	fabricbd show services|topology|deployments
//
// Dry-run by default; -x executes a deployment (teacher cmd/newtron's
// "-x to execute" convention).
package main

import (
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/dnaas-fabric/fabricbd/internal/config"
	"github.com/dnaas-fabric/fabricbd/internal/store"
	"github.com/dnaas-fabric/fabricbd/internal/util"
)

// App holds CLI state shared across all commands.
type App struct {
	configPath string
	verbose    bool
	jsonOutput bool

	settings *config.Settings
	store    store.Store
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "fabricbd",
	Short:         "Bridge-Domain Fabric Manager",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `fabricbd discovers, classifies, consolidates, and deploys Layer-2
bridge domains across a leaf/spine/superspine fabric.

  fabricbd discover <commands-dir>
  fabricbd build <intent.json>
  fabricbd deploy <deployment-id> [-x]
  fabricbd show services|topology|deployments`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if app.configPath != "" {
			app.settings, err = config.LoadFrom(app.configPath)
		} else {
			app.settings, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		if app.verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		app.store = store.NewRedisStore(redis.NewClient(&redis.Options{Addr: app.settings.RedisAddr}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "path to settings.yaml (default ~/.fabricbd/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "emit JSON output")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(showCmd)
}
