// Regctl inspects and edits the runtime configuration registry of a
// devreg node.
//
// It registers the node's parameter groups, loads their stored values
// from the configured store (in-memory table, nv image or text file) and
// runs one command: get, set, list, save, load, dump, commit or format.
// The shell command reads the same commands line by line from stdin.
//
// Usage:
//
//	regctl [command] [flags]
//
// See 'regctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/devreg/internal/config"
	"github.com/muurk/devreg/internal/logging"
	"github.com/muurk/devreg/internal/registry"
	"github.com/muurk/devreg/internal/version"
)

// Global flags
var (
	configPath   string
	backendFlag  string
	logLevel     string
	outputFormat string
)

// cfg is the configuration loaded before every command runs
var cfg *config.Config

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logging.Error("Command failed", zap.Error(err))
	}
	logging.Sync()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process status. Unknown parameters
// get their own status for scripts, even when a handler reported them.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case registry.IsNotFound(err):
		return 2
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   "regctl",
	Short: "devreg runtime configuration tool",
	Long: `A command line front end for the devreg configuration registry.

Parameters are addressed as <group>/<parameter>, e.g. app/data_send_period.
Stored values are loaded from the configured store before each command,
and 'set' saves back unless --no-save is given.`,
	Version:           version.Full(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the OS config dir)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Store backend (memory, nvram, file); overrides the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default is silent")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatTable, "Output format (table, plain, json)")

	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration and initializes logging. Flags override
// the config file, which overrides DEVREG_LOG_LEVEL.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if backendFlag != "" {
		if !config.ValidBackend(backendFlag) {
			return fmt.Errorf("unknown backend %q (want memory, nvram or file)", backendFlag)
		}
		loaded.Store.Backend = backendFlag
	}

	level := logLevel
	if level == "" {
		level = loaded.LogLevel
	}
	if level == "" {
		err = logging.InitializeFromEnv()
	} else {
		err = logging.Initialize(level)
	}
	if err != nil {
		return err
	}

	switch outputFormat {
	case formatTable, formatPlain, formatJSON:
	default:
		return fmt.Errorf("unknown output format %q (want table, plain or json)", outputFormat)
	}

	cfg = loaded
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "regctl %s (commit: %s, %s, %s)\n",
			info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
