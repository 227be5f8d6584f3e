package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/iocache"
	"github.com/huangsam/bugsheet/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build metadata, overridden with -ldflags "-X github.com/huangsam/bugsheet/cmd.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is cancelled on SIGINT/SIGTERM; analyze passes it to the pipeline.
var rootCtx = context.Background()

// cfg is the validated configuration shared by every subcommand.
var cfg = &contract.Config{}

// input receives the merged flag, env and file values before validation.
var input = &contract.ConfigRawInput{}

// profile is filled from --profile.
var profile = &contract.ProfileConfig{}

// cacheManager hands the load cache and run store to the pipeline.
var cacheManager contract.CacheManager

// rootCmd is the bugsheet binary itself; it only prints help.
var rootCmd = &cobra.Command{
	Use:                "bugsheet",
	Short:              "Merge bug-report spreadsheets and summarize them.",
	Long:               `Bugsheet reads bug lists exported as xlsx or csv, merges them and reports severity, defect type and fix rate.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig wires env variables and defaults into viper. Flags are bound in init.
func initConfig() {
	setConfigFile()

	// BUGSHEET_CACHE_BACKEND maps to cache-backend, and so on
	viper.SetEnvPrefix("BUGSHEET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("extensions", strings.Join(contract.DefaultExtensions, ","))
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("run-backend", "")
	viper.SetDefault("run-db-connect", "")
	viper.SetDefault("report", "yes")
	viper.SetDefault("report-dir", contract.DefaultReportDir)
	viper.SetDefault("report-prefix", contract.DefaultReportPrefix)
	viper.SetDefault("color", "yes")
	viper.SetDefault("emoji", "yes")
}

// setConfigFile points Viper at --config or the default .bugsheet.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".bugsheet") // Name of config file (without extension)
	viper.SetConfigType("yaml")      // We'll use YAML format
	viper.AddConfigPath(".")         // Look in the current directory
	viper.AddConfigPath("$HOME")     // Look in the home directory
}

// sharedSetup turns flags, env and the config file into cfg and opens the stores.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	profilePrefix := viper.GetString("profile")
	if err := contract.ProcessProfilingConfig(profile, profilePrefix); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	if err := readConfigFile(); err != nil {
		return err
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	// Positional args are the inputs
	input.Inputs = args

	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}

	return nil
}

// sharedSetupWrapper adapts sharedSetup to cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()
	return readConfigFile()
}

// readConfigFile reads the config file, treating a missing file as empty.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx as the root context.
// Cancelling ctx stops a running pipeline at the next file boundary.
func ExecuteContext(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
