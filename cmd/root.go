// Package cmd assembles the openingbook command line
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/openingbook/cmd/book"
	"github.com/tphakala/openingbook/cmd/config"
	"github.com/tphakala/openingbook/cmd/importer"
	"github.com/tphakala/openingbook/cmd/moves"
	"github.com/tphakala/openingbook/cmd/version"
	"github.com/tphakala/openingbook/internal/buildinfo"
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "openingbook",
		Short:         "Chess opening book builder",
		Long:          "Imports PGN game archives into a notation store and per-opening move statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		conf.GetLogger().Warn("failed to bind global flags", logger.Error(err))
	}

	configCmd := config.Command(settings)
	versionCmd := version.Command(info)

	rootCmd.AddCommand(
		importer.Command(settings),
		moves.Command(settings),
		book.Command(settings),
		configCmd,
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// printing the configuration or version needs no log output
		if cmd.Name() == configCmd.Name() || cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize(settings)
	}

	return rootCmd
}

// initialize replaces the bootstrap logger once flags are parsed
func initialize(settings *conf.Settings) error {
	if settings.Debug && settings.Logging.DefaultLevel != "trace" {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}

	cl, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(cl)
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Database.Type, "dbtype", viper.GetString("database.type"), "Store backend: sqlite or mysql")
	rootCmd.PersistentFlags().StringVar(&settings.Database.SQLite.Path, "db", viper.GetString("database.sqlite.path"), "Path to the SQLite store")
	rootCmd.PersistentFlags().StringVar(&settings.Book.Path, "book", viper.GetString("book.path"), "Path to the opening statistics book")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
