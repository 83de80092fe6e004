// Package importer provides the import command
package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/importer"
	"github.com/tphakala/openingbook/internal/logger"
	"github.com/tphakala/openingbook/internal/observability"
)

// Command creates the import command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.pgn ...]",
		Short: "Import PGN archives into the opening book",
		Long: `Reads each PGN archive (plain, .gz or .zst), de-duplicates games by main line
and adds their first moves to the opening statistics of the matching handler.
Files that do not exist are looked up under <basedir>/pgn before being skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), settings, args)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Import.BaseDir, "basedir", viper.GetString("import.basedir"), "Fallback directory for input files")
	cmd.Flags().IntVar(&settings.Import.CommitInterval, "commitinterval", viper.GetInt("import.commitinterval"), "Records between commits")
	cmd.Flags().IntVar(&settings.Import.MaxPlies, "maxplies", viper.GetInt("import.maxplies"), "Half-moves added to the book per game")
	cmd.Flags().BoolVar(&settings.Import.StoreGames, "storegames", viper.GetBool("import.storegames"), "Archive imported games")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

func runImport(ctx context.Context, settings *conf.Settings, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Global().Module("importer")

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	imp, err := importer.Open(settings, m)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer func() {
		if err := imp.Close(); err != nil {
			log.Error("failed to close stores", logger.Error(err))
		}
	}()

	if !settings.Telemetry.Enabled {
		_, err := imp.Run(ctx, paths)
		return err
	}

	endpoint, err := observability.NewEndpoint(settings, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return endpoint.Run(gctx)
	})
	g.Go(func() error {
		// the endpoint lives as long as the import
		defer cancel()
		_, err := imp.Run(gctx, paths)
		return err
	})
	return g.Wait()
}
