// hyp3-prep prepares SAR flood-mapping inputs: it downloads finished RTC
// products from a HyP3 subscription, reorganizes them by polarization, and
// mosaics the per-product DEM tiles.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rkm/hyp3-prep/internal/asf"
	"github.com/rkm/hyp3-prep/internal/config"
	"github.com/rkm/hyp3-prep/internal/hyp3"
	"github.com/rkm/hyp3-prep/internal/raster"
	"github.com/rkm/hyp3-prep/internal/workflow"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hyp3-prep",
		Short:         "Prepare HyP3 RTC products and a DEM mosaic for flood mapping",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		stageCmd("download", "List, filter and download the subscription's result archives",
			func(r *workflow.Runner, cmd *cobra.Command) error {
				return r.Download(cmd.Context())
			}),
		stageCmd("organize", "Sort extracted products by polarization and collect DEM tiles",
			func(r *workflow.Runner, cmd *cobra.Command) error {
				return r.Organize(cmd.Context())
			}),
		stageCmd("mosaic", "Reproject and merge the DEM tiles into one mosaic",
			func(r *workflow.Runner, cmd *cobra.Command) error {
				_, err := r.Mosaic(cmd.Context())
				return err
			}),
		stageCmd("run", "Run the full pipeline: download, organize, mosaic",
			func(r *workflow.Runner, cmd *cobra.Command) error {
				return r.Run(cmd.Context())
			}),
	)

	return root
}

func stageCmd(use, short string, stage func(*workflow.Runner, *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := buildRunner()
			if err != nil {
				return err
			}
			return stage(runner, cmd)
		},
	}
}

func buildRunner() (*workflow.Runner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	logger.Info("starting hyp3-prep",
		"subscription", cfg.Subscription.Name,
		"work_dir", cfg.Workspace.WorkDir,
		"output_dir", cfg.Workspace.OutputDir,
	)

	hyp3Client := hyp3.NewClient(cfg.HyP3.BaseURL, cfg.HyP3.Token, cfg.HyP3.DownloadTimeout).
		WithLogger(logger)
	asfClient := asf.NewClient(cfg.ASF.BaseURL, cfg.ASF.Timeout).WithLogger(logger)
	gdal := raster.NewGDAL().WithLogger(logger)

	return workflow.NewRunner(cfg, hyp3Client, asfClient, gdal, gdal).
		WithBoundsReader(gdal).
		WithLogger(logger), nil
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
