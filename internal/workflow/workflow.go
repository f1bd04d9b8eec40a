// Package workflow sequences the data-preparation pipeline: download result
// archives from HyP3, extract and reorganize them, and prepare the DEM
// mosaic. Each stage can also be run on its own.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rkm/hyp3-prep/internal/archive"
	"github.com/rkm/hyp3-prep/internal/config"
	"github.com/rkm/hyp3-prep/internal/hyp3"
	"github.com/rkm/hyp3-prep/internal/mosaic"
	"github.com/rkm/hyp3-prep/internal/product"
	"github.com/rkm/hyp3-prep/internal/raster"
)

// JobService lists and downloads HyP3 jobs. The hyp3 client implements it.
type JobService interface {
	ListJobs(ctx context.Context, name string) ([]hyp3.Job, error)
	Download(ctx context.Context, file hyp3.JobFile, destDir string) (string, error)
}

// BoundsReader resolves the lon/lat extent of a raster, used for the mosaic
// sidecar. The raster GDAL service implements it.
type BoundsReader interface {
	WGS84Bounds(ctx context.Context, path string) (raster.Bounds, error)
}

// Runner drives the pipeline for one configuration.
type Runner struct {
	cfg       *config.Config
	jobs      JobService
	granules  hyp3.GranuleSource
	organizer *product.Organizer
	preparer  *mosaic.Preparer
	meta      raster.Metadata
	bounds    BoundsReader
	logger    *slog.Logger
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(cfg *config.Config, jobs JobService, granules hyp3.GranuleSource, meta raster.Metadata, transform raster.Transform) *Runner {
	logger := slog.Default()
	return &Runner{
		cfg:       cfg,
		jobs:      jobs,
		granules:  granules,
		organizer: product.NewOrganizer(),
		preparer: mosaic.NewPreparer(meta, transform).
			WithSkipBadTiles(cfg.Mosaic.SkipBadTiles),
		meta:   meta,
		logger: logger,
	}
}

// WithLogger sets a custom logger for the runner and its stages.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.logger = logger
	r.organizer = r.organizer.WithLogger(logger)
	r.preparer = r.preparer.WithLogger(logger)
	return r
}

// WithBoundsReader enables the STAC sidecar's footprint computation.
func (r *Runner) WithBoundsReader(bounds BoundsReader) *Runner {
	r.bounds = bounds
	return r
}

// Directory layout inside the work directory.
func (r *Runner) archivesDir() string { return filepath.Join(r.cfg.Workspace.WorkDir, "archives") }
func (r *Runner) productsDir() string { return filepath.Join(r.cfg.Workspace.WorkDir, "products") }
func (r *Runner) demDir() string      { return filepath.Join(r.cfg.Workspace.WorkDir, "dem") }

// Run executes the full pipeline.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Download(ctx); err != nil {
		return err
	}
	if err := r.Organize(ctx); err != nil {
		return err
	}
	_, err := r.Mosaic(ctx)
	return err
}

// Download lists the subscription's jobs, filters them by the configured
// criteria, and downloads and extracts every result archive into the products
// directory. Archives already extracted in a previous run are skipped.
func (r *Runner) Download(ctx context.Context) error {
	for _, dir := range []string{r.archivesDir(), r.productsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	jobs, err := r.jobs.ListJobs(ctx, r.cfg.Subscription.Name)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	start, end, err := r.cfg.Subscription.DateRange()
	if err != nil {
		return err
	}
	crit := hyp3.Criteria{
		JobType:         r.cfg.Subscription.JobType,
		Start:           start,
		End:             end,
		Path:            r.cfg.Subscription.Path,
		FlightDirection: r.cfg.Subscription.FlightDirection,
	}
	matched, err := hyp3.Filter(ctx, jobs, crit, r.granules)
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "jobs selected for download",
		slog.String("subscription", r.cfg.Subscription.Name),
		slog.Int("matched", len(matched)),
		slog.Int("total", len(jobs)),
	)

	for _, job := range matched {
		for _, file := range job.Files {
			if err := r.fetchArchive(ctx, job, file); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) fetchArchive(ctx context.Context, job hyp3.Job, file hyp3.JobFile) error {
	productName := strippedName(file.Filename)
	productDir := filepath.Join(r.productsDir(), productName)
	if _, err := os.Stat(productDir); err == nil {
		r.logger.InfoContext(ctx, "product already extracted, skipping",
			slog.String("product", productName),
		)
		return nil
	}

	archivePath := filepath.Join(r.archivesDir(), file.Filename)
	if _, err := os.Stat(archivePath); errors.Is(err, fs.ErrNotExist) {
		archivePath, err = r.jobs.Download(ctx, file, r.archivesDir())
		if err != nil {
			return fmt.Errorf("job %s: %w", job.JobID, err)
		}
	}

	files, err := archive.ExtractZip(ctx, archivePath, r.productsDir())
	if err != nil {
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}
	r.logger.InfoContext(ctx, "extracted product",
		slog.String("product", productName),
		slog.Int("file_count", len(files)),
	)

	if !r.cfg.Workspace.KeepArchives {
		if err := os.Remove(archivePath); err != nil {
			return fmt.Errorf("failed to remove archive %s: %w", archivePath, err)
		}
	}
	return nil
}

// Organize moves polarization rasters to the output directory and collects
// DEM tiles for mosaicking.
func (r *Runner) Organize(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.Workspace.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.cfg.Workspace.OutputDir, err)
	}
	result, err := r.organizer.Organize(ctx, r.productsDir(), r.cfg.Workspace.OutputDir, r.demDir())
	if err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "products organized",
		slog.Int("polarized", len(result.Polarized)),
		slog.Int("dem_tiles", len(result.DEMTiles)),
	)
	return nil
}

// Mosaic prepares the DEM mosaic from the collected tiles, relocates it to
// the output directory, writes the optional STAC sidecar, and removes the
// emptied DEM working directory. It returns the final mosaic path.
func (r *Runner) Mosaic(ctx context.Context) (string, error) {
	staged, err := r.preparer.Prepare(ctx, r.demDir(), r.cfg.Mosaic.TilePattern, r.cfg.Mosaic.Filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.cfg.Workspace.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", r.cfg.Workspace.OutputDir, err)
	}
	final := filepath.Join(r.cfg.Workspace.OutputDir, r.cfg.Mosaic.Filename)
	if err := product.MoveFile(staged, final); err != nil {
		return "", err
	}
	r.logger.InfoContext(ctx, "mosaic relocated", slog.String("path", final))

	if r.cfg.Mosaic.WriteSidecar && r.bounds != nil {
		if err := r.writeSidecar(ctx, final); err != nil {
			return "", err
		}
	}

	// The DEM working directory is empty once its tiles are consumed; in
	// skip-bad-tiles mode leftovers keep it, and the run, alive for a retry.
	if err := os.Remove(r.demDir()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.WarnContext(ctx, "dem directory not removed", slog.String("error", err.Error()))
	}

	return final, nil
}

// strippedName returns the archive filename without its .zip extension.
func strippedName(filename string) string {
	ext := filepath.Ext(filename)
	return filename[:len(filename)-len(ext)]
}
