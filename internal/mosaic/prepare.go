package mosaic

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/rkm/hyp3-prep/internal/raster"
)

// Preparer runs the full mosaic preparation for one directory of tiles:
// discover, select the predominant CRS, reproject outliers, merge.
type Preparer struct {
	meta      raster.Metadata
	reproject *Reprojector
	merge     *Merger
	logger    *slog.Logger

	// skipBadTiles drops tiles whose metadata lookup or reprojection fails
	// instead of aborting the run. Off by default.
	skipBadTiles bool
}

// NewPreparer creates a Preparer from the two raster services.
func NewPreparer(meta raster.Metadata, transform raster.Transform) *Preparer {
	return &Preparer{
		meta:      meta,
		reproject: NewReprojector(transform),
		merge:     NewMerger(transform),
		logger:    slog.Default(),
	}
}

// WithLogger sets a custom logger for the preparer and its stages.
func (p *Preparer) WithLogger(logger *slog.Logger) *Preparer {
	p.logger = logger
	p.reproject = p.reproject.WithLogger(logger)
	p.merge = p.merge.WithLogger(logger)
	return p
}

// WithSkipBadTiles enables per-tile skip-and-continue on metadata or
// reprojection failures.
func (p *Preparer) WithSkipBadTiles(skip bool) *Preparer {
	p.skipBadTiles = skip
	return p
}

// Prepare mosaics every tile in dir matching pattern into dir/outputName and
// returns the mosaic path. Each reprojection completes, including deletion of
// the replaced original, before the next tile starts; the merge only runs
// after a fresh re-discovery of the directory, so an interrupted run can be
// resumed by calling Prepare again.
func (p *Preparer) Prepare(ctx context.Context, dir, pattern, outputName string) (string, error) {
	paths, err := Discover(dir, pattern)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no files matching %s in %s", ErrNoTiles, pattern, dir)
	}

	tiles, err := p.resolve(ctx, paths)
	if err != nil {
		return "", err
	}

	target, err := SelectPredominantCRS(tiles)
	if err != nil {
		return "", err
	}
	p.logger.InfoContext(ctx, "selected predominant CRS",
		slog.String("crs", target.String()),
		slog.Int("tile_count", len(tiles)),
	)

	for _, tile := range tiles {
		if _, err := p.reproject.Reproject(ctx, tile, target); err != nil {
			if p.skipBadTiles {
				p.logger.WarnContext(ctx, "skipping tile", slog.String("error", err.Error()))
				continue
			}
			return "", err
		}
	}

	// Re-discover so the merge consumes exactly what is on disk, including
	// tiles reprojected by an earlier, interrupted run.
	paths, err = Discover(dir, pattern)
	if err != nil {
		return "", err
	}
	tiles, err = p.resolve(ctx, paths)
	if err != nil {
		return "", err
	}
	if p.skipBadTiles {
		tiles = filterCRS(tiles, target)
	}

	outputPath := filepath.Join(dir, outputName)
	if err := p.merge.Merge(ctx, tiles, outputPath); err != nil {
		return "", err
	}
	p.logger.InfoContext(ctx, "mosaic complete", slog.String("path", outputPath))
	return outputPath, nil
}

func (p *Preparer) resolve(ctx context.Context, paths []string) ([]Tile, error) {
	if !p.skipBadTiles {
		return Resolve(ctx, p.meta, paths)
	}
	tiles := make([]Tile, 0, len(paths))
	for _, path := range paths {
		info, err := p.meta.Info(ctx, path)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping unreadable tile",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		tiles = append(tiles, Tile{Path: path, CRS: info.CRS})
	}
	return tiles, nil
}

func filterCRS(tiles []Tile, crs raster.CRS) []Tile {
	kept := tiles[:0]
	for _, tile := range tiles {
		if tile.CRS == crs {
			kept = append(kept, tile)
		}
	}
	return kept
}
