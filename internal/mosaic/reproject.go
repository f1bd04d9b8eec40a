package mosaic

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rkm/hyp3-prep/internal/raster"
)

// Reprojector moves individual tiles into a target CRS, replacing the
// original file on success.
type Reprojector struct {
	transform raster.Transform
	logger    *slog.Logger
}

// NewReprojector creates a Reprojector backed by the given transform service.
func NewReprojector(transform raster.Transform) *Reprojector {
	return &Reprojector{transform: transform, logger: slog.Default()}
}

// WithLogger sets a custom logger for the reprojector.
func (r *Reprojector) WithLogger(logger *slog.Logger) *Reprojector {
	r.logger = logger
	return r
}

// reprojectedPath derives the output path for a reprojected tile: same
// directory, "r" prefixed to the filename (t1.tif becomes rt1.tif).
func reprojectedPath(path string) string {
	return filepath.Join(filepath.Dir(path), "r"+filepath.Base(path))
}

// Reproject converts tile into the target CRS and returns the resulting tile.
// A tile already in the target CRS is returned unchanged with no transform
// call and no deletion. Otherwise the reprojected file is written alongside
// the original, and the original is removed only once the new file is
// confirmed on disk; on any failure the original is left in place and a
// ReprojectionError is returned.
func (r *Reprojector) Reproject(ctx context.Context, tile Tile, target raster.CRS) (Tile, error) {
	if tile.CRS == target {
		r.logger.DebugContext(ctx, "tile already in target CRS",
			slog.String("path", tile.Path),
			slog.String("crs", target.String()),
		)
		return tile, nil
	}

	dst := reprojectedPath(tile.Path)
	r.logger.InfoContext(ctx, "reprojecting tile",
		slog.String("path", tile.Path),
		slog.String("src_crs", tile.CRS.String()),
		slog.String("dst_crs", target.String()),
	)

	if err := r.transform.Reproject(ctx, tile.Path, dst, tile.CRS, target); err != nil {
		return Tile{}, &ReprojectionError{Path: tile.Path, Err: err}
	}

	// The original is only deleted once its replacement is confirmed written.
	if _, err := os.Stat(dst); err != nil {
		return Tile{}, &ReprojectionError{Path: tile.Path, Err: fmt.Errorf("reprojected file missing: %w", err)}
	}
	if err := os.Remove(tile.Path); err != nil {
		return Tile{}, &ReprojectionError{Path: tile.Path, Err: fmt.Errorf("failed to remove original: %w", err)}
	}

	return Tile{Path: dst, CRS: target}, nil
}
