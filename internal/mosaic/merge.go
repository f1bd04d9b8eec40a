package mosaic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rkm/hyp3-prep/internal/raster"
)

// Merger combines tiles sharing one CRS into a single mosaic raster.
type Merger struct {
	transform raster.Transform
	logger    *slog.Logger
}

// NewMerger creates a Merger backed by the given transform service.
func NewMerger(transform raster.Transform) *Merger {
	return &Merger{transform: transform, logger: slog.Default()}
}

// WithLogger sets a custom logger for the merger.
func (m *Merger) WithLogger(logger *slog.Logger) *Merger {
	m.logger = logger
	return m
}

// Merge mosaics the tiles into a single raster at outputPath and deletes the
// consumed tile files afterwards. All tiles must share one CRS; a mismatch is
// rejected before any work is done. The mosaic is written to a temporary path
// and renamed into place, so a failed merge leaves nothing at outputPath.
func (m *Merger) Merge(ctx context.Context, tiles []Tile, outputPath string) error {
	if len(tiles) == 0 {
		return ErrNoTiles
	}

	crs := tiles[0].CRS
	for _, tile := range tiles[1:] {
		if tile.CRS != crs {
			return &MergeError{
				Output: outputPath,
				Err:    fmt.Errorf("tile %s is in %s, expected %s", tile.Path, tile.CRS, crs),
			}
		}
	}

	paths := make([]string, len(tiles))
	for i, tile := range tiles {
		paths[i] = tile.Path
	}

	m.logger.InfoContext(ctx, "merging tiles",
		slog.Int("tile_count", len(tiles)),
		slog.String("crs", crs.String()),
		slog.String("output", outputPath),
	)

	tmp := fmt.Sprintf("%s.%s.tmp", outputPath, uuid.NewString()[:8])
	if err := m.transform.Merge(ctx, paths, tmp); err != nil {
		os.Remove(tmp)
		return &MergeError{Output: outputPath, Err: err}
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return &MergeError{Output: outputPath, Err: err}
	}

	// The inputs are consumed by the committed mosaic; remove them all even if
	// one removal fails, and report the failures together. A re-run can
	// rediscover a previously committed mosaic as one of its own inputs; the
	// rename above already replaced that file, so it must not be removed.
	var errs []error
	for _, path := range paths {
		if path == outputPath {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove consumed tile %s: %w", filepath.Base(path), err))
		}
	}
	return errors.Join(errs...)
}
