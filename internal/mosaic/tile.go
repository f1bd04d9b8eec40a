// Package mosaic prepares a single elevation-model mosaic from a directory of
// UTM tiles: it picks the predominant CRS across the tiles, reprojects the
// outliers, and merges everything into one raster.
package mosaic

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rkm/hyp3-prep/internal/raster"
)

// Tile is one elevation-model raster file and its CRS.
type Tile struct {
	Path string
	CRS  raster.CRS
}

// Discover globs dir for tile files matching pattern, in a stable sorted
// order. Discovery is idempotent: re-running it after a partial run picks up
// already-reprojected tiles under their new names.
func Discover(dir, pattern string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid tile pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Resolve looks up the CRS of every path and returns the corresponding tiles,
// preserving input order. A failed lookup is reported as a MetadataError.
func Resolve(ctx context.Context, meta raster.Metadata, paths []string) ([]Tile, error) {
	tiles := make([]Tile, 0, len(paths))
	for _, path := range paths {
		info, err := meta.Info(ctx, path)
		if err != nil {
			return nil, &MetadataError{Path: path, Err: err}
		}
		tiles = append(tiles, Tile{Path: path, CRS: info.CRS})
	}
	return tiles, nil
}
