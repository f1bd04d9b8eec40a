package mosaic

import "github.com/rkm/hyp3-prep/internal/raster"

// SelectPredominantCRS returns the CRS shared by the largest number of tiles.
// Ties go to the CRS encountered first in tile order, so the result is
// deterministic for a fixed tile order. Returns ErrNoTiles for an empty input.
func SelectPredominantCRS(tiles []Tile) (raster.CRS, error) {
	if len(tiles) == 0 {
		return raster.CRS{}, ErrNoTiles
	}

	tally := make(map[raster.CRS]int, len(tiles))
	max := 0
	for _, tile := range tiles {
		tally[tile.CRS]++
		if tally[tile.CRS] > max {
			max = tally[tile.CRS]
		}
	}

	var best raster.CRS
	for _, tile := range tiles {
		if tally[tile.CRS] == max {
			best = tile.CRS
			break
		}
	}
	return best, nil
}
