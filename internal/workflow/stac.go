package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rkm/hyp3-prep/internal/stac"
	"github.com/rkm/hyp3-prep/pkg/geojson"
)

// writeSidecar emits a STAC Item JSON next to the mosaic describing its
// footprint, CRS and data asset.
func (r *Runner) writeSidecar(ctx context.Context, mosaicPath string) error {
	info, err := r.meta.Info(ctx, mosaicPath)
	if err != nil {
		return fmt.Errorf("failed to read mosaic CRS: %w", err)
	}
	bounds, err := r.bounds.WGS84Bounds(ctx, mosaicPath)
	if err != nil {
		return fmt.Errorf("failed to compute mosaic footprint: %w", err)
	}

	bbox := []float64{bounds[0], bounds[1], bounds[2], bounds[3]}
	footprint, err := geojson.NewPolygonFromBBox(bbox)
	if err != nil {
		return fmt.Errorf("failed to build mosaic footprint: %w", err)
	}

	item := stac.NewItem(itemID(mosaicPath))
	item.Geometry = footprint
	item.Bbox = bbox
	item.Properties["datetime"] = time.Now().UTC().Format(time.RFC3339)
	item.Properties["proj:code"] = info.CRS.String()
	stac.AddAsset(item, "mosaic", r.cfg.Mosaic.Filename,
		"image/tiff; application=geotiff", "data")

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}

	sidecarPath := strings.TrimSuffix(mosaicPath, ".tif") + ".json"
	if err := os.WriteFile(sidecarPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}

	r.logger.InfoContext(ctx, "wrote mosaic sidecar",
		slog.String("path", sidecarPath),
		slog.String("crs", info.CRS.String()),
	)
	return nil
}

// itemID derives the STAC item ID from the mosaic filename.
func itemID(mosaicPath string) string {
	return strings.TrimSuffix(filepath.Base(mosaicPath), ".tif")
}
