package raster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

// GDAL implements Metadata and Transform on top of the godal bindings,
// replacing the shell-outs to gdalinfo/gdalwarp/gdal_merge the workflow
// historically used.
type GDAL struct {
	logger *slog.Logger
}

// NewGDAL registers the GDAL drivers and returns a GDAL service.
func NewGDAL() *GDAL {
	registerOnce.Do(godal.RegisterAll)
	return &GDAL{logger: slog.Default()}
}

// WithLogger sets a custom logger for the service.
func (g *GDAL) WithLogger(logger *slog.Logger) *GDAL {
	g.logger = logger
	return g
}

// quietWarnings downgrades GDAL warnings to log lines instead of errors.
func (g *GDAL) quietWarnings() func(godal.ErrorCategory, int, string) error {
	return func(ec godal.ErrorCategory, code int, msg string) error {
		if ec <= godal.CE_Warning {
			g.logger.Debug("gdal warning", "code", code, "msg", msg)
			return nil
		}
		return errors.New(msg)
	}
}

// Info returns the CRS of the raster at path.
func (g *GDAL) Info(ctx context.Context, path string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	ds, err := godal.Open(path, godal.RasterOnly(), godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return Info{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	sr := ds.SpatialRef()
	authority := sr.AuthorityName("")
	codeStr := sr.AuthorityCode("")
	if authority == "" || codeStr == "" {
		return Info{}, fmt.Errorf("raster %s has no authority-identified CRS", path)
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return Info{}, fmt.Errorf("raster %s has non-numeric CRS code %q: %w", path, codeStr, err)
	}
	return Info{CRS: CRS{Authority: authority, Code: code}}, nil
}

// Reproject warps src from srcCRS into dstCRS, writing a GeoTIFF at dst.
func (g *GDAL) Reproject(ctx context.Context, src, dst string, srcCRS, dstCRS CRS) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds, err := godal.Open(src, godal.RasterOnly(), godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer ds.Close()

	g.logger.DebugContext(ctx, "warping raster",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.String("src_crs", srcCRS.String()),
		slog.String("dst_crs", dstCRS.String()),
	)

	switches := []string{
		"-s_srs", srcCRS.String(),
		"-t_srs", dstCRS.String(),
		"-of", "GTiff",
		"-overwrite",
	}
	warped, err := ds.Warp(dst, switches, godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return fmt.Errorf("failed to warp %s: %w", src, err)
	}
	if err := warped.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}
	return nil
}

// Merge mosaics the ordered sources into a single GeoTIFF at dst. The merge
// runs through an intermediate VRT, the library equivalent of gdal_merge.
func (g *GDAL) Merge(ctx context.Context, sources []string, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(sources) == 0 {
		return errors.New("no sources to merge")
	}

	g.logger.DebugContext(ctx, "merging rasters",
		slog.Int("source_count", len(sources)),
		slog.String("dst", dst),
	)

	vrtPath := dst + ".vrt"
	vrt, err := godal.BuildVRT(vrtPath, sources, nil, godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return fmt.Errorf("failed to build mosaic VRT: %w", err)
	}
	defer os.Remove(vrtPath)

	merged, err := vrt.Translate(dst, []string{"-of", "GTiff"}, godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		vrt.Close()
		return fmt.Errorf("failed to write mosaic %s: %w", dst, err)
	}
	if err := merged.Close(); err != nil {
		vrt.Close()
		return fmt.Errorf("failed to finalize mosaic %s: %w", dst, err)
	}
	return vrt.Close()
}

// WGS84Bounds returns the lon/lat extent of the raster at path. It warps to
// an in-memory VRT in EPSG:4326 and reads the result's geotransform.
func (g *GDAL) WGS84Bounds(ctx context.Context, path string) (Bounds, error) {
	if err := ctx.Err(); err != nil {
		return Bounds{}, err
	}
	ds, err := godal.Open(path, godal.RasterOnly(), godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return Bounds{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	vrtPath := path + ".4326.vrt"
	warped, err := ds.Warp(vrtPath, []string{"-t_srs", "EPSG:4326", "-of", "VRT"},
		godal.ErrLogger(g.quietWarnings()))
	if err != nil {
		return Bounds{}, fmt.Errorf("failed to compute bounds of %s: %w", path, err)
	}
	defer os.Remove(vrtPath)
	defer warped.Close()

	gt, err := warped.GeoTransform()
	if err != nil {
		return Bounds{}, fmt.Errorf("failed to read geotransform of %s: %w", path, err)
	}
	st := warped.Structure()
	minX := gt[0]
	maxY := gt[3]
	maxX := gt[0] + float64(st.SizeX)*gt[1]
	minY := gt[3] + float64(st.SizeY)*gt[5]
	return Bounds{minX, minY, maxX, maxY}, nil
}
