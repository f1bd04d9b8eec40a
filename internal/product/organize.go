// Package product reorganizes extracted RTC product directories: the
// polarization rasters go to the output directory under stable names, the
// per-product DEM tiles are collected for mosaicking, and the emptied product
// directories are removed.
package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var polarizations = []string{"VV", "VH", "HH", "HV"}

// Organizer moves the interesting files out of extracted product directories.
type Organizer struct {
	logger *slog.Logger
}

// NewOrganizer creates an Organizer.
func NewOrganizer() *Organizer {
	return &Organizer{logger: slog.Default()}
}

// WithLogger sets a custom logger for the organizer.
func (o *Organizer) WithLogger(logger *slog.Logger) *Organizer {
	o.logger = logger
	return o
}

// Result summarizes one Organize run.
type Result struct {
	Polarized []string // files moved to the output directory
	DEMTiles  []string // DEM tiles moved to the mosaic working directory
}

// Organize walks the per-product subdirectories of productsDir. Polarization
// rasters (*_VV.tif etc.) move to outDir renamed <product>_<pol>.tif; DEM
// tiles (*_dem.tif) move to demDir under their original names. Each product
// directory is deleted once its files are out, so re-running skips products
// already handled.
func (o *Organizer) Organize(ctx context.Context, productsDir, outDir, demDir string) (*Result, error) {
	entries, err := os.ReadDir(productsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", productsDir, err)
	}
	for _, dir := range []string{outDir, demDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	result := &Result{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !entry.IsDir() {
			continue
		}
		if err := o.organizeProduct(ctx, filepath.Join(productsDir, entry.Name()), entry.Name(), outDir, demDir, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (o *Organizer) organizeProduct(ctx context.Context, productDir, product, outDir, demDir string, result *Result) error {
	for _, pol := range polarizations {
		matches, err := filepath.Glob(filepath.Join(productDir, "*_"+pol+".tif"))
		if err != nil {
			return fmt.Errorf("invalid glob for %s: %w", pol, err)
		}
		for _, src := range matches {
			dst := filepath.Join(outDir, fmt.Sprintf("%s_%s.tif", product, pol))
			if err := MoveFile(src, dst); err != nil {
				return err
			}
			o.logger.DebugContext(ctx, "moved polarization raster",
				slog.String("src", src),
				slog.String("dst", dst),
			)
			result.Polarized = append(result.Polarized, dst)
		}
	}

	demMatches, err := filepath.Glob(filepath.Join(productDir, "*_dem.tif"))
	if err != nil {
		return fmt.Errorf("invalid DEM glob: %w", err)
	}
	for _, src := range demMatches {
		dst := filepath.Join(demDir, filepath.Base(src))
		if err := MoveFile(src, dst); err != nil {
			return err
		}
		o.logger.DebugContext(ctx, "collected DEM tile",
			slog.String("src", src),
			slog.String("dst", dst),
		)
		result.DEMTiles = append(result.DEMTiles, dst)
	}

	// Whatever is left in the product directory is intermediate data the
	// pipeline no longer needs.
	if err := os.RemoveAll(productDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", productDir, err)
	}
	o.logger.InfoContext(ctx, "organized product", slog.String("product", product))
	return nil
}

// MoveFile renames src to dst, falling back to copy-and-delete when the two
// paths are on different filesystems. The source is only removed once the
// destination is fully written.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to finish %s: %w", dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}
