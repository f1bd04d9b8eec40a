// Package raster defines the metadata and transform services the mosaic
// pipeline uses to inspect and rework raster files. The GDAL-backed
// implementation lives in gdal.go; tests substitute fakes.
package raster

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CRS identifies a coordinate reference system by authority and numeric code,
// e.g. EPSG:32645 for UTM zone 45N.
type CRS struct {
	Authority string
	Code      int
}

// String returns the "authority:code" form understood by GDAL.
func (c CRS) String() string {
	return fmt.Sprintf("%s:%d", c.Authority, c.Code)
}

// IsZero reports whether the CRS is unset.
func (c CRS) IsZero() bool {
	return c.Authority == "" && c.Code == 0
}

// ParseCRS parses an "authority:code" string such as "EPSG:32645".
func ParseCRS(s string) (CRS, error) {
	authority, codeStr, ok := strings.Cut(s, ":")
	if !ok {
		return CRS{}, fmt.Errorf("invalid CRS %q: expected authority:code", s)
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return CRS{}, fmt.Errorf("invalid CRS code in %q: %w", s, err)
	}
	if authority == "" {
		return CRS{}, fmt.Errorf("invalid CRS %q: empty authority", s)
	}
	return CRS{Authority: authority, Code: code}, nil
}

// Info describes a raster file.
type Info struct {
	// CRS is the file's coordinate reference system.
	CRS CRS
}

// Bounds is a [minX, minY, maxX, maxY] extent in some CRS.
type Bounds [4]float64

// Metadata reads descriptive information from raster files.
type Metadata interface {
	// Info returns the CRS of the raster at path.
	Info(ctx context.Context, path string) (Info, error)
}

// Transform produces new raster files from existing ones.
type Transform interface {
	// Reproject writes a copy of src reprojected from srcCRS to dstCRS at dst,
	// overwriting dst if present.
	Reproject(ctx context.Context, src, dst string, srcCRS, dstCRS CRS) error

	// Merge combines the ordered sources, which must share one CRS, into a
	// single raster at dst.
	Merge(ctx context.Context, sources []string, dst string) error
}
