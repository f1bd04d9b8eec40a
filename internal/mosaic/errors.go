package mosaic

import (
	"errors"
	"fmt"
)

// ErrNoTiles is returned when an operation is asked to work on an empty tile set.
var ErrNoTiles = errors.New("no tiles to process")

// MetadataError indicates that the CRS of a tile could not be determined.
type MetadataError struct {
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("failed to read CRS of %s: %v", e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// ReprojectionError indicates that reprojecting a tile failed. The original
// tile file is left untouched when this error is returned.
type ReprojectionError struct {
	Path string
	Err  error
}

func (e *ReprojectionError) Error() string {
	return fmt.Sprintf("failed to reproject %s: %v", e.Path, e.Err)
}

func (e *ReprojectionError) Unwrap() error { return e.Err }

// MergeError indicates that producing the mosaic failed. No partial output is
// left at the target path when this error is returned.
type MergeError struct {
	Output string
	Err    error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("failed to merge mosaic %s: %v", e.Output, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }
