package mosaic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMerge_ProducesMosaicAndDeletesInputs(t *testing.T) {
	dir := t.TempDir()
	tiles := []Tile{
		{Path: writeTile(t, dir, "t1.tif"), CRS: utm(32645)},
		{Path: writeTile(t, dir, "t2.tif"), CRS: utm(32645)},
		{Path: writeTile(t, dir, "t3.tif"), CRS: utm(32645)},
	}

	tf := &fakeTransform{}
	output := filepath.Join(dir, "DEM-Mosaic.tif")
	if err := NewMerger(tf).Merge(context.Background(), tiles, output); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("mosaic missing: %v", err)
	}
	for _, tile := range tiles {
		if _, err := os.Stat(tile.Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("input %s should have been deleted, stat err: %v", tile.Path, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "DEM-Mosaic.tif" {
		t.Errorf("expected exactly DEM-Mosaic.tif to remain, got %v", entries)
	}

	if tf.mergeCalls != 1 {
		t.Errorf("expected 1 merge call, got %d", tf.mergeCalls)
	}
	if len(tf.mergedSources) != 3 {
		t.Errorf("expected 3 merge sources, got %d", len(tf.mergedSources))
	}
}

// A re-run after an interrupted relocation rediscovers the committed mosaic
// as an input; the cleanup must not delete the freshly renamed output.
func TestMerge_OutputAmongInputsSurvives(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "DEM-Mosaic.tif")
	tiles := []Tile{
		{Path: writeTile(t, dir, "DEM-Mosaic.tif"), CRS: utm(32645)},
		{Path: writeTile(t, dir, "t2.tif"), CRS: utm(32645)},
	}

	tf := &fakeTransform{}
	if err := NewMerger(tf).Merge(context.Background(), tiles, output); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("committed mosaic missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "t2.tif")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("consumed tile should have been deleted, stat err: %v", err)
	}
}

func TestMerge_RejectsMixedCRS(t *testing.T) {
	dir := t.TempDir()
	tiles := []Tile{
		{Path: writeTile(t, dir, "t1.tif"), CRS: utm(32645)},
		{Path: writeTile(t, dir, "t2.tif"), CRS: utm(32644)},
	}

	tf := &fakeTransform{}
	err := NewMerger(tf).Merge(context.Background(), tiles, filepath.Join(dir, "DEM-Mosaic.tif"))

	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("expected MergeError, got %T: %v", err, err)
	}
	if tf.mergeCalls != 0 {
		t.Errorf("expected no merge calls, got %d", tf.mergeCalls)
	}
	for _, tile := range tiles {
		if _, statErr := os.Stat(tile.Path); statErr != nil {
			t.Errorf("input %s should be untouched: %v", tile.Path, statErr)
		}
	}
}

func TestMerge_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	tiles := []Tile{
		{Path: writeTile(t, dir, "t1.tif"), CRS: utm(32645)},
	}

	cause := errors.New("merge exploded")
	tf := &fakeTransform{failMerge: cause}
	output := filepath.Join(dir, "DEM-Mosaic.tif")

	err := NewMerger(tf).Merge(context.Background(), tiles, output)
	if !errors.Is(err, cause) {
		t.Fatalf("expected error wrapping cause, got %v", err)
	}

	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no mosaic should exist after failure, stat err: %v", err)
	}
	if _, err := os.Stat(tiles[0].Path); err != nil {
		t.Errorf("input should be untouched after failed merge: %v", err)
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	err := NewMerger(&fakeTransform{}).Merge(context.Background(), nil, "out.tif")
	if !errors.Is(err, ErrNoTiles) {
		t.Fatalf("expected ErrNoTiles, got %v", err)
	}
}
