package mosaic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rkm/hyp3-prep/internal/raster"
)

// fakeMetadata resolves CRS codes from a map keyed by file base name.
type fakeMetadata struct {
	codes map[string]int
	errs  map[string]error
}

func (f *fakeMetadata) Info(_ context.Context, path string) (raster.Info, error) {
	base := filepath.Base(path)
	if err, ok := f.errs[base]; ok {
		return raster.Info{}, err
	}
	code, ok := f.codes[base]
	if !ok {
		return raster.Info{}, fmt.Errorf("no CRS registered for %s", base)
	}
	return raster.Info{CRS: raster.CRS{Authority: "EPSG", Code: code}}, nil
}

// fakeTransform writes empty files for reproject/merge outputs and records
// every call. Failures can be injected per source base name.
type fakeTransform struct {
	mu sync.Mutex

	reprojectCalls int
	mergeCalls     int
	mergedSources  []string

	failReproject map[string]error
	failMerge     error

	// onReproject lets tests update fake metadata for the new file.
	onReproject func(src, dst string, srcCRS, dstCRS raster.CRS)
}

func (f *fakeTransform) Reproject(_ context.Context, src, dst string, srcCRS, dstCRS raster.CRS) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reprojectCalls++
	if err := f.failReproject[filepath.Base(src)]; err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte("reprojected"), 0o644); err != nil {
		return err
	}
	if f.onReproject != nil {
		f.onReproject(src, dst, srcCRS, dstCRS)
	}
	return nil
}

func (f *fakeTransform) Merge(_ context.Context, sources []string, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	f.mergedSources = append([]string(nil), sources...)
	if f.failMerge != nil {
		return f.failMerge
	}
	return os.WriteFile(dst, []byte("mosaic"), 0o644)
}

func writeTile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("tile"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
