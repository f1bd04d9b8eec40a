// Package archive extracts downloaded HyP3 result archives.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip unpacks src into destDir and returns the extracted file paths.
// Entry names are validated against path traversal before anything is
// written. destDir is created if it does not exist.
func ExtractZip(ctx context.Context, src, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	var extracted []string
	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}

		name := filepath.FromSlash(entry.Name)
		if !filepath.IsLocal(name) {
			return extracted, fmt.Errorf("archive %s has unsafe entry %q", src, entry.Name)
		}
		target := filepath.Join(destDir, name)

		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return extracted, fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extracted, fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := extractFile(entry, target); err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}

	return extracted, nil
}

func extractFile(entry *zip.File, target string) error {
	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}
	return out.Close()
}
