// Package archive preserves each report run. The output directory is
// staged into a datestamped folder, zipped into the archive directory,
// and the staging folder removed, leaving one zip per run date.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vendorperf/internal/config"
)

// Archiver snapshots the output directory into datestamped zip files.
type Archiver struct {
	paths *config.Paths
	now   func() time.Time
}

// NewArchiver creates a new archiver instance
func NewArchiver(paths *config.Paths) *Archiver {
	return &Archiver{paths: paths, now: time.Now}
}

// Archive stages today's output files, zips them, and removes the
// staging folder. Running twice on the same day replaces the earlier
// archive. Returns the path of the written zip.
func (a *Archiver) Archive() (string, error) {
	stamp := a.now().Format("2006-01-02")
	stagingName := stamp + "_update"
	stagingDir := filepath.Join(a.paths.OutputDir, stagingName)
	zipPath := a.paths.ArchivePath(stagingName + ".zip")

	// A leftover staging folder from an aborted run is replaced.
	if err := os.RemoveAll(stagingDir); err != nil {
		return "", fmt.Errorf("failed to clear staging directory: %w", err)
	}

	if err := a.stage(stagingDir); err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.paths.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := zipDirectory(stagingDir, zipPath); err != nil {
		return "", err
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		return "", fmt.Errorf("failed to remove staging directory: %w", err)
	}

	return zipPath, nil
}

// stage copies the output files into the staging directory. The archive
// directory and any staging folders from previous runs are skipped, so
// archives never nest earlier archives.
func (a *Archiver) stage(stagingDir string) error {
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	entries, err := os.ReadDir(a.paths.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		// Directories cover the archive dir and stale staging folders.
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(a.paths.OutputDir, entry.Name())
		if err := copyFile(src, filepath.Join(stagingDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file, preserving nothing but its bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// zipDirectory zips the contents of dir into dst. Entry names are
// relative to dir with forward slashes.
func zipDirectory(dir, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(strings.ReplaceAll(rel, string(filepath.Separator), "/"))
		if err != nil {
			return fmt.Errorf("failed to add %s to zip: %w", rel, err)
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to zip %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return out.Close()
}
