package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	WorkingDir string
	OutputDir  string
	ArchiveDir string
	LogsDir    string
}

// NewPaths resolves the configured directories against the working
// directory. Reports are written relative to where the command is run,
// matching the layout the downstream spreadsheet expects.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wd, p)
	}

	return &Paths{
		WorkingDir: wd,
		OutputDir:  resolve(cfg.OutputDir),
		ArchiveDir: resolve(cfg.ArchiveDir),
		LogsDir:    resolve(cfg.LogsDir),
	}, nil
}

// ReportPath returns the absolute path for a report file in the output
// directory.
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// ArchivePath returns the absolute path for a file in the archive
// directory.
func (p *Paths) ArchivePath(filename string) string {
	return filepath.Join(p.ArchiveDir, filename)
}

// LogPath returns the absolute path for a log file.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.OutputDir,
		p.ArchiveDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
