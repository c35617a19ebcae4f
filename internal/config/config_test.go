package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/pace.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "output", cfg.Paths.OutputDir)
	assert.Equal(t, "output/archive", cfg.Paths.ArchiveDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Report.Workbook)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  path: /srv/pace/pace.db
logging:
  level: debug
  format: text
report:
  workbook: true
  workbook_name: grid.xlsx
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "/srv/pace/pace.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Report.Workbook)
	assert.Equal(t, "grid.xlsx", cfg.Report.WorkbookName)
	// Untouched fields keep env defaults.
	assert.Equal(t, "output", cfg.Paths.OutputDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("database:\n  path: from-file.db\n"), 0644))

	t.Setenv("VP_DATABASE_PATH", "from-env.db")

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("logging: [not, a, map]\n"), 0644))

	_, err := Load(configFile)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Path: "pace.db", BusyTimeout: time.Second},
			Logging:  LoggingConfig{Level: "info", Format: "json", Output: "console", FilePath: "logs/app.log"},
			Report:   ReportConfig{WorkbookName: "grid.xlsx"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative busy timeout", func(c *Config) { c.Database.BusyTimeout = -time.Second }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }, true},
		{"file output without path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, true},
		{"workbook without name", func(c *Config) {
			c.Report.Workbook = true
			c.Report.WorkbookName = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	paths, err := NewPaths(PathsConfig{
		OutputDir:  "output",
		ArchiveDir: "output/archive",
		LogsDir:    "logs",
	})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.OutputDir))
	assert.Equal(t, filepath.Join(paths.OutputDir, "alf_census.csv"), paths.ReportPath("alf_census.csv"))
	assert.Equal(t, filepath.Join(paths.ArchiveDir, "x.zip"), paths.ArchivePath("x.zip"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "run.log"), paths.LogPath("run.log"))
}

func TestPathsAbsoluteUntouched(t *testing.T) {
	paths, err := NewPaths(PathsConfig{
		OutputDir:  "/srv/out",
		ArchiveDir: "/srv/out/archive",
		LogsDir:    "/srv/logs",
	})
	require.NoError(t, err)
	assert.Equal(t, "/srv/out", paths.OutputDir)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	paths := &Paths{
		WorkingDir: dir,
		OutputDir:  filepath.Join(dir, "output"),
		ArchiveDir: filepath.Join(dir, "output", "archive"),
		LogsDir:    filepath.Join(dir, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	for _, d := range []string{paths.OutputDir, paths.ArchiveDir, paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent.
	assert.NoError(t, paths.EnsureDirectories())
}
