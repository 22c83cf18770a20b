package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories
type Paths struct {
	BaseDir string
	DataDir string
	WebDir  string
	LogsDir string
}

// ResolvePaths resolves the configured directories. Relative directories are
// taken from the base directory, which defaults to the executable location
// so the server behaves the same whatever the working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		if exe, err = filepath.EvalSymlinks(exe); err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		base = filepath.Dir(exe)
	}

	abs := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}
	return &Paths{
		BaseDir: base,
		DataDir: abs(c.Paths.DataDir),
		WebDir:  abs(c.Paths.WebDir),
		LogsDir: abs(c.Paths.LogsDir),
	}, nil
}

// EnsureDirectories creates the data and logs directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogFile returns the path of the log file inside the logs directory
func (p *Paths) LogFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.LogsDir, name)
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("web_dir", p.WebDir),
		slog.String("logs_dir", p.LogsDir))
}
