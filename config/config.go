// Package config loads the .html6lsp.toml settings shared by the language
// server and the check command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abiiranathan/html6-lsp/completion"
	"github.com/abiiranathan/html6-lsp/validator"
)

// FileName is the name Find looks for.
const FileName = ".html6lsp.toml"

// ErrNotFound is returned by Find when no config file exists between the
// start directory and the filesystem root.
var ErrNotFound = errors.New("config: " + FileName + " not found")

// Config is the full set of settings.
type Config struct {
	Diagnostics Diagnostics `toml:"diagnostics"`
	Completion  Completion  `toml:"completion"`
	Log         Log         `toml:"log"`
}

// Diagnostics configures document validation.
type Diagnostics struct {
	// Source is the diagnostic source label (default: "html6-lsp").
	Source string `toml:"source"`
	// Validators selects and orders validators by name. Empty means all,
	// in the default order.
	Validators []string `toml:"validators"`
	// Locate picks how attribute-value ranges are located: "span" or
	// "first-occurrence" (default: "span").
	Locate string `toml:"locate"`
	// DebounceMs delays validation after an edit (default: 150).
	DebounceMs int `toml:"debounce_ms"`
}

// Completion configures the component tag index.
type Completion struct {
	// Extensions are the file suffixes scanned for declarations.
	Extensions []string `toml:"extensions"`
	// ExcludeDirs are directory names never descended into.
	ExcludeDirs []string `toml:"exclude_dirs"`
	// Watch re-scans the workspace when files change on disk.
	Watch bool `toml:"watch"`
	// DebounceMs delays a re-scan after a filesystem event (default: 200).
	DebounceMs int `toml:"debounce_ms"`
}

// Log configures the zap logger.
type Log struct {
	// Level is a zap level name (default: "info").
	Level string `toml:"level"`
	// File receives the log instead of stderr when set.
	File string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	scan := completion.DefaultOptions()
	return Config{
		Diagnostics: Diagnostics{
			Source:     validator.Source,
			Locate:     validator.LocateBySpan,
			DebounceMs: 150,
		},
		Completion: Completion{
			Extensions:  scan.Extensions,
			ExcludeDirs: scan.ExcludeDirs,
			Watch:       true,
			DebounceMs:  int(completion.DefaultDebounce / time.Millisecond),
		},
		Log: Log{Level: "info"},
	}
}

// Find walks up from startDir looking for FileName and returns its path.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("config: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads path over the defaults. Keys the file sets override the
// defaults; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the file Find locates from startDir, or returns the
// defaults with an empty path when there is none.
func Discover(startDir string) (Config, string, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := validator.DefaultRegistry().Pipeline(c.Diagnostics.Validators); err != nil {
		return fmt.Errorf("diagnostics.validators: %w", err)
	}
	if _, err := validator.ParseLocator(c.Diagnostics.Locate); err != nil {
		return fmt.Errorf("diagnostics.locate: %w", err)
	}
	if c.Diagnostics.DebounceMs < 0 {
		return fmt.Errorf("diagnostics.debounce_ms: must not be negative, got %d", c.Diagnostics.DebounceMs)
	}
	if c.Completion.DebounceMs < 0 {
		return fmt.Errorf("completion.debounce_ms: must not be negative, got %d", c.Completion.DebounceMs)
	}
	if slices.Contains(c.Completion.Extensions, "") {
		return errors.New("completion.extensions: empty extension")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Engine builds a validation engine from the diagnostics settings.
func (d Diagnostics) Engine() (*validator.Engine, error) {
	pipeline, err := validator.DefaultRegistry().Pipeline(d.Validators)
	if err != nil {
		return nil, err
	}
	locate, err := validator.ParseLocator(d.Locate)
	if err != nil {
		return nil, err
	}
	opts := []validator.Option{validator.WithPipeline(pipeline), validator.WithLocator(locate)}
	if d.Source != "" {
		opts = append(opts, validator.WithSource(d.Source))
	}
	return validator.NewEngine(opts...), nil
}

// Debounce returns DebounceMs as a duration.
func (d Diagnostics) Debounce() time.Duration {
	return time.Duration(d.DebounceMs) * time.Millisecond
}

// ScanOptions converts the completion settings for completion.Scan.
func (c Completion) ScanOptions(logger *zap.Logger) completion.Options {
	return completion.Options{
		Extensions:  c.Extensions,
		ExcludeDirs: c.ExcludeDirs,
		Logger:      logger,
	}
}

// Debounce returns DebounceMs as a duration.
func (c Completion) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Logger builds a JSON zap logger writing to File, or to stderr when File
// is empty. Stdout is never used.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Sampling = nil
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if l.File != "" {
		zc.OutputPaths = []string{l.File}
	}
	return zc.Build()
}
