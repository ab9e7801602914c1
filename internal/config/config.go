// Package config loads idfpatch settings from JSONC files and flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	IDDPath       string `json:"idd_path,omitempty"`
	Indent        *int   `json:"indent,omitempty"`
	FieldComments *bool  `json:"field_comments,omitempty"`
	Backup        *bool  `json:"backup,omitempty"`
	LockTimeout   string `json:"lock_timeout,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd    string        `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	IDDPathAbs      string        `json:"-"` // Absolute path to the IDD file, empty for the builtin schema
	LockTimeoutDur  time.Duration `json:"-"`
	IndentString    string        `json:"-"`
	CommentsEnabled bool          `json:"-"`
	BackupEnabled   bool          `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// FileName is the default project config file name.
const FileName = ".idfpatch.json"

const (
	defaultIndent      = 2
	maxIndent          = 16
	defaultLockTimeout = "5s"
)

// Default returns the default configuration.
func Default() Config {
	indent := defaultIndent
	comments := true
	backup := true

	return Config{
		Indent:        &indent,
		FieldComments: &comments,
		Backup:        &backup,
		LockTimeout:   defaultLockTimeout,
	}
}

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/idfpatch/config.json if set, otherwise
// ~/.config/idfpatch/config.json. Returns "" if neither is known.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "idfpatch", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "idfpatch", "config.json")
	}

	return ""
}

// Input holds the inputs for [Load].
type Input struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Config            // flag values; unset fields are ignored
	IDDOverride     bool              // --idd was given (an empty value is an error)
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/idfpatch/config.json or $XDG_CONFIG_HOME/idfpatch/config.json)
// 3. Project config file (.idfpatch.json, if it exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. Flag overrides.
//
// Paths in the returned Config are resolved against the working directory.
func Load(input Input) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if path := globalPath(input.Env); path != "" {
		globalCfg, loaded, err := loadFile(path, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, globalCfg)
			cfg.Sources.Global = path
		}
	}

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	if projectPath != "" {
		cfg = merge(cfg, projectCfg)
		cfg.Sources.Project = projectPath
	}

	if input.IDDOverride && input.Overrides.IDDPath == "" {
		return Config{}, ErrIDDPathEmpty
	}

	cfg = merge(cfg, input.Overrides)

	if err := resolve(&cfg, workDir); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		path := filepath.Join(workDir, FileName)

		cfg, loaded, err := loadFile(path, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	if _, err := os.Stat(path); err != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(path, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, a missing file
// returns a zero config and loaded == false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// Parse decodes a JSONC config document. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()

	var cfg Config

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.IDDPath != "" {
		base.IDDPath = overlay.IDDPath
	}

	if overlay.Indent != nil {
		base.Indent = overlay.Indent
	}

	if overlay.FieldComments != nil {
		base.FieldComments = overlay.FieldComments
	}

	if overlay.Backup != nil {
		base.Backup = overlay.Backup
	}

	if overlay.LockTimeout != "" {
		base.LockTimeout = overlay.LockTimeout
	}

	return base
}

func resolve(cfg *Config, workDir string) error {
	if *cfg.Indent < 0 || *cfg.Indent > maxIndent {
		return fmt.Errorf("%w: got %d", ErrIndentInvalid, *cfg.Indent)
	}

	timeout, err := time.ParseDuration(cfg.LockTimeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("%w: %q", ErrLockTimeoutInvalid, cfg.LockTimeout)
	}

	cfg.EffectiveCwd = workDir
	cfg.LockTimeoutDur = timeout
	cfg.IndentString = strings.Repeat(" ", *cfg.Indent)
	cfg.CommentsEnabled = *cfg.FieldComments
	cfg.BackupEnabled = *cfg.Backup

	switch {
	case cfg.IDDPath == "":
		cfg.IDDPathAbs = ""
	case filepath.IsAbs(cfg.IDDPath):
		cfg.IDDPathAbs = cfg.IDDPath
	default:
		cfg.IDDPathAbs = filepath.Join(workDir, cfg.IDDPath)
	}

	return nil
}

// Format renders the effective settings as key=value lines.
func Format(cfg Config) string {
	idd := cfg.IDDPathAbs
	if idd == "" {
		idd = "(builtin)"
	}

	lines := []string{
		"effective_cwd=" + cfg.EffectiveCwd,
		"idd_path=" + idd,
		fmt.Sprintf("indent=%d", len(cfg.IndentString)),
		fmt.Sprintf("field_comments=%t", cfg.CommentsEnabled),
		fmt.Sprintf("backup=%t", cfg.BackupEnabled),
		"lock_timeout=" + cfg.LockTimeoutDur.String(),
	}

	return strings.Join(lines, "\n")
}
