// Package projectconfig provides the ProjectConfig struct and loader for
// .leaderboard.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up from the working directory.
const FileName = ".leaderboard.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultResultsPath = "benchmark-results.json"
	DefaultResultsDir  = "results/"

	DefaultSort  = "accuracy"
	DefaultOrder = "desc"
	DefaultLimit = 3

	DefaultServerPort = 3000
)

// maxWalkDepth bounds the upward search for FileName.
const maxWalkDepth = 10

// ResultsConfig locates results documents.
type ResultsConfig struct {
	Path string `yaml:"path,omitempty"`
	Dir  string `yaml:"dir,omitempty"`
}

// DisplayConfig holds default view parameters.
type DisplayConfig struct {
	Sort  string `yaml:"sort,omitempty"`
	Order string `yaml:"order,omitempty"`
	Limit int    `yaml:"limit,omitempty"`
	Color *bool  `yaml:"color,omitempty"`
}

// ServerConfig holds web API settings.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// BlobConfig holds Azure Blob Storage settings for azblob:// locations.
type BlobConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .leaderboard.yaml.
type ProjectConfig struct {
	Results ResultsConfig `yaml:"results,omitempty"`
	Display DisplayConfig `yaml:"display,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Blob    BlobConfig    `yaml:"blob,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Results: ResultsConfig{
			Path: DefaultResultsPath,
			Dir:  DefaultResultsDir,
		},
		Display: DisplayConfig{
			Sort:  DefaultSort,
			Order: DefaultOrder,
			Limit: DefaultLimit,
			Color: boolPtr(true),
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
	}
}

// Load finds .leaderboard.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if err := fileCfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// validate rejects values the merge would otherwise accept silently.
func (c *ProjectConfig) validate() error {
	if c.Display.Limit < 0 {
		return fmt.Errorf("display.limit %d: must be zero (default) or positive", c.Display.Limit)
	}
	return nil
}

// findConfigFile walks up from dir looking for FileName. Returns
// os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkDepth {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Results.Path != "" {
		dst.Results.Path = src.Results.Path
	}
	if src.Results.Dir != "" {
		dst.Results.Dir = src.Results.Dir
	}

	if src.Display.Sort != "" {
		dst.Display.Sort = src.Display.Sort
	}
	if src.Display.Order != "" {
		dst.Display.Order = src.Display.Order
	}
	if src.Display.Limit != 0 {
		dst.Display.Limit = src.Display.Limit
	}
	if src.Display.Color != nil {
		dst.Display.Color = src.Display.Color
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}

	if src.Blob.AccountURL != "" {
		dst.Blob.AccountURL = src.Blob.AccountURL
	}
	if src.Blob.Container != "" {
		dst.Blob.Container = src.Blob.Container
	}
}

func boolPtr(b bool) *bool {
	return &b
}
