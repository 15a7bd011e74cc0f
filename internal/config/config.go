package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// ErrCodeNotFound means no configuration file exists at the resolved path.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the file could not be read, parsed or validated.
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultInterval  = 15 * time.Minute
	DefaultExtension = ".txt"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	appName = "scorerelay"
)

// Source is a named cabinet paired with the directory its frontend writes
// hi-score files to.
type Source struct {
	Name      string `yaml:"name" json:"name"`
	Directory string `yaml:"directory" json:"directory"`
}

// Duration is a time.Duration that decodes from strings such as "15m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

type HTTPConfig struct {
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
	Proxy     string   `yaml:"proxy"`
}

type StateConfig struct {
	Persist bool   `yaml:"persist"`
	Path    string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the decoded configuration file after defaults are applied.
type Config struct {
	APIEndpoint string            `yaml:"api_endpoint"`
	Interval    Duration          `yaml:"interval"`
	Extension   string            `yaml:"extension"`
	HTTP        HTTPConfig        `yaml:"http"`
	State       StateConfig       `yaml:"state"`
	Log         LogConfig         `yaml:"log"`
	Sources     []Source          `yaml:"sources"`
	RomNames    map[string]string `yaml:"rom_names"`
}

// Error is a configuration failure tagged with a stable code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the code of a *Error, or "" for any other error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetDataDir resolves the directory for relay state. SCORERELAY_DIR wins,
// then the XDG data home.
func GetDataDir() string {
	if explicit := os.Getenv("SCORERELAY_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetStatePath returns the default SQLite file for persisted fingerprints.
func GetStatePath() string {
	return filepath.Join(GetDataDir(), "state.db")
}

// GetConfigPath resolves the configuration file: SCORERELAY_CONFIG, then
// $XDG_CONFIG_HOME/scorerelay/config.yaml.
func GetConfigPath() string {
	if explicit := os.Getenv("SCORERELAY_CONFIG"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	configHome := xdg.ConfigHome
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "config.yaml")
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, "config.yaml")
}

// Load reads the configuration at path (or the default location when path is
// empty), applies defaults and validates it.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = GetConfigPath()
	}

	//nolint:gosec // G304: path is supplied by the operator
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	cfg, err := Parse(b)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes YAML content, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.APIEndpoint = strings.TrimSpace(c.APIEndpoint)
	if c.Interval == 0 {
		c.Interval = Duration(DefaultInterval)
	}
	c.Extension = NormalizeExtension(c.Extension)
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = Duration(DefaultTimeout)
	}
	if strings.TrimSpace(c.HTTP.UserAgent) == "" {
		c.HTTP.UserAgent = appName
	}
	if c.State.Persist && strings.TrimSpace(c.State.Path) == "" {
		c.State.Path = GetStatePath()
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = DefaultLogLevel
	}
	if strings.TrimSpace(c.Log.Format) == "" {
		c.Log.Format = DefaultLogFormat
	}
	for i := range c.Sources {
		c.Sources[i].Name = strings.TrimSpace(c.Sources[i].Name)
		c.Sources[i].Directory = strings.TrimSpace(c.Sources[i].Directory)
	}
}

// Validate checks the fields the relay cannot run without.
func (c *Config) Validate() error {
	if c.APIEndpoint == "" {
		return errors.New("api_endpoint is required")
	}
	u, err := url.Parse(c.APIEndpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api_endpoint is not a valid URL: %q", c.APIEndpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_endpoint must be http or https: %q", c.APIEndpoint)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", time.Duration(c.Interval))
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", time.Duration(c.HTTP.Timeout))
	}
	if len(c.Sources) == 0 {
		return errors.New("at least one source is required")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if src.Directory == "" {
			return fmt.Errorf("sources[%d] (%s): directory is required", i, src.Name)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		seen[src.Name] = struct{}{}
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// NormalizeExtension lower-cases ext and guarantees a leading dot. An empty
// value selects DefaultExtension.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
