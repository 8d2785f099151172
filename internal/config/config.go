package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/nodian/internal/constants"
)

type Config struct {
	RootDir         string        `yaml:"root_dir"         json:"root_dir"`
	SessionFile     string        `yaml:"session_file"     json:"session_file"`
	PersistSession  *bool         `yaml:"persist_session"  json:"persist_session"`
	Database        string        `yaml:"database"         json:"database"`
	LogLevel        string        `yaml:"log_level"        json:"log_level"`
	LogFile         string        `yaml:"log_file"         json:"log_file"`
	LogFormat       string        `yaml:"log_format"       json:"log_format"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`
	PreviewWidth    int           `yaml:"preview_width"    json:"preview_width"`

	home string `yaml:"-"`
}

var validLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

var validFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Load reads the config stored under home. An empty file yields the defaults.
func Load(home string) (*Config, error) {
	data, err := os.ReadFile(GetConfigPath(home))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.home = home
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is stored.
func Default(home string) *Config {
	cfg := &Config{home: home}
	cfg.ensureDefaults()
	return cfg
}

func (cfg *Config) ensureDefaults() {
	if strings.TrimSpace(cfg.RootDir) == "" {
		cfg.RootDir = constants.DefaultRootDir
	}
	if strings.TrimSpace(cfg.SessionFile) == "" {
		cfg.SessionFile = filepath.Join(constants.ConfigDir, constants.DefaultSessionFile)
	}
	if strings.TrimSpace(cfg.Database) == "" {
		cfg.Database = filepath.Join(constants.ConfigDir, constants.DefaultDatabase)
	}
	if strings.TrimSpace(cfg.LogFile) == "" {
		cfg.LogFile = filepath.Join(constants.ConfigDir, constants.DefaultLogFile)
	}
	if cfg.PersistSession == nil {
		persist := true
		cfg.PersistSession = &persist
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = constants.DefaultLogLevel
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = constants.DefaultLogFormat
	}
	if cfg.PreviewWidth == 0 {
		cfg.PreviewWidth = constants.DefaultPreviewWide
	}
}

func (cfg *Config) Validate() error {
	if !validLevels[cfg.LogLevel] {
		return &ConfigInitError{
			msg: fmt.Sprintf("invalid log_level %q. Please choose from DEBUG, INFO, WARN, or ERROR.", cfg.LogLevel),
		}
	}
	if !validFormats[cfg.LogFormat] {
		return &ConfigInitError{
			msg: fmt.Sprintf("invalid log_format %q. Please choose from 'text' or 'json'.", cfg.LogFormat),
		}
	}
	if cfg.RefreshInterval < 0 {
		return &ConfigInitError{msg: "refresh_interval cannot be negative"}
	}
	if cfg.PreviewWidth < 0 {
		return &ConfigInitError{msg: "preview_width cannot be negative"}
	}
	return nil
}

// ApplyOverrides layers flag and environment values bound in v over the file
// values. Only keys explicitly set in v are applied.
func (cfg *Config) ApplyOverrides(v *viper.Viper) error {
	if v == nil {
		return nil
	}
	if v.IsSet("root_dir") {
		cfg.RootDir = v.GetString("root_dir")
	}
	if v.IsSet("session_file") {
		cfg.SessionFile = v.GetString("session_file")
	}
	if v.IsSet("persist_session") {
		persist := v.GetBool("persist_session")
		cfg.PersistSession = &persist
	}
	if v.IsSet("database") {
		cfg.Database = v.GetString("database")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = v.GetString("log_format")
	}
	if v.IsSet("log_file") {
		cfg.LogFile = v.GetString("log_file")
	}
	if v.IsSet("refresh_interval") {
		cfg.RefreshInterval = v.GetDuration("refresh_interval")
	}
	cfg.ensureDefaults()
	return cfg.Validate()
}

// Persist reports whether the open-file set is saved between runs.
func (cfg *Config) Persist() bool {
	return cfg.PersistSession == nil || *cfg.PersistSession
}

// RootPath returns the notes root. Relative values are anchored at the home
// directory rather than the process working directory.
func (cfg *Config) RootPath() string {
	return cfg.resolve(cfg.RootDir)
}

func (cfg *Config) SessionPath() string {
	return cfg.resolve(cfg.SessionFile)
}

func (cfg *Config) DatabasePath() string {
	return cfg.resolve(cfg.Database)
}

func (cfg *Config) LogPath() string {
	if strings.TrimSpace(cfg.LogFile) == "" {
		return ""
	}
	return cfg.resolve(cfg.LogFile)
}

func (cfg *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		p = p[2:]
	}
	return filepath.Join(cfg.home, p)
}

// Save writes the config back to its file under home.
func (cfg *Config) Save() error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path := GetConfigPath(cfg.home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ChangeRoot validates and stores a new notes root.
func (cfg *Config) ChangeRoot(root string) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return &ConfigInitError{msg: "root_dir cannot be empty"}
	}
	cfg.RootDir = root
	return cfg.Save()
}
