package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Duration reads Go duration strings such as "40s" or "10m" from any of the
// supported config formats.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags and env.
type FileConfig struct {
	Search struct {
		URL       string `yaml:"url" json:"url" toml:"url"`
		UserAgent string `yaml:"userAgent" json:"userAgent" toml:"userAgent"`
		File      string `yaml:"file" json:"file" toml:"file"`
	} `yaml:"search" json:"search" toml:"search"`

	Documents struct {
		URL string `yaml:"url" json:"url" toml:"url"`
	} `yaml:"documents" json:"documents" toml:"documents"`

	Run struct {
		City     string   `yaml:"city" json:"city" toml:"city"`
		Region   string   `yaml:"region" json:"region" toml:"region"`
		Keywords []string `yaml:"keywords" json:"keywords" toml:"keywords"`
		// Delay is in seconds.
		Delay       *float64 `yaml:"delay" json:"delay" toml:"delay"`
		Contacts    *bool    `yaml:"contacts" json:"contacts" toml:"contacts"`
		MaxContacts *int     `yaml:"maxContacts" json:"maxContacts" toml:"maxContacts"`
		Dedup       *bool    `yaml:"dedup" json:"dedup" toml:"dedup"`
	} `yaml:"run" json:"run" toml:"run"`

	HTTP struct {
		ConnectTimeout Duration `yaml:"connectTimeout" json:"connectTimeout" toml:"connectTimeout"`
		SearchTimeout  Duration `yaml:"searchTimeout" json:"searchTimeout" toml:"searchTimeout"`
		DocTimeout     Duration `yaml:"docTimeout" json:"docTimeout" toml:"docTimeout"`
		RetryAttempts  int      `yaml:"retryAttempts" json:"retryAttempts" toml:"retryAttempts"`
		Backoff        Duration `yaml:"backoff" json:"backoff" toml:"backoff"`
	} `yaml:"http" json:"http" toml:"http"`

	Export struct {
		Dir  string `yaml:"dir" json:"dir" toml:"dir"`
		XLSX bool   `yaml:"xlsx" json:"xlsx" toml:"xlsx"`
		PDF  bool   `yaml:"pdf" json:"pdf" toml:"pdf"`
	} `yaml:"export" json:"export" toml:"export"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir" toml:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge" toml:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear" toml:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
		MaxBytes    int64    `yaml:"maxBytes" json:"maxBytes" toml:"maxBytes"`
		MaxCount    int      `yaml:"maxCount" json:"maxCount" toml:"maxCount"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	Server struct {
		Listen            string   `yaml:"listen" json:"listen" toml:"listen"`
		KeepAliveURL      string   `yaml:"keepAliveURL" json:"keepAliveURL" toml:"keepAliveURL"`
		KeepAliveInterval Duration `yaml:"keepAliveInterval" json:"keepAliveInterval" toml:"keepAliveInterval"`
	} `yaml:"server" json:"server" toml:"server"`

	Log struct {
		File    string `yaml:"file" json:"file" toml:"file"`
		Verbose bool   `yaml:"verbose" json:"verbose" toml:"verbose"`
	} `yaml:"log" json:"log" toml:"log"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig based on the file
// extension. Unknown extensions are tried as YAML, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg. Call it on
// defaults before env and flags are applied.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setDur := func(dst *time.Duration, v Duration) {
		if v > 0 {
			*dst = time.Duration(v)
		}
	}

	setStr(&cfg.SearchURL, fc.Search.URL)
	setStr(&cfg.UserAgent, fc.Search.UserAgent)
	setStr(&cfg.FileSearchPath, fc.Search.File)
	setStr(&cfg.DocURL, fc.Documents.URL)

	setStr(&cfg.City, fc.Run.City)
	setStr(&cfg.Region, fc.Run.Region)
	if len(fc.Run.Keywords) > 0 {
		cfg.Keywords = append([]string(nil), fc.Run.Keywords...)
	}
	if fc.Run.Delay != nil {
		cfg.Delay = secondsToDuration(*fc.Run.Delay)
	}
	if fc.Run.Contacts != nil {
		cfg.Contacts = *fc.Run.Contacts
	}
	if fc.Run.MaxContacts != nil {
		cfg.MaxContacts = *fc.Run.MaxContacts
	}
	if fc.Run.Dedup != nil {
		cfg.Dedup = *fc.Run.Dedup
	}

	setDur(&cfg.ConnectTimeout, fc.HTTP.ConnectTimeout)
	setDur(&cfg.SearchTimeout, fc.HTTP.SearchTimeout)
	setDur(&cfg.DocTimeout, fc.HTTP.DocTimeout)
	setDur(&cfg.Backoff, fc.HTTP.Backoff)
	if fc.HTTP.RetryAttempts > 0 {
		cfg.RetryAttempts = fc.HTTP.RetryAttempts
	}

	setStr(&cfg.ExportDir, fc.Export.Dir)
	if fc.Export.XLSX {
		cfg.ExportXLSX = true
	}
	if fc.Export.PDF {
		cfg.ExportPDF = true
	}

	setStr(&cfg.CacheDir, fc.Cache.Dir)
	setDur(&cfg.CacheMaxAge, fc.Cache.MaxAge)
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if fc.Cache.MaxBytes > 0 {
		cfg.CacheMaxBytes = fc.Cache.MaxBytes
	}
	if fc.Cache.MaxCount > 0 {
		cfg.CacheMaxCount = fc.Cache.MaxCount
	}

	setStr(&cfg.ListenAddr, fc.Server.Listen)
	setStr(&cfg.KeepAliveURL, fc.Server.KeepAliveURL)
	setDur(&cfg.KeepAliveInterval, fc.Server.KeepAliveInterval)

	setStr(&cfg.LogFile, fc.Log.File)
	if fc.Log.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SearchURL) == "" && strings.TrimSpace(cfg.FileSearchPath) == "" {
		return errors.New("config: search url is required")
	}
	if strings.TrimSpace(cfg.DocURL) == "" {
		return errors.New("config: document url is required")
	}
	if strings.TrimSpace(cfg.ExportDir) == "" {
		return errors.New("config: export dir is required")
	}
	if cfg.Delay < 0 || cfg.MaxContacts < 0 || cfg.KeepAliveInterval < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative delays, limits and intervals are not allowed")
	}
	if cfg.CacheMaxBytes < 0 || cfg.CacheMaxCount < 0 {
		return errors.New("config: negative cache limits are not allowed")
	}
	if cfg.RetryAttempts < 0 || cfg.ConnectTimeout < 0 || cfg.SearchTimeout < 0 || cfg.DocTimeout < 0 {
		return errors.New("config: negative transport settings are not allowed")
	}
	return nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
