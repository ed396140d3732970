package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings Bodega needs to reach the remote API.
type Config struct {
	BaseURL         string
	AltURL          string
	PrimaryEndpoint string
	RequestTimeout  time.Duration
	ProbeTimeout    time.Duration
	PollInterval    time.Duration
	PageSize        int
	LogLevel        string
	LogFile         string
	SessionPath     string
}

const (
	defaultConfigPath      = "~/.config/bodega/config.toml"
	defaultBaseURL         = "http://127.0.0.1:8000/api"
	defaultPrimaryEndpoint = "/clientes"
	defaultRequestTimeout  = 30 * time.Second
	defaultProbeTimeout    = 5 * time.Second
	defaultPollInterval    = 30 * time.Second
	defaultPageSize        = 15
	defaultLogLevel        = "info"
	defaultLogFile         = "~/.local/share/bodega/bodega.log"
	defaultSessionPath     = "~/.config/bodega/session.toml"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		BaseURL:         defaultBaseURL,
		PrimaryEndpoint: defaultPrimaryEndpoint,
		RequestTimeout:  defaultRequestTimeout,
		ProbeTimeout:    defaultProbeTimeout,
		PollInterval:    defaultPollInterval,
		PageSize:        defaultPageSize,
		LogLevel:        defaultLogLevel,
		LogFile:         mustExpand(defaultLogFile),
		SessionPath:     mustExpand(defaultSessionPath),
	}
	cfg.AltURL = OriginOf(cfg.BaseURL)
	return cfg
}

// Load locates and parses the bodega config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL         string `toml:"base_url"`
		AltURL          string `toml:"alt_url"`
		PrimaryEndpoint string `toml:"primary_endpoint"`
		RequestTimeout  string `toml:"request_timeout"`
		ProbeTimeout    string `toml:"probe_timeout"`
		PollInterval    string `toml:"poll_interval"`
		PageSize        int    `toml:"page_size"`
		LogLevel        string `toml:"log_level"`
		LogFile         string `toml:"log_file"`
		SessionPath     string `toml:"session_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
		cfg.AltURL = OriginOf(cfg.BaseURL)
	}
	if v := strings.TrimSpace(raw.AltURL); v != "" {
		cfg.AltURL = v
	}
	if v := strings.TrimSpace(raw.PrimaryEndpoint); v != "" {
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		cfg.PrimaryEndpoint = v
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProbeTimeout, err = parseDuration("probe_timeout", raw.ProbeTimeout, cfg.ProbeTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}

	return cfg, nil
}

// PrimaryURL returns the absolute URL of the listing endpoint used by the primary probe.
func (c Config) PrimaryURL() string {
	return strings.TrimRight(c.BaseURL, "/") + c.PrimaryEndpoint
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}

// OriginOf strips the path from a base URL, leaving scheme://host.
func OriginOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
