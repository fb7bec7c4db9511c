package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	DefaultConfigDir   = ".config/sessioncli"
	DefaultConfigFile  = "config.json"
	DefaultBaseURL     = "http://localhost:8080"
	DefaultRefreshPath = "/auth/refresh"
	FilePermissions    = os.FileMode(0600)
	DirPermissions     = os.FileMode(0700)
)

// Paths resolves the config directory and file path.
// Checks SESSIONCLI_CONFIG env var first, then falls back to ~/.config/sessioncli/config.json.
func Paths(override string) (dir string, filePath string, err error) {
	if override != "" {
		expanded, err := ExpandTilde(override)
		if err != nil {
			return "", "", err
		}
		return filepath.Dir(expanded), expanded, nil
	}

	if envPath := os.Getenv("SESSIONCLI_CONFIG"); envPath != "" {
		expanded, err := ExpandTilde(envPath)
		if err != nil {
			return "", "", err
		}
		return filepath.Dir(expanded), expanded, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	dir = filepath.Join(home, DefaultConfigDir)
	filePath = filepath.Join(dir, DefaultConfigFile)
	return dir, filePath, nil
}

// Load reads the config file from disk. Returns empty Config if file doesn't exist.
// Env var overrides are applied after loading.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes the config to disk with an exclusive file lock.
// Creates the directory with 0700 and file with 0600 permissions.
// Uses atomic write: write to temp file in same dir, then rename.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Acquire exclusive lock
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, FilePermissions)
	if err != nil {
		return fmt.Errorf("creating lock file: %w", err)
	}
	defer func() {
		syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
		lockFile.Close()
		os.Remove(lockPath)
	}()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	// Atomic write: temp file + rename
	tmpFile, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := os.Chmod(tmpPath, FilePermissions); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming config file: %w", err)
	}

	return nil
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir(override string) (string, error) {
	dir, _, err := Paths(override)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// ExpandTilde replaces a leading "~" in a path with the user's home directory.
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ResolvedBaseURL returns the configured base URL, or DefaultBaseURL when unset.
func (cfg *Config) ResolvedBaseURL() string {
	if u := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); u != "" {
		return u
	}
	return DefaultBaseURL
}

// ResolvedRefreshPath returns the refresh endpoint path, or DefaultRefreshPath when unset.
func (cfg *Config) ResolvedRefreshPath() string {
	if p := strings.TrimSpace(cfg.RefreshPath); p != "" {
		return p
	}
	return DefaultRefreshPath
}

// Validate checks that the configured values are usable.
func (cfg *Config) Validate() error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url %q (expected e.g. %s)", cfg.BaseURL, DefaultBaseURL)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
		}
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SESSIONCLI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SESSIONCLI_REFRESH_PATH"); v != "" {
		cfg.RefreshPath = v
	}
}
