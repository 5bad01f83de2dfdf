package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir     string `toml:"work_dir"`
	DeliveryDir string `toml:"delivery_dir"`
	LogDir      string `toml:"log_dir"`
}

// Hosts configures the source locator allow-list.
type Hosts struct {
	Allowed []string `toml:"allowed"`
}

// Downloader contains configuration for segment acquisition.
type Downloader struct {
	Binary         string `toml:"binary"`
	Format         string `toml:"format"`
	Container      string `toml:"container"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcode contains configuration for probing and transcoding.
type Transcode struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// CopyTimeoutSeconds bounds the near-instant stream-copy trim;
	// EncodeTimeoutSeconds bounds full re-encodes.
	CopyTimeoutSeconds   int `toml:"copy_timeout_seconds"`
	EncodeTimeoutSeconds int `toml:"encode_timeout_seconds"`

	VideoCodec   string `toml:"video_codec"`
	PixelFormat  string `toml:"pixel_format"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`

	CompatibleVideoCodecs  []string `toml:"compatible_video_codecs"`
	CompatiblePixelFormats []string `toml:"compatible_pixel_formats"`

	// OversizeFactor is the multiple of the requested window beyond which a
	// downloaded artifact is considered untrimmed and must be sliced.
	OversizeFactor float64 `toml:"oversize_factor"`
}

// Delivery contains the size ceilings for the delivery gate.
type Delivery struct {
	CompactLimitMB int64 `toml:"compact_limit_mb"`
	MaxLimitMB     int64 `toml:"max_limit_mb"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipperd.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Hosts      Hosts      `toml:"hosts"`
	Downloader Downloader `toml:"downloader"`
	Transcode  Transcode  `toml:"transcode"`
	Delivery   Delivery   `toml:"delivery"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("clipper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.DeliveryDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SocketPath returns the unix socket path the daemon listens on.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "clipperd.sock")
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "clipperd.lock")
}

// RegistryPath returns the run registry database path.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.LogDir, "runs.db")
}

// CompactLimitBytes returns the compact delivery ceiling in bytes.
func (c *Config) CompactLimitBytes() int64 {
	return c.Delivery.CompactLimitMB * 1024 * 1024
}

// MaxLimitBytes returns the absolute delivery ceiling in bytes.
func (c *Config) MaxLimitBytes() int64 {
	return c.Delivery.MaxLimitMB * 1024 * 1024
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
