package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	defaults := Default()

	for name, field := range map[string]*string{
		"work_dir":     &c.Paths.WorkDir,
		"delivery_dir": &c.Paths.DeliveryDir,
		"log_dir":      &c.Paths.LogDir,
	} {
		if strings.TrimSpace(*field) == "" {
			switch name {
			case "work_dir":
				*field = defaults.Paths.WorkDir
			case "delivery_dir":
				*field = defaults.Paths.DeliveryDir
			case "log_dir":
				*field = defaults.Paths.LogDir
			}
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	hosts := make([]string, 0, len(c.Hosts.Allowed))
	for _, host := range c.Hosts.Allowed {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		hosts = defaults.Hosts.Allowed
	}
	c.Hosts.Allowed = hosts

	fillString(&c.Downloader.Binary, defaults.Downloader.Binary)
	fillString(&c.Downloader.Format, defaults.Downloader.Format)
	fillString(&c.Downloader.Container, defaults.Downloader.Container)
	fillInt(&c.Downloader.TimeoutSeconds, defaults.Downloader.TimeoutSeconds)

	fillString(&c.Transcode.FFmpegBinary, defaults.Transcode.FFmpegBinary)
	fillString(&c.Transcode.FFprobeBinary, defaults.Transcode.FFprobeBinary)
	fillInt(&c.Transcode.CopyTimeoutSeconds, defaults.Transcode.CopyTimeoutSeconds)
	fillInt(&c.Transcode.EncodeTimeoutSeconds, defaults.Transcode.EncodeTimeoutSeconds)
	fillString(&c.Transcode.VideoCodec, defaults.Transcode.VideoCodec)
	fillString(&c.Transcode.PixelFormat, defaults.Transcode.PixelFormat)
	fillString(&c.Transcode.Preset, defaults.Transcode.Preset)
	fillInt(&c.Transcode.CRF, defaults.Transcode.CRF)
	fillString(&c.Transcode.AudioCodec, defaults.Transcode.AudioCodec)
	fillString(&c.Transcode.AudioBitrate, defaults.Transcode.AudioBitrate)
	if len(c.Transcode.CompatibleVideoCodecs) == 0 {
		c.Transcode.CompatibleVideoCodecs = defaults.Transcode.CompatibleVideoCodecs
	}
	if len(c.Transcode.CompatiblePixelFormats) == 0 {
		c.Transcode.CompatiblePixelFormats = defaults.Transcode.CompatiblePixelFormats
	}
	if c.Transcode.OversizeFactor == 0 {
		c.Transcode.OversizeFactor = defaults.Transcode.OversizeFactor
	}

	if c.Delivery.CompactLimitMB == 0 {
		c.Delivery.CompactLimitMB = defaults.Delivery.CompactLimitMB
	}
	if c.Delivery.MaxLimitMB == 0 {
		c.Delivery.MaxLimitMB = defaults.Delivery.MaxLimitMB
	}

	fillString(&c.Logging.Format, defaults.Logging.Format)
	fillString(&c.Logging.Level, defaults.Logging.Level)

	return nil
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if c.Transcode.OversizeFactor < 1 {
		return fmt.Errorf("transcode.oversize_factor must be at least 1, got %v", c.Transcode.OversizeFactor)
	}
	if c.Transcode.CRF < 0 || c.Transcode.CRF > 51 {
		return fmt.Errorf("transcode.crf must be between 0 and 51, got %d", c.Transcode.CRF)
	}
	if c.Delivery.CompactLimitMB <= 0 || c.Delivery.MaxLimitMB <= 0 {
		return fmt.Errorf("delivery limits must be positive")
	}
	if c.Delivery.CompactLimitMB > c.Delivery.MaxLimitMB {
		return fmt.Errorf("delivery.compact_limit_mb (%d) exceeds delivery.max_limit_mb (%d)",
			c.Delivery.CompactLimitMB, c.Delivery.MaxLimitMB)
	}
	for _, timeout := range []int{
		c.Downloader.TimeoutSeconds,
		c.Transcode.CopyTimeoutSeconds,
		c.Transcode.EncodeTimeoutSeconds,
	} {
		if timeout <= 0 {
			return fmt.Errorf("timeouts must be positive")
		}
	}
	return nil
}

func fillString(field *string, fallback string) {
	if strings.TrimSpace(*field) == "" {
		*field = fallback
	}
}

func fillInt(field *int, fallback int) {
	if *field == 0 {
		*field = fallback
	}
}
