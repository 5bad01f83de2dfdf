package config

const (
	defaultWorkDir     = "~/.local/share/clipper/work"
	defaultDeliveryDir = "~/.local/share/clipper/out"
	defaultLogDir      = "~/.local/share/clipper/logs"

	defaultDownloaderBinary  = "yt-dlp"
	defaultDownloaderFormat  = "bv*+ba/b"
	defaultContainer         = "mkv"
	defaultDownloadTimeout   = 600
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultCopyTimeout       = 300
	defaultEncodeTimeout     = 900
	defaultVideoCodec        = "libx264"
	defaultPixelFormat       = "yuv420p"
	defaultPreset            = "fast"
	defaultCRF               = 23
	defaultAudioCodec        = "aac"
	defaultAudioBitrate      = "192k"
	defaultOversizeFactor    = 1.5
	defaultCompactLimitMB    = 50
	defaultMaxLimitMB        = 2000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			DeliveryDir: defaultDeliveryDir,
			LogDir:      defaultLogDir,
		},
		Hosts: Hosts{
			Allowed: []string{"youtube.com", "youtu.be"},
		},
		Downloader: Downloader{
			Binary:         defaultDownloaderBinary,
			Format:         defaultDownloaderFormat,
			Container:      defaultContainer,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Transcode: Transcode{
			FFmpegBinary:           defaultFFmpegBinary,
			FFprobeBinary:          defaultFFprobeBinary,
			CopyTimeoutSeconds:     defaultCopyTimeout,
			EncodeTimeoutSeconds:   defaultEncodeTimeout,
			VideoCodec:             defaultVideoCodec,
			PixelFormat:            defaultPixelFormat,
			Preset:                 defaultPreset,
			CRF:                    defaultCRF,
			AudioCodec:             defaultAudioCodec,
			AudioBitrate:           defaultAudioBitrate,
			CompatibleVideoCodecs:  []string{"h264"},
			CompatiblePixelFormats: []string{"yuv420p", "yuvj420p"},
			OversizeFactor:         defaultOversizeFactor,
		},
		Delivery: Delivery{
			CompactLimitMB: defaultCompactLimitMB,
			MaxLimitMB:     defaultMaxLimitMB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
