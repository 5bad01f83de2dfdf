// Package ffprobe wraps ffprobe JSON inspection of acquired artifacts:
// duration, primary video codec, and pixel format.
package ffprobe
