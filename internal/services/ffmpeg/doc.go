// Package ffmpeg invokes the external transcoder in stream-copy or
// re-encode mode with a hard wall-clock budget.
package ffmpeg
