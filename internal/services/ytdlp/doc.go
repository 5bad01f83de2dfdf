// Package ytdlp invokes the external downloader for a single time window of
// a source and resolves the artifact it produced on disk.
package ytdlp
