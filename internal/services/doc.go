// Package services holds the shared error taxonomy and command execution
// plumbing used by the external tool wrappers (downloader, probe,
// transcoder).
package services
