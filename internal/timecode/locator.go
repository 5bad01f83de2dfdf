package timecode

import (
	"net/url"
	"strings"
)

// ValidLocator reports whether text is a well-formed http(s) URL whose host
// is on the allow-list. An optional www. prefix is ignored. This is a purely
// syntactic check; whether the source exists is discovered by the
// downloader.
func ValidLocator(text string, allowedHosts []string) bool {
	parsed, err := url.Parse(strings.TrimSpace(text))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return false
	}
	if parsed.Path == "" || parsed.Path == "/" {
		return false
	}
	for _, allowed := range allowedHosts {
		if host == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}
