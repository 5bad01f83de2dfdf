// Package timecode parses and normalizes user-supplied time strings and
// validates source locators against the configured host allow-list.
package timecode
