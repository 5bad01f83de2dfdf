package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying pipeline failures. Every error surfaced by an
// external tool wrapper carries exactly one of these markers.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrAcquisition  = errors.New("acquisition failed")
	ErrProbe        = errors.New("probe inconclusive")
	ErrTranscode    = errors.New("transcode failed")
	ErrTimeout      = errors.New("timeout")
	ErrTooLarge     = errors.New("artifact too large")
	ErrDelivery     = errors.New("delivery failed")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTranscode
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// DetailLimit bounds how much raw tool diagnostic text may reach a user.
const DetailLimit = 400

// Truncate caps s at limit bytes, marking the cut. Raw tool output shown to
// users always passes through this.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		limit = DetailLimit
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit] + " [truncated]"
}
