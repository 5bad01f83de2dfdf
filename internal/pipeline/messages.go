package pipeline

import (
	"errors"

	"clipper/internal/services"
)

// UserMessage converts a pipeline failure into the line shown to the
// requester. Timeouts get their own phrasing so a slow source is not
// mistaken for a broken one; everything else maps to its stage with a
// bounded slice of tool diagnostics attached.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, services.ErrTimeout):
		return "Gave up waiting on the segment. The source may be slow or the window too long; try again or pick a shorter window."
	case errors.Is(err, services.ErrTooLarge):
		return withDetail("The finished clip is too large to deliver.", err)
	case errors.Is(err, services.ErrAcquisition):
		return withDetail("Could not download that segment.", err)
	case errors.Is(err, services.ErrTranscode):
		return withDetail("Downloaded the segment but could not convert it.", err)
	case errors.Is(err, services.ErrDelivery):
		return "The clip was ready but delivery failed. Try again."
	case errors.Is(err, services.ErrInvalidInput):
		return withDetail("That request cannot be processed.", err)
	}
	return withDetail("Something went wrong while processing the segment.", err)
}

func withDetail(lead string, err error) string {
	detail := services.Truncate(err.Error(), services.DetailLimit)
	if detail == "" {
		return lead
	}
	return lead + " (" + detail + ")"
}
