package conversation

import (
	"strings"

	"clipper/internal/timecode"
)

// State identifies the collection phase of a session.
type State string

const (
	StateAwaitingLocator State = "awaiting_locator"
	StateAwaitingStart   State = "awaiting_start"
	StateAwaitingEnd     State = "awaiting_end"
	StateComplete        State = "complete"
	StateCancelled       State = "cancelled"
)

// Request carries a fully collected segment request. It is immutable once
// emitted; the session discards its own scratch copy of every field.
type Request struct {
	Locator string
	Start   timecode.TimeCode
	End     timecode.TimeCode
}

// Session collects a locator and a time window one line at a time. A session
// is owned by exactly one interaction; it is never shared between requests.
type Session struct {
	state   State
	hosts   []string
	locator string
	start   timecode.TimeCode
}

// NewSession returns a session ready to receive a locator.
func NewSession(allowedHosts []string) *Session {
	return &Session{state: StateAwaitingLocator, hosts: allowedHosts}
}

// State returns the current collection phase.
func (s *Session) State() State {
	return s.state
}

// Greeting returns the usage text shown when a session first opens.
func (s *Session) Greeting() string {
	return "I fetch trimmed segments of a video for you.\n" +
		"Send the source URL first, then the start time, then the end time.\n" +
		"Times look like HH:MM:SS or MM:SS. Send \"cancel\" to start over.\n\n" +
		"Which video? (URL)"
}

// Input feeds one line of free text into the state machine. The returned
// reply is shown to the user. When the final field is accepted the machine
// moves to StateComplete and returns the emitted request; the caller must
// call Reset before reusing the session.
func (s *Session) Input(text string) (string, *Request) {
	trimmed := strings.TrimSpace(text)
	if isCancel(trimmed) {
		if s.state == StateComplete {
			return "Nothing to cancel.", nil
		}
		s.discard()
		s.state = StateCancelled
		return "Cancelled. Send a URL whenever you want another segment.", nil
	}

	switch s.state {
	case StateAwaitingLocator, StateCancelled:
		if !timecode.ValidLocator(trimmed, s.hosts) {
			return "That does not look like a supported video URL. Try again. (URL)", nil
		}
		s.locator = trimmed
		s.state = StateAwaitingStart
		return "Got it. Start time? (HH:MM:SS or MM:SS)", nil

	case StateAwaitingStart:
		start, err := timecode.Parse(trimmed)
		if err != nil {
			return "That is not a valid time. Use HH:MM:SS or MM:SS. Start time?", nil
		}
		s.start = start
		s.state = StateAwaitingEnd
		return "End time? (must be after " + start.String() + ")", nil

	case StateAwaitingEnd:
		end, err := timecode.Parse(trimmed)
		if err != nil {
			return "That is not a valid time. Use HH:MM:SS or MM:SS. End time?", nil
		}
		if !end.After(s.start) {
			return "End time must be after " + s.start.String() + ". End time?", nil
		}
		req := &Request{Locator: s.locator, Start: s.start, End: end}
		s.state = StateComplete
		return "Working on segment " + req.Start.String() + "-" + req.End.String() + "...", req

	default:
		return "Still working on your last request. Send \"cancel\" to discard it.", nil
	}
}

// Reset discards all scratch state and returns the session to the initial
// phase. It is safe to call in any state, including after a pipeline crash,
// so a stale partial request is never visible to the next interaction.
func (s *Session) Reset() {
	s.discard()
	s.state = StateAwaitingLocator
}

func (s *Session) discard() {
	s.locator = ""
	s.start = timecode.TimeCode{}
}

func isCancel(text string) bool {
	switch strings.ToLower(text) {
	case "cancel", "/cancel":
		return true
	}
	return false
}
