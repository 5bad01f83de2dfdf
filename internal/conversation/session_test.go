package conversation_test

import (
	"strings"
	"testing"

	"clipper/internal/conversation"
)

var hosts = []string{"youtube.com", "youtu.be"}

func TestHappyPathEmitsRequest(t *testing.T) {
	s := conversation.NewSession(hosts)

	reply, req := s.Input("https://www.youtube.com/watch?v=oxfbPqnuYac")
	if req != nil {
		t.Fatal("unexpected request after locator")
	}
	if s.State() != conversation.StateAwaitingStart {
		t.Fatalf("unexpected state: %s", s.State())
	}
	if reply == "" {
		t.Fatal("expected a prompt for the start time")
	}

	if _, req = s.Input("02:21:15"); req != nil {
		t.Fatal("unexpected request after start time")
	}
	if s.State() != conversation.StateAwaitingEnd {
		t.Fatalf("unexpected state: %s", s.State())
	}

	_, req = s.Input("02:21:50")
	if req == nil {
		t.Fatal("expected a request after end time")
	}
	if s.State() != conversation.StateComplete {
		t.Fatalf("unexpected state: %s", s.State())
	}
	if req.Locator != "https://www.youtube.com/watch?v=oxfbPqnuYac" {
		t.Fatalf("unexpected locator: %q", req.Locator)
	}
	if req.Start.String() != "02:21:15" || req.End.String() != "02:21:50" {
		t.Fatalf("unexpected window: %s-%s", req.Start, req.End)
	}
}

func TestRejectedLocatorStaysInState(t *testing.T) {
	s := conversation.NewSession(hosts)

	reply, req := s.Input("https://example.com/watch?v=abc")
	if req != nil {
		t.Fatal("unexpected request for rejected locator")
	}
	if s.State() != conversation.StateAwaitingLocator {
		t.Fatalf("unexpected state: %s", s.State())
	}
	if !strings.Contains(reply, "URL") {
		t.Fatalf("expected a re-prompt, got %q", reply)
	}
}

func TestExtraColonStartRejected(t *testing.T) {
	s := conversation.NewSession(hosts)
	s.Input("https://youtu.be/oxfbPqnuYac")

	_, req := s.Input("00:02:21:15")
	if req != nil {
		t.Fatal("unexpected request for malformed start")
	}
	if s.State() != conversation.StateAwaitingStart {
		t.Fatalf("expected to stay in awaiting_start, got %s", s.State())
	}
}

func TestEndNotAfterStartNeverCompletes(t *testing.T) {
	s := conversation.NewSession(hosts)
	s.Input("https://youtu.be/oxfbPqnuYac")
	s.Input("00:10:00")

	for _, end := range []string{"00:09:50", "00:10:00"} {
		reply, req := s.Input(end)
		if req != nil {
			t.Fatalf("unexpected request for end %q", end)
		}
		if s.State() != conversation.StateAwaitingEnd {
			t.Fatalf("unexpected state after end %q: %s", end, s.State())
		}
		if !strings.Contains(reply, "00:10:00") {
			t.Fatalf("expected the stored start to be unchanged, got %q", reply)
		}
	}

	// A valid end must still work against the original, unmutated start.
	_, req := s.Input("00:10:30")
	if req == nil {
		t.Fatal("expected completion with a valid end")
	}
	if req.Start.String() != "00:10:00" {
		t.Fatalf("start was mutated: %s", req.Start)
	}
}

func TestCancelFromAnyPhase(t *testing.T) {
	s := conversation.NewSession(hosts)
	s.Input("https://youtu.be/oxfbPqnuYac")
	s.Input("00:01:00")

	_, req := s.Input("cancel")
	if req != nil {
		t.Fatal("cancel must not emit a request")
	}
	if s.State() != conversation.StateCancelled {
		t.Fatalf("unexpected state: %s", s.State())
	}

	// A cancelled session accepts a fresh locator directly.
	_, req = s.Input("https://youtu.be/another")
	if req != nil {
		t.Fatal("unexpected request after new locator")
	}
	if s.State() != conversation.StateAwaitingStart {
		t.Fatalf("unexpected state: %s", s.State())
	}
}

func TestManagerIsolatesSessions(t *testing.T) {
	m := conversation.NewManager(hosts)

	greeting, req := m.Input("alice", "")
	if req != nil || greeting == "" {
		t.Fatal("expected greeting for fresh session")
	}

	m.Input("alice", "https://youtu.be/oxfbPqnuYac")
	m.Input("bob", "https://youtu.be/other")
	m.Input("alice", "00:00:10")
	m.Input("bob", "01:00:00")

	_, req = m.Input("alice", "00:00:20")
	if req == nil {
		t.Fatal("expected alice's request to complete")
	}
	if req.Locator != "https://youtu.be/oxfbPqnuYac" {
		t.Fatalf("sessions aliased state: %q", req.Locator)
	}

	_, req = m.Input("bob", "01:00:30")
	if req == nil {
		t.Fatal("expected bob's request to complete")
	}
	if req.Start.String() != "01:00:00" {
		t.Fatalf("bob's start was corrupted: %s", req.Start)
	}
}

func TestManagerRecyclesCompletedSession(t *testing.T) {
	m := conversation.NewManager(hosts)
	m.Input("alice", "https://youtu.be/oxfbPqnuYac")
	m.Input("alice", "00:00:10")
	if _, req := m.Input("alice", "00:00:20"); req == nil {
		t.Fatal("expected completion")
	}

	// The recycled session starts collecting a new locator immediately.
	reply, req := m.Input("alice", "not a url")
	if req != nil {
		t.Fatal("unexpected request")
	}
	if !strings.Contains(reply, "URL") {
		t.Fatalf("expected locator re-prompt, got %q", reply)
	}
}
