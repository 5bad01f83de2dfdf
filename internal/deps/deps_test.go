package deps_test

import (
	"testing"

	"clipper/internal/config"
	"clipper/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "missing", Command: "definitely-not-on-path-7f3a"},
		{Name: "unconfigured", Command: "   "},
		{Name: "shell", Command: "sh"},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("missing binary reported available")
	}
	if statuses[1].Available || statuses[1].Detail != "command not configured" {
		t.Fatalf("unconfigured requirement mishandled: %+v", statuses[1])
	}
	if !statuses[2].Available {
		t.Fatalf("sh should be on the PATH: %+v", statuses[2])
	}
}

func TestRequirementsMarkProberOptional(t *testing.T) {
	cfg := config.Default()
	requirements := deps.Requirements(&cfg)
	if len(requirements) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(requirements))
	}
	for _, req := range requirements {
		optional := req.Name == "prober"
		if req.Optional != optional {
			t.Fatalf("optionality wrong for %q: %+v", req.Name, req)
		}
	}
}
