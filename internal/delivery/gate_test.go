package delivery_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/delivery"
	"clipper/internal/logging"
	"clipper/internal/services"
)

type recordingTransport struct {
	delivered []string
	captions  []string
	err       error
}

func (r *recordingTransport) Deliver(ctx context.Context, path, caption string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.delivered = append(r.delivered, path)
	r.captions = append(r.captions, caption)
	return "sent:" + filepath.Base(path), nil
}

func writeClip(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip_ab_00-00-01_00-00-30.mp4")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFittingClipIsDeliveredAndSourceRemoved(t *testing.T) {
	path := writeClip(t, 100)
	transport := &recordingTransport{}
	gate := delivery.NewGate(transport, 1024, 4096, logging.NewNop())

	got, err := gate.Send(context.Background(), path, "Segment 00:00:01-00:00:30")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got.Destination != "sent:clip_ab_00-00-01_00-00-30.mp4" {
		t.Fatalf("unexpected destination: %q", got.Destination)
	}
	if got.Size != 100 {
		t.Fatalf("unexpected size: %d", got.Size)
	}
	if got.Mode != delivery.ModeCompact {
		t.Fatalf("clip under the compact ceiling must use compact mode, got %q", got.Mode)
	}
	if len(transport.captions) != 1 || transport.captions[0] != "Segment 00:00:01-00:00:30" {
		t.Fatalf("caption not forwarded: %v", transport.captions)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("source must be deleted after delivery")
	}
}

func TestMidBandClipIsDeliveredInBulkMode(t *testing.T) {
	// 60 units against 50/2000 ceilings: over compact, well under max.
	path := writeClip(t, 60)
	transport := &recordingTransport{}
	gate := delivery.NewGate(transport, 50, 2000, logging.NewNop())

	got, err := gate.Send(context.Background(), path, "caption")
	if err != nil {
		t.Fatalf("mid-band clip must be delivered, got %v", err)
	}
	if got.Mode != delivery.ModeBulk {
		t.Fatalf("expected bulk mode, got %q", got.Mode)
	}
	if len(transport.delivered) != 1 {
		t.Fatal("mid-band clip must reach the transport")
	}
}

func TestClipAboveAbsoluteCeilingIsRejectedAndStillDeleted(t *testing.T) {
	path := writeClip(t, 2500)
	transport := &recordingTransport{}
	gate := delivery.NewGate(transport, 50, 2000, logging.NewNop())

	_, err := gate.Send(context.Background(), path, "caption")
	if !errors.Is(err, services.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "2500 B") || !strings.Contains(err.Error(), "2000 B") {
		t.Fatalf("measured size and ceiling missing from message: %v", err)
	}
	if len(transport.delivered) != 0 {
		t.Fatal("oversize clip must never reach the transport")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("rejected clip must still be deleted")
	}
}

func TestTransportFailureIsClassifiedAndSourceRemoved(t *testing.T) {
	path := writeClip(t, 100)
	transport := &recordingTransport{err: errors.New("connection reset")}
	gate := delivery.NewGate(transport, 1024, 4096, logging.NewNop())

	_, err := gate.Send(context.Background(), path, "caption")
	if !errors.Is(err, services.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("source must be deleted even when the transport fails")
	}
}

func TestDirTransportCopiesIntoDestination(t *testing.T) {
	path := writeClip(t, 64)
	dest := filepath.Join(t.TempDir(), "delivered")
	transport := delivery.DirTransport{Dir: dest}
	gate := delivery.NewGate(transport, 0, 0, logging.NewNop())

	got, err := gate.Send(context.Background(), path, "caption")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	info, err := os.Stat(got.Destination)
	if err != nil {
		t.Fatalf("delivered file missing: %v", err)
	}
	if info.Size() != 64 {
		t.Fatalf("delivered size wrong: %d", info.Size())
	}
}
