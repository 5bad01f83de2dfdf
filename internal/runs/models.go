package runs

import "time"

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusTranscoding Status = "transcoding"
	StatusDelivering  Status = "delivering"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Terminal reports whether a run in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Run is one in-flight or just-finished request. Rows exist only while the
// daemon is working on them or holding a result for pickup; consuming the
// result removes the row.
type Run struct {
	ID          string
	SessionID   string
	Locator     string
	Start       string
	End         string
	Status      Status
	Message     string
	Destination string
	SizeBytes   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
