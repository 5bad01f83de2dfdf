package ipc

// SayRequest routes one line of user text into a conversation session.
type SayRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// SayResponse carries the conversational reply. RunID is set when the line
// completed a request and a pipeline run was launched.
type SayResponse struct {
	Reply string `json:"reply"`
	RunID string `json:"run_id"`
}

// CancelRequest discards a session's collected state.
type CancelRequest struct {
	SessionID string `json:"session_id"`
}

// CancelResponse reports whether a session existed to cancel.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// AwaitRequest waits for a run to reach a terminal status.
type AwaitRequest struct {
	RunID      string `json:"run_id"`
	WaitMillis int    `json:"wait_millis"`
}

// AwaitResponse reports a run's disposition. Done is false when the wait
// budget expired with the run still in flight; the caller should ask again.
type AwaitResponse struct {
	Done        bool   `json:"done"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Destination string `json:"destination"`
	SizeBytes   int64  `json:"size_bytes"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// RunSummary mirrors one registry row for status display.
type RunSummary struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Locator   string `json:"locator"`
	Window    string `json:"window"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// DependencyStatus describes availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail"`
}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	RegistryPath string             `json:"registry_path"`
	LockPath     string             `json:"lock_path"`
	SocketPath   string             `json:"socket_path"`
	Runs         []RunSummary       `json:"runs"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
