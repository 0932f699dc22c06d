package client

// Phase is the lifecycle state of one upload attempt.
type Phase int

const (
	// PhaseIdle means no upload has been started.
	PhaseIdle Phase = iota
	// PhaseUploading means a transfer is in flight.
	PhaseUploading
	// PhaseSucceeded is terminal for the attempt; the completion callback has fired.
	PhaseSucceeded
	// PhaseFailed is terminal for the attempt; the user must re-initiate to retry.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the current upload attempt, suitable for rendering
// a progress panel. BytesLoaded is non-decreasing until a terminal phase, and
// Progress is exactly 100 at PhaseSucceeded.
type Status struct {
	Phase       Phase
	Progress    int // 0–100
	BytesLoaded int64
	BytesTotal  int64
	Rate        float64 // instantaneous estimate, bytes per second
	Err         error   // set only when Phase is PhaseFailed
}
