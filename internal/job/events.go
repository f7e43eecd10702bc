package job

// EventKind identifies the payload carried by an Event.
type EventKind int

const (
	// EventProgress carries Percent.
	EventProgress EventKind = iota
	// EventStatus carries Status, superseding the previous one.
	EventStatus
	// EventCancelRejected acknowledges a cancellation request made during warm-up.
	EventCancelRejected
	// EventCompleted is the last event of a run.
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventStatus:
		return "status"
	case EventCancelRejected:
		return "cancel-rejected"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is delivered in order, exactly once, on Handle.Events.
type Event struct {
	JobID   string
	Kind    EventKind
	Percent int
	Status  string

	// Set on EventCompleted only.
	Success bool
	Message string
	State   State
	Summary Summary
}
