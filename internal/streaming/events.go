package streaming

// EventType discriminates upload stream events.
type EventType string

const (
	// EventTypeTask is emitted each time an upload task settles.
	EventTypeTask EventType = "task"
	// EventTypeBatch is emitted when a whole batch finishes.
	EventTypeBatch EventType = "batch"
	// EventTypeError reports a non-task failure on the stream.
	EventTypeError EventType = "error"
)

// Event is one upload progress update pushed to connected clients.
type Event struct {
	Type      EventType `json:"type"`
	TaskID    string    `json:"taskId,omitempty"`
	File      string    `json:"file,omitempty"`
	Status    string    `json:"status,omitempty"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded,omitempty"`
	Failed    int       `json:"failed,omitempty"`
	Message   string    `json:"message,omitempty"`
}
