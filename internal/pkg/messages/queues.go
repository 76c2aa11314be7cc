package messages

const (
	// SessionEnded queue - a room reached the terminal state
	SessionEnded string = "SessionEnded"
	// StatusChanged queue - a room lifecycle state changed
	StatusChanged string = "StatusChanged"
)
