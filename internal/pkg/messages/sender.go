package messages

// Sender sends a messages to message broker
type Sender interface {
	Send(message *SessionMsg, queue string, replyQueue string) error
}
