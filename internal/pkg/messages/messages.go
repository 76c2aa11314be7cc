package messages

//SessionMsg is a session event going through the broker queue.
//Phone carries the notification recipient so consumers can skip the lookup
type SessionMsg struct {
	ID      string `json:"id"`
	Room    string `json:"room,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

//NewSessionMsg creates the message for application id and room
func NewSessionMsg(id string, room string) *SessionMsg {
	return &SessionMsg{ID: id, Room: room}
}
