package api

import "time"

//LocalStatus is the broker's stored view of the session
type LocalStatus struct {
	RoomName  string    `json:"roomName"`
	Status    string    `json:"status"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

//RemoteStatus is the room server's view of the session
type RemoteStatus struct {
	Exists          bool `json:"exists"`
	NumParticipants int  `json:"numParticipants"`
}

//SessionStatus pairs the local session record with the room server's view.
//Remote is nil when the room server could not be reached
type SessionStatus struct {
	Local      LocalStatus   `json:"local"`
	Remote     *RemoteStatus `json:"remote,omitempty"`
	Reconciled bool          `json:"reconciled"`
}
