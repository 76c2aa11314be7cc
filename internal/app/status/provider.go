package status

import (
	"github.com/rolevate/roomgo/internal/app/status/api"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/session"
)

// Provider provides session status for a room name
type Provider interface {
	Get(roomName string) (*api.SessionStatus, error)
}

//RoomRetriever reads local room records
type RoomRetriever interface {
	Get(roomName string) (*session.Room, error)
}

//RoomClient asks the room server for the live room state
type RoomClient interface {
	GetRoom(roomName string) (*session.RemoteRoom, error)
}

// StatusProvider combines the local record with the room server's answer.
// A divergence is only reported here, never corrected
type StatusProvider struct {
	Rooms  RoomRetriever
	Remote RoomClient
}

//NewStatusProvider creates StatusProvider instance
func NewStatusProvider(rooms RoomRetriever, remote RoomClient) (*StatusProvider, error) {
	return &StatusProvider{Rooms: rooms, Remote: remote}, nil
}

//Get returns the status pair for the room
func (p *StatusProvider) Get(roomName string) (*api.SessionStatus, error) {
	room, err := p.Rooms.Get(roomName)
	if err != nil {
		return nil, err
	}
	res := &api.SessionStatus{Local: api.LocalStatus{RoomName: room.RoomName, Status: room.Status,
		Used: room.Used, CreatedAt: room.CreatedAt, ExpiresAt: room.ExpiresAt}}

	remote, err := p.Remote.GetRoom(room.RoomName)
	if err != nil {
		// an unreachable room server leaves the pair unverified
		cmdapp.Log.Error(err)
		res.Reconciled = false
		return res, nil
	}
	res.Remote = &api.RemoteStatus{Exists: remote.Exists, NumParticipants: remote.NumParticipants}
	res.Reconciled = statesAgree(session.From(room.Status), remote)
	return res, nil
}

func statesAgree(st session.Status, remote *session.RemoteRoom) bool {
	switch st {
	case session.Active:
		return remote.Exists
	case session.Ended:
		return !remote.Exists || remote.NumParticipants == 0
	}
	return true
}
