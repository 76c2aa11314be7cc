package broker

import (
	"time"

	"github.com/rolevate/roomgo/internal/pkg/session"
)

//RoomAllocator returns the live room of an application, creating one when needed
type RoomAllocator interface {
	Allocate(applicationID, identity string) (*session.Room, bool, error)
}

//RoomRetriever reads room records
type RoomRetriever interface {
	Get(roomName string) (*session.Room, error)
	GetCurrent(applicationID string) (*session.Room, error)
}

//StatusChanger moves a room through its lifecycle
type StatusChanger interface {
	Change(roomName string, to session.Status) (session.Status, bool, error)
	MarkUsed(roomName string) error
}

//TokenIssuer mints room join grants
type TokenIssuer interface {
	Issue(roomName, identity string, ttl time.Duration) (string, error)
}
