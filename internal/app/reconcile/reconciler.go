package reconcile

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/session"
)

//OpenRoomsProvider returns rooms in a non-terminal state
type OpenRoomsProvider interface {
	ListOpen() ([]session.Room, error)
}

//RoomClient asks the room server for the live room state
type RoomClient interface {
	GetRoom(roomName string) (*session.RemoteRoom, error)
}

//StatusChanger moves rooms through the lifecycle
type StatusChanger interface {
	Change(roomName string, to session.Status) (session.Status, bool, error)
	MarkReconciled(roomName string, reconciled bool) error
}

// Reconciler compares local room records with the room server and moves
// records forward when the server is ahead. A record the server cannot
// explain is only flagged, local state stays untouched
type Reconciler struct {
	rooms         OpenRoomsProvider
	client        RoomClient
	statusChanger StatusChanger
	sender        messages.Sender

	divergenceCounter prometheus.Counter
}

//NewReconciler creates Reconciler instance
func NewReconciler(rooms OpenRoomsProvider, client RoomClient, statusChanger StatusChanger,
	sender messages.Sender, divergenceCounter prometheus.Counter) (*Reconciler, error) {
	if rooms == nil || client == nil || statusChanger == nil || sender == nil {
		return nil, errors.New("Wrong reconciler init data")
	}
	return &Reconciler{rooms: rooms, client: client, statusChanger: statusChanger,
		sender: sender, divergenceCounter: divergenceCounter}, nil
}

//ReconcileAll walks all open rooms.
//One failing room does not stop the others
func (r *Reconciler) ReconcileAll() error {
	rooms, err := r.rooms.ListOpen()
	if err != nil {
		return errors.Wrap(err, "Can't list open rooms")
	}
	cmdapp.Log.Infof("Got %d open rooms to reconcile", len(rooms))
	for i := range rooms {
		if err := r.reconcile(&rooms[i]); err != nil {
			cmdapp.Log.Error(err)
		}
	}
	return nil
}

func (r *Reconciler) reconcile(room *session.Room) error {
	remote, err := r.client.GetRoom(room.RoomName)
	if err != nil {
		// can't tell what the server thinks, flag and move on
		r.markDiverged(room, err.Error())
		return nil
	}

	st := session.From(room.Status)
	switch {
	case remote.Exists && remote.NumParticipants > 0 && st == session.Created:
		// somebody is in the room but the record never saw the join
		return r.advance(room, session.Active, false)
	case remote.Exists && remote.NumParticipants == 0 && st == session.Active:
		// the room is drained, the session is over
		return r.advance(room, session.Ended, true)
	case !remote.Exists && st == session.Active:
		r.markDiverged(room, "room is gone on the server")
		return nil
	case !remote.Exists && st == session.Created && time.Now().After(room.ExpiresAt):
		// nobody ever joined, close quietly without a notification
		cmdapp.Log.Infof("Closing abandoned room %s", room.RoomName)
		_, changed, err := r.statusChanger.Change(room.RoomName, session.Ended)
		if err != nil {
			return errors.Wrapf(err, "Can't close room %s", room.RoomName)
		}
		if changed {
			cmdapp.LogIf(r.sender.Send(messages.NewSessionMsg(room.ApplicationID, room.RoomName),
				messages.StatusChanged, ""))
		}
		return nil
	}
	return r.statusChanger.MarkReconciled(room.RoomName, true)
}

//advance moves the room forward to the state the room server already reached
func (r *Reconciler) advance(room *session.Room, to session.Status, notify bool) error {
	cmdapp.Log.Infof("Moving room %s to %s after reconciliation", room.RoomName, session.Name(to))
	_, changed, err := r.statusChanger.Change(room.RoomName, to)
	if err != nil {
		return errors.Wrapf(err, "Can't change room %s status", room.RoomName)
	}
	if changed {
		if notify {
			msg := messages.NewSessionMsg(room.ApplicationID, room.RoomName)
			msg.Outcome = "COMPLETED"
			cmdapp.LogIf(r.sender.Send(msg, messages.SessionEnded, ""))
		}
		cmdapp.LogIf(r.sender.Send(messages.NewSessionMsg(room.ApplicationID, room.RoomName),
			messages.StatusChanged, ""))
	}
	return r.statusChanger.MarkReconciled(room.RoomName, true)
}

func (r *Reconciler) markDiverged(room *session.Room, reason string) {
	cmdapp.Log.Warnf("Room %s diverged: %s", room.RoomName, reason)
	if r.divergenceCounter != nil {
		r.divergenceCounter.Inc()
	}
	cmdapp.LogIf(r.statusChanger.MarkReconciled(room.RoomName, false))
}
