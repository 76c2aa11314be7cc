package mongo

import (
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusChanger moves rooms through the lifecycle in mongo db.
// Transitions are applied with a guarded atomic update, so a delayed or
// duplicated signal can't push a room backwards
type StatusChanger struct {
	SessionProvider *SessionProvider
}

//NewStatusChanger creates StatusChanger instance
func NewStatusChanger(sessionProvider *SessionProvider) (*StatusChanger, error) {
	return &StatusChanger{SessionProvider: sessionProvider}, nil
}

//Change tries to move the room to the wanted status.
//Returns the status seen before the call and whether the record changed.
//An already terminal room reports changed == false - the caller uses that
//to fire end-of-session effects exactly once
func (sc *StatusChanger) Change(roomName string, to session.Status) (session.Status, bool, error) {
	cmdapp.Log.Infof("Changing room %s status to %s", roomName, session.Name(to))

	c, ctx, cancel, err := newColl(sc.SessionProvider, roomTable)
	if err != nil {
		return 0, false, err
	}
	defer cancel()

	from := []string{session.Name(session.Created), session.Name(session.Active)}
	update := bson.M{"$set": bson.M{"status": session.Name(to)}}
	if to == session.Ended {
		update["$unset"] = bson.M{"activeKey": ""}
	}

	var prev session.Room
	err = c.FindOneAndUpdate(ctx,
		bson.M{"roomName": sanitize(roomName), "status": bson.M{"$in": from}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&prev)
	if err == mongo.ErrNoDocuments {
		// no open room matched - gone or already terminal
		var cur session.Room
		err = c.FindOne(ctx, bson.M{"roomName": sanitize(roomName)}).Decode(&cur)
		if err == mongo.ErrNoDocuments {
			return 0, false, apperr.NotFoundf("No room %s", roomName)
		}
		if err != nil {
			return 0, false, errors.Wrap(err, "Can't get room")
		}
		return session.From(cur.Status), false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "Can't change room status")
	}
	return session.From(prev.Status), true, nil
}

//MarkUsed redeems the single-use room credential.
//A second redeem attempt fails
func (sc *StatusChanger) MarkUsed(roomName string) error {
	c, ctx, cancel, err := newColl(sc.SessionProvider, roomTable)
	if err != nil {
		return err
	}
	defer cancel()

	var res session.Room
	err = c.FindOneAndUpdate(ctx,
		bson.M{"roomName": sanitize(roomName), "used": false},
		bson.M{"$set": bson.M{"used": true}}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return apperr.Validationf("Room credential for %s was already used", roomName)
	}
	return errors.Wrap(err, "Can't mark room credential used")
}

//MarkReconciled records the agreement between the local record and the room server
func (sc *StatusChanger) MarkReconciled(roomName string, reconciled bool) error {
	c, ctx, cancel, err := newColl(sc.SessionProvider, roomTable)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = c.UpdateOne(ctx, bson.M{"roomName": sanitize(roomName)},
		bson.M{"$set": bson.M{"reconciled": reconciled}})
	return errors.Wrap(err, "Can't mark room reconciled")
}

//SetRoomSid stores the id the room server assigned
func (sc *StatusChanger) SetRoomSid(roomName, sid string) error {
	c, ctx, cancel, err := newColl(sc.SessionProvider, roomTable)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = c.UpdateOne(ctx, bson.M{"roomName": sanitize(roomName)},
		bson.M{"$set": bson.M{"roomSid": sid}})
	return errors.Wrap(err, "Can't save room sid")
}
