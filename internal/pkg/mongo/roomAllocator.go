package mongo

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/roomname"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoomAllocator creates room records in mongo db.
// Allocation is idempotent: while an application has a live room the same
// record is returned instead of minting a duplicate. The guarantee comes
// from the unique sparse index on activeKey, not from process locks -
// handlers may run in several instances
type RoomAllocator struct {
	SessionProvider *SessionProvider
	TTL             time.Duration
}

//NewRoomAllocator creates RoomAllocator instance
func NewRoomAllocator(sessionProvider *SessionProvider, ttl time.Duration) (*RoomAllocator, error) {
	if ttl <= 0 {
		return nil, errors.New("Wrong room TTL")
	}
	return &RoomAllocator{SessionProvider: sessionProvider, TTL: ttl}, nil
}

//Allocate returns the live room for the application, creating one when none exists.
//The bool result tells if a new record was created
func (ra *RoomAllocator) Allocate(applicationID, identity string) (*session.Room, bool, error) {
	applicationID = sanitize(applicationID)
	if err := ra.releaseStale(applicationID); err != nil {
		return nil, false, err
	}

	c, ctx, cancel, err := newColl(ra.SessionProvider, roomTable)
	if err != nil {
		return nil, false, err
	}
	defer cancel()

	now := time.Now()
	newRoom := session.Room{
		RoomName:      roomname.New(applicationID, now),
		ApplicationID: applicationID,
		ActiveKey:     applicationID,
		Identity:      identity,
		Status:        session.Name(session.Created),
		Reconciled:    true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ra.TTL),
	}

	var res session.Room
	err = c.FindOneAndUpdate(ctx,
		bson.M{"activeKey": applicationID},
		bson.M{"$setOnInsert": newRoom},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&res)
	if mongo.IsDuplicateKeyError(err) {
		// lost the upsert race - somebody else just created the room
		cmdapp.Log.Infof("Duplicate room insert for %s, reusing winner", applicationID)
		err = c.FindOne(ctx, bson.M{"activeKey": applicationID}).Decode(&res)
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "Can't allocate room")
	}
	return &res, res.RoomName == newRoom.RoomName, nil
}

//releaseStale ends expired rooms nobody ever joined, so they stop blocking
//new allocations. Abandoning a session before joining needs no explicit
//cancellation call
func (ra *RoomAllocator) releaseStale(applicationID string) error {
	c, ctx, cancel, err := newColl(ra.SessionProvider, roomTable)
	if err != nil {
		return err
	}
	defer cancel()

	info, err := c.UpdateMany(ctx,
		bson.M{"activeKey": applicationID, "status": session.Name(session.Created),
			"expiresAt": bson.M{"$lt": time.Now()}},
		bson.M{"$set": bson.M{"status": session.Name(session.Ended)}, "$unset": bson.M{"activeKey": ""}})
	if err != nil {
		return errors.Wrap(err, "Can't release stale rooms")
	}
	if info.ModifiedCount > 0 {
		cmdapp.Log.Infof("Released %d expired rooms for %s", info.ModifiedCount, applicationID)
	}
	return nil
}
