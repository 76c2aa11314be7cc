package mongo

import (
	"github.com/pkg/errors"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoomProvider retrieves room records from mongo db
type RoomProvider struct {
	SessionProvider *SessionProvider
}

//NewRoomProvider creates RoomProvider instance
func NewRoomProvider(sessionProvider *SessionProvider) (*RoomProvider, error) {
	return &RoomProvider{SessionProvider: sessionProvider}, nil
}

//Get returns room by name
func (rp *RoomProvider) Get(roomName string) (*session.Room, error) {
	c, ctx, cancel, err := newColl(rp.SessionProvider, roomTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var res session.Room
	err = c.FindOne(ctx, bson.M{"roomName": sanitize(roomName)}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("No room %s", roomName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get room")
	}
	return &res, nil
}

//GetCurrent returns the most recently created room of the application
func (rp *RoomProvider) GetCurrent(applicationID string) (*session.Room, error) {
	c, ctx, cancel, err := newColl(rp.SessionProvider, roomTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var res session.Room
	err = c.FindOne(ctx, bson.M{"applicationID": sanitize(applicationID)},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("No room for application %s", applicationID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get room")
	}
	return &res, nil
}

//ListOpen returns rooms in CREATED or ACTIVE state for reconciliation
func (rp *RoomProvider) ListOpen() ([]session.Room, error) {
	c, ctx, cancel, err := newColl(rp.SessionProvider, roomTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cursor, err := c.Find(ctx, bson.M{"status": bson.M{
		"$in": []string{session.Name(session.Created), session.Name(session.Active)}}})
	if err != nil {
		return nil, errors.Wrap(err, "Can't select open rooms")
	}
	defer cursor.Close(ctx)
	var res []session.Room
	if err := cursor.All(ctx, &res); err != nil {
		return nil, errors.Wrap(err, "Can't read open rooms")
	}
	return res, nil
}
