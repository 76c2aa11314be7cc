package mongo

import (
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Locker acquires lock in db.
// It guarantees the post-session notification goes out once even when the
// terminal state is observed several times
type Locker struct {
	SessionProvider *SessionProvider
}

//NewLocker creates Locker instance
func NewLocker(sessionProvider *SessionProvider) (*Locker, error) {
	return &Locker{SessionProvider: sessionProvider}, nil
}

//Lock locks record for notification sending
func (ss *Locker) Lock(id string, lockKey string) error {
	cmdapp.Log.Infof("Locking %s: %s", id, lockKey)

	c, ctx, cancel, err := newColl(ss.SessionProvider, notifyLockTable)
	if err != nil {
		return err
	}
	defer cancel()

	// make sure we have the record
	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(id), "key": lockKey},
		bson.M{"$setOnInsert": bson.M{"status": 0}}, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "Can't init lock record")
	}

	var lockRecord bson.M
	err = c.FindOneAndUpdate(ctx, bson.M{"ID": sanitize(id), "key": lockKey, "status": 0},
		bson.M{"$set": bson.M{"status": 1}}).Decode(&lockRecord)
	if err == mongo.ErrNoDocuments {
		return errors.Errorf("Record is locked: %s(%s)", id, lockKey)
	}
	return errors.Wrap(err, "Can't lock record")
}

//UnLock marks record with specific value
func (ss *Locker) UnLock(id string, lockKey string, value *int) error {
	cmdapp.Log.Infof("Unlocking %s: %s", id, lockKey)

	c, ctx, cancel, err := newColl(ss.SessionProvider, notifyLockTable)
	if err != nil {
		return err
	}
	defer cancel()

	var lockRecord bson.M
	err = c.FindOneAndUpdate(ctx, bson.M{"ID": sanitize(id), "key": lockKey, "status": 1},
		bson.M{"$set": bson.M{"status": *value}}).Decode(&lockRecord)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	cmdapp.LogIf(err)
	return err
}
