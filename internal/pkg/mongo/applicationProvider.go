package mongo

import (
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationProvider retrieves applications from mongo db
type ApplicationProvider struct {
	SessionProvider *SessionProvider
}

//NewApplicationProvider creates ApplicationProvider instance
func NewApplicationProvider(sessionProvider *SessionProvider) (*ApplicationProvider, error) {
	return &ApplicationProvider{SessionProvider: sessionProvider}, nil
}

//Get returns application by ID
func (ap *ApplicationProvider) Get(id string) (*session.Application, error) {
	c, ctx, cancel, err := newColl(ap.SessionProvider, applicationTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var res session.Application
	err = c.FindOne(ctx, bson.M{"ID": sanitize(id)}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFoundf("No application with ID %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get application")
	}
	return &res, nil
}

//GetByJobAndPhone returns application by jobID and an exact normalized phone.
//No substring or suffix matching here - a partial match can pick the wrong candidate
func (ap *ApplicationProvider) GetByJobAndPhone(jobID, phone string) (*session.Application, error) {
	cmdapp.Log.Infof("Looking for application: job %s", jobID)

	c, ctx, cancel, err := newColl(ap.SessionProvider, applicationTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var res session.Application
	err = c.FindOne(ctx, bson.M{"jobID": sanitize(jobID), "phone": sanitize(phone)}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ap.notFoundError(jobID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't get application")
	}
	return &res, nil
}

//notFoundError makes the miss diagnosable: an unknown job and a candidate
//that never applied are different client-side problems
func (ap *ApplicationProvider) notFoundError(jobID string) error {
	c, ctx, cancel, err := newColl(ap.SessionProvider, applicationTable)
	if err != nil {
		return err
	}
	defer cancel()

	n, err := c.CountDocuments(ctx, bson.M{"jobID": sanitize(jobID)})
	if err != nil {
		cmdapp.LogIf(err)
		return apperr.NotFoundf("No application found for this job and phone number")
	}
	if n == 0 {
		return apperr.NotFoundf("No job with ID %s", jobID)
	}
	return apperr.NotFoundf("No application found for this job and phone number")
}

// ApplicationStatusUpdater moves the application status on scheduling events
type ApplicationStatusUpdater struct {
	SessionProvider *SessionProvider
}

//NewApplicationStatusUpdater creates ApplicationStatusUpdater instance
func NewApplicationStatusUpdater(sessionProvider *SessionProvider) (*ApplicationStatusUpdater, error) {
	return &ApplicationStatusUpdater{SessionProvider: sessionProvider}, nil
}

//Update sets the application status
func (au *ApplicationStatusUpdater) Update(id string, status string) error {
	cmdapp.Log.Infof("Saving application status %s: %s", id, status)

	c, ctx, cancel, err := newColl(au.SessionProvider, applicationTable)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = c.UpdateOne(ctx, bson.M{"ID": sanitize(id)}, bson.M{"$set": bson.M{"status": status}})
	return errors.Wrap(err, "Can't update application status")
}
