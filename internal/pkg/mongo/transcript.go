package mongo

import (
	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TranscriptSaver stores interview utterances in mongo db
type TranscriptSaver struct {
	SessionProvider *SessionProvider
}

//NewTranscriptSaver creates TranscriptSaver instance
func NewTranscriptSaver(sessionProvider *SessionProvider) (*TranscriptSaver, error) {
	return &TranscriptSaver{SessionProvider: sessionProvider}, nil
}

//Save upserts the utterance keyed by (interviewID, sequenceNumber).
//A retried delivery of the same utterance collapses into one row
func (ts *TranscriptSaver) Save(data *session.Utterance) error {
	cmdapp.Log.Debugf("Saving utterance %s:%d", data.InterviewID, data.SequenceNumber)

	c, ctx, cancel, err := newColl(ts.SessionProvider, transcriptTable)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = c.ReplaceOne(ctx,
		bson.M{"interviewID": sanitize(data.InterviewID), "sequenceNumber": data.SequenceNumber},
		data, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "Can't save utterance")
}

// TranscriptProvider returns ordered interview transcripts from mongo db
type TranscriptProvider struct {
	SessionProvider *SessionProvider
}

//NewTranscriptProvider creates TranscriptProvider instance
func NewTranscriptProvider(sessionProvider *SessionProvider) (*TranscriptProvider, error) {
	return &TranscriptProvider{SessionProvider: sessionProvider}, nil
}

//Get returns utterances ordered by sequence number.
//Arrival and write order play no part here
func (tp *TranscriptProvider) Get(interviewID string) ([]session.Utterance, error) {
	c, ctx, cancel, err := newColl(tp.SessionProvider, transcriptTable)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cursor, err := c.Find(ctx, bson.M{"interviewID": sanitize(interviewID)},
		options.Find().SetSort(bson.D{{Key: "sequenceNumber", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "Can't select transcript")
	}
	defer cursor.Close(ctx)
	res := make([]session.Utterance, 0)
	if err := cursor.All(ctx, &res); err != nil {
		return nil, errors.Wrap(err, "Can't read transcript")
	}
	return res, nil
}
