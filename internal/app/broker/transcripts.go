package broker

import "github.com/rolevate/roomgo/internal/pkg/session"

//TranscriptSaver stores interview utterances
type TranscriptSaver interface {
	Save(data *session.Utterance) error
}

//TranscriptRetriever returns the ordered transcript of an interview
type TranscriptRetriever interface {
	Get(interviewID string) ([]session.Utterance, error)
}
