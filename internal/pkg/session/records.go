package session

import "time"

//Application represents a candidate's application to a job posting
type Application struct {
	ID                string  `bson:"ID"`
	JobID             string  `bson:"jobID"`
	CandidateID       string  `bson:"candidateID"`
	Phone             string  `bson:"phone"`
	Email             string  `bson:"email,omitempty"`
	Status            string  `bson:"status"`
	InterviewLanguage string  `bson:"interviewLanguage,omitempty"`
	CvScore           float64 `bson:"cvScore,omitempty"`
	FirstName         string  `bson:"firstName,omitempty"`
	LastName          string  `bson:"lastName,omitempty"`
}

//Application status values touched by the broker
const (
	AppStatusPending            = "PENDING"
	AppStatusAnalyzed           = "ANALYZED"
	AppStatusInterviewScheduled = "INTERVIEW_SCHEDULED"
)

//Room is one interview attempt for an application.
//The current room is the most recently created one
type Room struct {
	RoomName      string    `bson:"roomName"`
	RoomSid       string    `bson:"roomSid,omitempty"`
	ApplicationID string    `bson:"applicationID"`
	// ActiveKey equals ApplicationID while the room is live.
	// A unique sparse index on it keeps at most one live room per application
	ActiveKey     string    `bson:"activeKey,omitempty"`
	Identity      string    `bson:"identity"`
	Status        string    `bson:"status"`
	Used          bool      `bson:"used"`
	Reconciled    bool      `bson:"reconciled"`
	CreatedAt     time.Time `bson:"createdAt"`
	ExpiresAt     time.Time `bson:"expiresAt"`
}

//Utterance is one transcript row.
//SequenceNumber, not arrival time, orders the transcript
type Utterance struct {
	ID             string    `bson:"ID"`
	InterviewID    string    `bson:"interviewID"`
	Speaker        string    `bson:"speaker"`
	Content        string    `bson:"content"`
	Confidence     float64   `bson:"confidence"`
	SequenceNumber int64     `bson:"sequenceNumber"`
	At             time.Time `bson:"at"`
}

//RemoteRoom is the room server's view of a room
type RemoteRoom struct {
	Exists          bool `json:"exists"`
	NumParticipants int  `json:"numParticipants"`
}
