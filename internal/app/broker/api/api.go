package api

import "time"

//CreateRequest - start interview session input
type CreateRequest struct {
	JobID     string `json:"jobId"`
	Phone     string `json:"phone"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

//JoinRequest - join session input, at least one identifier is required
type JoinRequest struct {
	InterviewID string `json:"interviewId,omitempty"`
	RoomName    string `json:"roomName,omitempty"`
	JobID       string `json:"jobId,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

//LeaveRequest - leave session input
type LeaveRequest struct {
	CandidateID string `json:"candidateId"`
	RoomName    string `json:"roomName"`
}

//SessionResult - session create/join response
type SessionResult struct {
	RoomName string `json:"roomName"`
	Token    string `json:"token"`
}

//LeaveResult - leave session response
type LeaveResult struct {
	Acknowledged bool `json:"acknowledged"`
}

//UtteranceIn - one transcript row input
type UtteranceIn struct {
	InterviewID    string    `json:"interviewId"`
	Speaker        string    `json:"speaker"`
	Content        string    `json:"content"`
	Confidence     float64   `json:"confidence"`
	SequenceNumber int64     `json:"sequenceNumber"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

//UtteranceOut - one transcript row in responses
type UtteranceOut struct {
	Speaker        string    `json:"speaker"`
	Content        string    `json:"content"`
	Confidence     float64   `json:"confidence"`
	SequenceNumber int64     `json:"sequenceNumber"`
	Timestamp      time.Time `json:"timestamp"`
}

//TranscriptResult - ordered transcript response
type TranscriptResult struct {
	InterviewID string         `json:"interviewId"`
	Utterances  []UtteranceOut `json:"utterances"`
}
