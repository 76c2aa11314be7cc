package broker

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/rolevate/roomgo/internal/app/broker/api"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/phone"
	"github.com/rolevate/roomgo/internal/pkg/session"

	"github.com/badoux/checkmail"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heptiolabs/healthcheck"
)

type serviceMetric struct {
	createResponseDur prometheus.ObserverVec
	createRequestSize prometheus.ObserverVec

	joinResponseDur       prometheus.ObserverVec
	leaveResponseDur      prometheus.ObserverVec
	transcriptResponseDur prometheus.ObserverVec
}

// ServiceData keeps data required for service work
type ServiceData struct {
	Applications     ApplicationRetriever
	AppStatusUpdater AppStatusUpdater
	RoomAllocator    RoomAllocator
	Rooms            RoomRetriever
	StatusChanger    StatusChanger
	TokenIssuer      TokenIssuer
	TranscriptSaver  TranscriptSaver
	Transcripts      TranscriptRetriever
	MessageSender    messages.Sender

	DefaultCountryCode string

	Port    int
	health  healthcheck.Handler
	metrics serviceMetric
}

//StartWebServer starts the HTTP service and listens for the requests
func StartWebServer(data *ServiceData) error {
	cmdapp.Log.Infof("Starting HTTP service at %d", data.Port)
	r := NewRouter(data)

	portStr := strconv.Itoa(data.Port)
	srv := http.Server{
		Addr:              ":" + portStr,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		Handler:           r,
	}

	w := cmdapp.Log.Writer()
	defer w.Close()
	l := log.New(w, "", 0)
	gracehttp.SetLogger(l)

	return gracehttp.Serve(&srv)
}

//NewRouter creates the router for HTTP service
func NewRouter(data *ServiceData) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	ch := promhttp.InstrumentHandlerDuration(data.metrics.createResponseDur,
		promhttp.InstrumentHandlerRequestSize(data.metrics.createRequestSize, createHandler{data: data}))
	jh := promhttp.InstrumentHandlerDuration(data.metrics.joinResponseDur, joinHandler{data: data})
	lh := promhttp.InstrumentHandlerDuration(data.metrics.leaveResponseDur, leaveHandler{data: data})
	tsh := promhttp.InstrumentHandlerDuration(data.metrics.transcriptResponseDur, transcriptSaveHandler{data: data})
	tgh := promhttp.InstrumentHandlerDuration(data.metrics.transcriptResponseDur, transcriptGetHandler{data: data})
	router.Methods("POST").Path("/session").Handler(ch)
	router.Methods("POST").Path("/session/join").Handler(jh)
	router.Methods("POST").Path("/session/leave").Handler(lh)
	router.Methods("POST").Path("/transcript").Handler(tsh)
	router.Methods("GET").Path("/transcript/{interviewId}").Handler(tgh)
	router.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	router.Methods("GET").Path("/live").HandlerFunc(data.health.LiveEndpoint)
	router.Methods("GET").Path("/ready").HandlerFunc(data.health.ReadyEndpoint)
	return router
}

type createHandler struct {
	data *ServiceData
}

func (h createHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Session create request from %s", r.Host)

	var req api.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Can't decode request", http.StatusBadRequest)
		cmdapp.Log.Error(errors.Wrap(err, "Can't decode request"))
		return
	}
	if req.JobID == "" {
		http.Error(w, "No jobId", http.StatusBadRequest)
		cmdapp.Log.Errorf("No jobId")
		return
	}
	normPhone, err := phone.Normalize(req.Phone, h.data.DefaultCountryCode)
	if err != nil {
		http.Error(w, "Wrong phone number", http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	if req.Email != "" {
		if err := checkmail.ValidateFormat(req.Email); err != nil {
			http.Error(w, "Wrong email", http.StatusBadRequest)
			cmdapp.Log.Errorf("Wrong email")
			return
		}
	}

	app, err := h.data.Applications.GetByJobAndPhone(req.JobID, normPhone)
	if err != nil {
		setError(w, err, "Can't get application")
		return
	}
	cmdapp.Log.Infof("Found application %s", app.ID)

	room, created, err := h.data.RoomAllocator.Allocate(app.ID, identityFor(app.CandidateID))
	if err != nil {
		http.Error(w, "Can't allocate room", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	if created {
		// the status label is advisory, a failed update must not lose the room
		cmdapp.LogIf(h.data.AppStatusUpdater.Update(app.ID, session.AppStatusInterviewScheduled))
		cmdapp.LogIf(h.data.MessageSender.Send(messages.NewSessionMsg(app.ID, room.RoomName),
			messages.StatusChanged, ""))
	}

	token, err := h.data.TokenIssuer.Issue(room.RoomName, room.Identity, time.Until(room.ExpiresAt))
	if err != nil {
		http.Error(w, "Can't issue token", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	writeJSON(w, &api.SessionResult{RoomName: room.RoomName, Token: token})
}

type joinHandler struct {
	data *ServiceData
}

func (h joinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Session join request from %s", r.Host)

	var req api.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Can't decode request", http.StatusBadRequest)
		cmdapp.Log.Error(errors.Wrap(err, "Can't decode request"))
		return
	}

	room, err := h.resolveRoom(&req)
	if err != nil {
		setError(w, err, "Can't get session")
		return
	}
	if session.From(room.Status) == session.Ended {
		http.Error(w, "Interview session has ended", http.StatusBadRequest)
		cmdapp.Log.Errorf("Join of ended room %s", room.RoomName)
		return
	}
	if time.Now().After(room.ExpiresAt) {
		http.Error(w, "Interview session has expired", http.StatusBadRequest)
		cmdapp.Log.Errorf("Join of expired room %s", room.RoomName)
		return
	}

	if err := h.data.StatusChanger.MarkUsed(room.RoomName); err != nil {
		// a redeemed credential is fine when the same session is still live,
		// the participant is rejoining after a drop
		if !(errors.Is(err, apperr.ErrValidation) && session.From(room.Status) == session.Active) {
			setError(w, err, "Can't join session")
			return
		}
		cmdapp.Log.Infof("Rejoin of active room %s", room.RoomName)
	}

	_, changed, err := h.data.StatusChanger.Change(room.RoomName, session.Active)
	if err != nil {
		setError(w, err, "Can't activate session")
		return
	}
	if changed {
		cmdapp.LogIf(h.data.MessageSender.Send(messages.NewSessionMsg(room.ApplicationID, room.RoomName),
			messages.StatusChanged, ""))
	}

	token, err := h.data.TokenIssuer.Issue(room.RoomName, room.Identity, time.Until(room.ExpiresAt))
	if err != nil {
		http.Error(w, "Can't issue token", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}

	writeJSON(w, &api.SessionResult{RoomName: room.RoomName, Token: token})
}

func (h joinHandler) resolveRoom(req *api.JoinRequest) (*session.Room, error) {
	if req.RoomName != "" {
		return h.data.Rooms.Get(req.RoomName)
	}
	if req.InterviewID != "" {
		return h.data.Rooms.Get(req.InterviewID)
	}
	if req.JobID != "" && req.Phone != "" {
		normPhone, err := phone.Normalize(req.Phone, h.data.DefaultCountryCode)
		if err != nil {
			return nil, err
		}
		app, err := h.data.Applications.GetByJobAndPhone(req.JobID, normPhone)
		if err != nil {
			return nil, err
		}
		return h.data.Rooms.GetCurrent(app.ID)
	}
	return nil, apperr.Validationf("No session identifier")
}

type leaveHandler struct {
	data *ServiceData
}

func (h leaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("Session leave request from %s", r.Host)

	var req api.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Can't decode request", http.StatusBadRequest)
		cmdapp.Log.Error(errors.Wrap(err, "Can't decode request"))
		return
	}
	if req.CandidateID == "" {
		http.Error(w, "No candidateId", http.StatusBadRequest)
		cmdapp.Log.Errorf("No candidateId")
		return
	}
	if req.RoomName == "" {
		http.Error(w, "No roomName", http.StatusBadRequest)
		cmdapp.Log.Errorf("No roomName")
		return
	}

	room, err := h.data.Rooms.Get(req.RoomName)
	if err != nil {
		setError(w, err, "Can't get session")
		return
	}
	if room.Identity != identityFor(req.CandidateID) {
		http.Error(w, "Wrong candidate for this session", http.StatusBadRequest)
		cmdapp.Log.Errorf("Candidate %s does not own room %s", req.CandidateID, room.RoomName)
		return
	}

	prev, changed, err := h.data.StatusChanger.Change(room.RoomName, session.Ended)
	if err != nil {
		setError(w, err, "Can't end session")
		return
	}
	if changed {
		msg := messages.NewSessionMsg(room.ApplicationID, room.RoomName)
		msg.Outcome = outcomeFor(prev)
		if app, err := h.data.Applications.Get(room.ApplicationID); err == nil {
			msg.Phone = app.Phone
		} else {
			// the notifier falls back to its own lookup
			cmdapp.Log.Error(err)
		}
		if err := h.data.MessageSender.Send(msg, messages.SessionEnded, ""); err != nil {
			http.Error(w, "Can't send session ended message", http.StatusInternalServerError)
			cmdapp.Log.Error(err)
			return
		}
		cmdapp.LogIf(h.data.MessageSender.Send(messages.NewSessionMsg(room.ApplicationID, room.RoomName),
			messages.StatusChanged, ""))
	}

	writeJSON(w, &api.LeaveResult{Acknowledged: true})
}

type transcriptSaveHandler struct {
	data *ServiceData
}

func (h transcriptSaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.UtteranceIn
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Can't decode request", http.StatusBadRequest)
		cmdapp.Log.Error(errors.Wrap(err, "Can't decode request"))
		return
	}
	if err := validateUtterance(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		cmdapp.Log.Error(err)
		return
	}
	at := req.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	data := &session.Utterance{ID: uuid.New().String(), InterviewID: req.InterviewID,
		Speaker: req.Speaker, Content: req.Content, Confidence: req.Confidence,
		SequenceNumber: req.SequenceNumber, At: at}
	if err := h.data.TranscriptSaver.Save(data); err != nil {
		http.Error(w, "Can not save utterance", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
		return
	}
	writeJSON(w, &struct {
		ID string `json:"id"`
	}{data.ID})
}

func validateUtterance(req *api.UtteranceIn) error {
	if req.InterviewID == "" {
		return errors.New("No interviewId")
	}
	if req.Speaker == "" {
		return errors.New("No speaker")
	}
	if req.Content == "" {
		return errors.New("No content")
	}
	if req.SequenceNumber < 0 {
		return errors.Errorf("Wrong sequenceNumber %d", req.SequenceNumber)
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return errors.Errorf("Wrong confidence %.2f", req.Confidence)
	}
	return nil
}

type transcriptGetHandler struct {
	data *ServiceData
}

func (h transcriptGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	interviewID := mux.Vars(r)["interviewId"]
	cmdapp.Log.Infof("Transcript request for %s", interviewID)

	utterances, err := h.data.Transcripts.Get(interviewID)
	if err != nil {
		setError(w, err, "Can not get transcript")
		return
	}
	res := api.TranscriptResult{InterviewID: interviewID, Utterances: make([]api.UtteranceOut, 0, len(utterances))}
	for _, u := range utterances {
		res.Utterances = append(res.Utterances, api.UtteranceOut{Speaker: u.Speaker, Content: u.Content,
			Confidence: u.Confidence, SequenceNumber: u.SequenceNumber, Timestamp: u.At})
	}
	writeJSON(w, &res)
}

func identityFor(candidateID string) string {
	return "candidate_" + candidateID
}

func outcomeFor(prev session.Status) string {
	if prev == session.Active {
		return "COMPLETED"
	}
	return "ABANDONED"
}

func setError(w http.ResponseWriter, err error, fallback string) {
	code := apperr.HTTPStatus(err)
	msg := fallback
	if code == http.StatusBadRequest || code == http.StatusNotFound {
		msg = err.Error()
	}
	http.Error(w, msg, code)
	cmdapp.Log.Error(err)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(data); err != nil {
		http.Error(w, "Can not prepare result", http.StatusInternalServerError)
		cmdapp.Log.Error(err)
	}
}
