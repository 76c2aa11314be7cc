package broker

import "github.com/rolevate/roomgo/internal/pkg/session"

//ApplicationRetriever finds the application a session belongs to
type ApplicationRetriever interface {
	Get(id string) (*session.Application, error)
	GetByJobAndPhone(jobID, phone string) (*session.Application, error)
}

//AppStatusUpdater moves the application status on scheduling events
type AppStatusUpdater interface {
	Update(id string, status string) error
}
