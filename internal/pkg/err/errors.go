package err

import (
	"net/http"

	"github.com/pkg/errors"
)

const (
	// DefaultCode is a default service error code
	DefaultCode string = "SERVICE_ERROR"
	// NotFoundCode indicates missing application or room
	NotFoundCode string = "NOT_FOUND"
	// ValidationCode indicates malformed input
	ValidationCode string = "WRONG_INPUT"
	// ConfigurationCode indicates missing credentials or settings
	ConfigurationCode string = "NO_CONFIG"
	// NotificationCode indicates a failed post-session notification
	NotificationCode string = "NOTIFICATION_FAILED"
)

//ErrNotFound indicates no matching record
var ErrNotFound = errors.New("not found")

//ErrValidation indicates malformed input
var ErrValidation = errors.New("wrong input")

//ErrConfiguration indicates missing credentials or provider configuration.
//It must stop the process at startup, never be silently degraded
var ErrConfiguration = errors.New("wrong configuration")

//ErrExternalService indicates a failing room server or messaging provider
var ErrExternalService = errors.New("external service error")

//ErrNonRestorable indicates a permanent external failure - do not retry
var ErrNonRestorable = errors.New("non restorable error")

//NotFoundf creates a not found error with a message
func NotFoundf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

//Validationf creates a validation error with a message
func Validationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

//Code returns the wire error code for an error
func Code(e error) string {
	switch {
	case errors.Is(e, ErrNotFound):
		return NotFoundCode
	case errors.Is(e, ErrValidation):
		return ValidationCode
	case errors.Is(e, ErrConfiguration):
		return ConfigurationCode
	}
	return DefaultCode
}

//HTTPStatus maps an error to the response status
func HTTPStatus(e error) int {
	switch {
	case errors.Is(e, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(e, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
