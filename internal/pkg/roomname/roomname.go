package roomname

import (
	"strconv"
	"strings"
	"time"

	"github.com/rolevate/roomgo/internal/pkg/err"
)

const prefix = "interview_"

//New builds a room name for the application.
//The name encodes the owning application and the creation moment, so a room
//can be traced back without a database lookup while staying unique across
//repeated interview attempts
func New(applicationID string, at time.Time) string {
	return prefix + applicationID + "_" + strconv.FormatInt(at.UnixMilli(), 10)
}

//Parse extracts the application ID and creation time from a room name
func Parse(roomName string) (string, time.Time, error) {
	if !strings.HasPrefix(roomName, prefix) {
		return "", time.Time{}, err.Validationf("'%s' is not a room name", roomName)
	}
	rest := roomName[len(prefix):]
	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", time.Time{}, err.Validationf("'%s' is not a room name", roomName)
	}
	ms, e := strconv.ParseInt(rest[i+1:], 10, 64)
	if e != nil {
		return "", time.Time{}, err.Validationf("'%s' has no creation time", roomName)
	}
	return rest[:i], time.UnixMilli(ms), nil
}
