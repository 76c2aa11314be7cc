package notify

import (
	"strings"

	"github.com/badoux/checkmail"
	"github.com/jordan-wright/email"
	"github.com/pkg/errors"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/session"
)

type simpleEmailMaker struct {
	subject string
	text    string
	from    string
}

func newSimpleEmailMaker() (*simpleEmailMaker, error) {
	r := simpleEmailMaker{}
	var err error
	r.subject, err = getStringNonNil("mail.sessionEnded.subject")
	if err != nil {
		return nil, err
	}
	r.text, err = getStringNonNil("mail.sessionEnded.text")
	if err != nil {
		return nil, err
	}
	r.from, err = getStringNonNil("smtp.username")
	return &r, err
}

//Make prepares the email copy of the post-session message
func (maker *simpleEmailMaker) Make(app *session.Application, roomName string) (*email.Email, error) {
	if err := checkmail.ValidateFormat(app.Email); err != nil {
		return nil, errors.Errorf("Wrong candidate email '%s'", app.Email)
	}
	r := email.NewEmail()
	r.Subject = maker.subject
	text := strings.Replace(maker.text, "{{NAME}}", candidateName(app), -1)
	text = strings.Replace(text, "{{ROOM}}", roomName, -1)
	r.Text = []byte(text)
	r.To = []string{app.Email}
	r.From = maker.from
	return r, nil
}

func getStringNonNil(key string) (string, error) {
	r := cmdapp.Config.GetString(key)
	if r == "" {
		return "", errors.New("No setting " + key)
	}
	return r, nil
}
