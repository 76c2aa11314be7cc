package notify

import (
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
)

type simpleEmailSender struct {
	sendPool *email.Pool
}

func newSimpleEmailSender() (*simpleEmailSender, error) {
	r := simpleEmailSender{}
	var err error
	r.sendPool, err = email.NewPool(cmdapp.Config.GetString("smtp.host")+":"+cmdapp.Config.GetString("smtp.port"), 1,
		smtp.PlainAuth("", cmdapp.Config.GetString("smtp.username"), cmdapp.Config.GetString("smtp.password"), cmdapp.Config.GetString("smtp.host")))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *simpleEmailSender) Send(email *email.Email) error {
	return s.sendPool.Send(email, 10*time.Second)
}
