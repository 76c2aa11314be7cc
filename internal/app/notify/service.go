package notify

import (
	"encoding/json"

	"github.com/cenkalti/backoff"
	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"github.com/rolevate/roomgo/internal/pkg/utils"
	"github.com/rolevate/roomgo/internal/pkg/whatsapp"
)

const lockKey = "sessionEnded"

//TemplateSender sends a WhatsApp template message
type TemplateSender interface {
	Send(msg *whatsapp.TemplateMsg) (string, error)
}

//ContactRetriever returns the application with candidate contact data
type ContactRetriever interface {
	Get(id string) (*session.Application, error)
}

//EmailSender sends the email copy
type EmailSender interface {
	Send(email *email.Email) error
}

//EmailMaker prepares the email copy
type EmailMaker interface {
	Make(app *session.Application, roomName string) (*email.Email, error)
}

//Locker tracks the notification sending process.
//It is used to guarantee not to send the message twice
type Locker interface {
	Lock(id string, lockKey string) error
	UnLock(id string, lockKey string, value *int) error
}

type backoffProvider interface {
	Get() backoff.BackOff
}

// ServiceData keeps data required for service work
type ServiceData struct {
	workCh   <-chan amqp.Delivery
	contacts ContactRetriever
	sender   TemplateSender
	locker   Locker
	bp       backoffProvider

	// email copy is optional, both may be nil
	emailMaker  EmailMaker
	emailSender EmailSender

	template string
	language string

	fc *utils.MultiCloseChannel
}

//StartWorkerService starts the event queue listener service
func StartWorkerService(data *ServiceData) error {
	cmdapp.Log.Infof("Starting listen for messages")
	if data.contacts == nil {
		return errors.New("No contact retriever")
	}
	if data.sender == nil {
		return errors.New("No template sender")
	}
	if data.locker == nil {
		return errors.New("No locker")
	}
	if data.bp == nil {
		return errors.New("No backoff provider")
	}
	if data.template == "" {
		return errors.New("No template name")
	}
	if data.workCh == nil {
		return errors.New("No work channel")
	}
	if data.fc == nil {
		return errors.New("No close channel")
	}

	go listenQueue(data)
	return nil
}

func listenQueue(data *ServiceData) {
	for d := range data.workCh {
		redeliver, err := processMsg(&d, data)
		if err != nil {
			cmdapp.Log.Error("Message error. ", err)
			d.Nack(false, redeliver && !d.Redelivered) // try redeliver for the first time
			continue
		}
		d.Ack(false)
	}
	cmdapp.Log.Infof("Stopped listening queue")
	data.fc.Close()
}

//processMsg returns true if the message may be retried on error
func processMsg(d *amqp.Delivery, data *ServiceData) (bool, error) {
	var message messages.SessionMsg
	if err := json.Unmarshal(d.Body, &message); err != nil {
		return false, errors.Wrap(err, "Can't unmarshal message "+string(d.Body))
	}
	err := work(data, &message)
	if err != nil && errors.Is(err, apperr.ErrNonRestorable) {
		return false, err
	}
	return true, err
}

//work sends the post-session message for one session end event
func work(data *ServiceData, message *messages.SessionMsg) error {
	cmdapp.Log.Infof("Got session end for application %s, room %s", message.ID, message.Room)

	app, err := data.contacts.Get(message.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return errors.Wrap(apperr.ErrNonRestorable, err.Error())
		}
		return errors.Wrap(err, "Can't retrieve application")
	}

	err = data.locker.Lock(message.ID, lockKey)
	if err != nil {
		// another worker owns or already finished this notification
		cmdapp.Log.Infof("Skip notification for %s: %s", message.ID, err.Error())
		return nil
	}
	var unlockValue = 0
	defer data.locker.UnLock(message.ID, lockKey, &unlockValue)

	to := message.Phone
	if to == "" {
		to = app.Phone
	}
	msg := &whatsapp.TemplateMsg{To: to, Template: data.template,
		Language: data.language, Params: []string{candidateName(app)}}
	op := func() error {
		_, err := data.sender.Send(msg)
		if err != nil && errors.Is(err, apperr.ErrNonRestorable) {
			return backoff.Permanent(err)
		}
		return err
	}
	err = backoff.Retry(op, data.bp.Get())
	if err != nil {
		cmdapp.Log.Error(err)
		return errors.Wrap(err, "Can't send template message")
	}

	sendEmailCopy(data, app, message.Room)

	unlockValue = 2
	return nil
}

//sendEmailCopy sends the optional email copy, a failure never fails the task
func sendEmailCopy(data *ServiceData, app *session.Application, roomName string) {
	if data.emailMaker == nil || data.emailSender == nil || app.Email == "" {
		return
	}
	mail, err := data.emailMaker.Make(app, roomName)
	if err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can't prepare email copy"))
		return
	}
	if err := data.emailSender.Send(mail); err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can't send email copy"))
	}
}

func candidateName(app *session.Application) string {
	if app.FirstName != "" {
		return app.FirstName
	}
	return "Candidate"
}
