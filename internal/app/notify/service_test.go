package notify

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	. "github.com/smartystreets/goconvey/convey"

	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/rolevate/roomgo/internal/pkg/session"
	"github.com/rolevate/roomgo/internal/pkg/test/mocks"
	"github.com/rolevate/roomgo/internal/pkg/utils"
	"github.com/rolevate/roomgo/internal/pkg/whatsapp"
)

var contactsMock *mocks.ApplicationProvider
var lockerMock *mocks.Locker
var senderMock *mocks.TemplateSender

type retryBackOffProvider struct{}

func (bp *retryBackOffProvider) Get() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(0), 3)
}

func initTestData() *ServiceData {
	contactsMock = &mocks.ApplicationProvider{}
	lockerMock = &mocks.Locker{}
	senderMock = &mocks.TemplateSender{}
	return &ServiceData{contacts: contactsMock, locker: lockerMock, sender: senderMock,
		bp: &retryBackOffProvider{}, template: "interview_thank_you", language: "en",
		fc: utils.NewMultiCloseChannel()}
}

func testAppRecord() *session.Application {
	return &session.Application{ID: "app1", JobID: "job1", CandidateID: "cand1",
		Phone: "+962796026659", FirstName: "Lina"}
}

func testMsg() *messages.SessionMsg {
	return &messages.SessionMsg{ID: "app1", Room: "r1", Outcome: "COMPLETED"}
}

func TestWork(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	err := work(data, testMsg())
	assert.Nil(t, err)
	senderMock.AssertNumberOfCalls(t, "Send", 1)

	msg := senderMock.Calls[0].Arguments.Get(0).(*whatsapp.TemplateMsg)
	assert.Equal(t, "+962796026659", msg.To)
	assert.Equal(t, "interview_thank_you", msg.Template)
	assert.Equal(t, []string{"Lina"}, msg.Params)

	value := lockerMock.Calls[1].Arguments.Get(2).(*int)
	assert.Equal(t, 2, *value)
}

func TestWork_PhoneFromMessage(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	m := testMsg()
	m.Phone = "+962790000001"
	err := work(data, m)
	assert.Nil(t, err)

	msg := senderMock.Calls[0].Arguments.Get(0).(*whatsapp.TemplateMsg)
	assert.Equal(t, "+962790000001", msg.To)
}

func TestWork_Locked(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(errors.New("Record is locked"))

	err := work(data, testMsg())
	assert.Nil(t, err)
	senderMock.AssertNotCalled(t, "Send", mock.Anything)
}

func TestWork_NoApplication(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(nil, apperr.NotFoundf("No application with ID app1"))

	err := work(data, testMsg())
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNonRestorable))
}

func TestWork_TransientFailure(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("", errors.Wrap(apperr.ErrExternalService, "503"))

	err := work(data, testMsg())
	assert.NotNil(t, err)
	assert.False(t, errors.Is(err, apperr.ErrNonRestorable))
	// retried before giving up
	senderMock.AssertNumberOfCalls(t, "Send", 4)

	value := lockerMock.Calls[1].Arguments.Get(2).(*int)
	assert.Equal(t, 0, *value)
}

func TestWork_PermanentFailure(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("", errors.Wrap(apperr.ErrNonRestorable, "bad template"))

	err := work(data, testMsg())
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNonRestorable))
	// permanent failures are not retried
	senderMock.AssertNumberOfCalls(t, "Send", 1)
}

type emailMakerFake struct {
	err   error
	calls int
}

func (f *emailMakerFake) Make(app *session.Application, roomName string) (*email.Email, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return email.NewEmail(), nil
}

type emailSenderFake struct {
	err   error
	calls int
}

func (f *emailSenderFake) Send(email *email.Email) error {
	f.calls++
	return f.err
}

func TestWork_EmailCopy(t *testing.T) {
	data := initTestData()
	maker := &emailMakerFake{}
	sender := &emailSenderFake{}
	data.emailMaker = maker
	data.emailSender = sender
	app := testAppRecord()
	app.Email = "lina@olia.com"
	contactsMock.On("Get", "app1").Return(app, nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	err := work(data, testMsg())
	assert.Nil(t, err)
	assert.Equal(t, 1, sender.calls)
}

func TestWork_EmailFailureIgnored(t *testing.T) {
	data := initTestData()
	data.emailMaker = &emailMakerFake{}
	data.emailSender = &emailSenderFake{err: errors.New("smtp down")}
	app := testAppRecord()
	app.Email = "lina@olia.com"
	contactsMock.On("Get", "app1").Return(app, nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	err := work(data, testMsg())
	assert.Nil(t, err)

	value := lockerMock.Calls[1].Arguments.Get(2).(*int)
	assert.Equal(t, 2, *value)
}

func TestWork_NoEmailAddress(t *testing.T) {
	data := initTestData()
	maker := &emailMakerFake{}
	data.emailMaker = maker
	data.emailSender = &emailSenderFake{}
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	err := work(data, testMsg())
	assert.Nil(t, err)
	assert.Equal(t, 0, maker.calls)
}

func TestProcessMsg_WrongMsg(t *testing.T) {
	data := initTestData()
	d := amqp.Delivery{Body: []byte("olia")}
	redeliver, err := processMsg(&d, data)
	assert.NotNil(t, err)
	assert.False(t, redeliver)
}

func TestProcessMsg_NonRestorable(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(nil, apperr.NotFoundf("No application"))
	d := amqp.Delivery{Body: []byte(`{"id":"app1","room":"r1"}`)}
	redeliver, err := processMsg(&d, data)
	assert.NotNil(t, err)
	assert.False(t, redeliver)
}

func TestProcessMsg_Transient(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(nil, errors.New("db down"))
	d := amqp.Delivery{Body: []byte(`{"id":"app1","room":"r1"}`)}
	redeliver, err := processMsg(&d, data)
	assert.NotNil(t, err)
	assert.True(t, redeliver)
}

type ackFake struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackFake) Ack(tag uint64, multiple bool) error { a.acked++; return nil }
func (a *ackFake) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}
func (a *ackFake) Reject(tag uint64, requeue bool) error { return nil }

func TestListenQueue_Ack(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(testAppRecord(), nil)
	lockerMock.On("Lock", "app1", lockKey).Return(nil)
	lockerMock.On("UnLock", "app1", lockKey, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return("wamid.1", nil)

	wc := make(chan amqp.Delivery)
	data.workCh = wc
	assert.Nil(t, StartWorkerService(data))

	ack := &ackFake{}
	wc <- amqp.Delivery{Body: []byte(`{"id":"app1","room":"r1"}`), Acknowledger: ack}
	close(wc)
	waitClose(t, data)
	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
}

func TestListenQueue_NackRedeliver(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(nil, errors.New("db down"))

	wc := make(chan amqp.Delivery)
	data.workCh = wc
	assert.Nil(t, StartWorkerService(data))

	ack := &ackFake{}
	wc <- amqp.Delivery{Body: []byte(`{"id":"app1","room":"r1"}`), Acknowledger: ack}
	close(wc)
	waitClose(t, data)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestListenQueue_NoSecondRedeliver(t *testing.T) {
	data := initTestData()
	contactsMock.On("Get", "app1").Return(nil, errors.New("db down"))

	wc := make(chan amqp.Delivery)
	data.workCh = wc
	assert.Nil(t, StartWorkerService(data))

	ack := &ackFake{}
	wc <- amqp.Delivery{Body: []byte(`{"id":"app1","room":"r1"}`), Acknowledger: ack, Redelivered: true}
	close(wc)
	waitClose(t, data)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func waitClose(t *testing.T, data *ServiceData) {
	t.Helper()
	select {
	case <-data.fc.C:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for worker to stop")
	}
}

func TestCheckInputParameters(t *testing.T) {
	Convey("Given service data", t, func() {
		data := initTestData()
		wc := make(chan amqp.Delivery)
		data.workCh = wc

		Convey("Given correct data", func() {
			So(StartWorkerService(data), ShouldBeNil)
			close(wc)
		})
		Convey("Given no channel", func() {
			data.workCh = nil
			So(StartWorkerService(data), ShouldNotBeNil)
		})
		Convey("Given no contacts", func() {
			data.contacts = nil
			So(StartWorkerService(data), ShouldNotBeNil)
		})
		Convey("Given no sender", func() {
			data.sender = nil
			So(StartWorkerService(data), ShouldNotBeNil)
		})
		Convey("Given no locker", func() {
			data.locker = nil
			So(StartWorkerService(data), ShouldNotBeNil)
		})
		Convey("Given no template", func() {
			data.template = ""
			So(StartWorkerService(data), ShouldNotBeNil)
		})
	})
}
