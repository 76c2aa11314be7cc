package mocks

import (
	"time"

	"github.com/rolevate/roomgo/internal/pkg/session"
	"github.com/rolevate/roomgo/internal/pkg/whatsapp"
	"github.com/stretchr/testify/mock"
)

//ApplicationProvider is a mock
type ApplicationProvider struct {
	mock.Mock
}

//Get is a mocked function
func (m *ApplicationProvider) Get(id string) (*session.Application, error) {
	args := m.Mock.Called(id)
	return toApp(args.Get(0)), args.Error(1)
}

//GetByJobAndPhone is a mocked function
func (m *ApplicationProvider) GetByJobAndPhone(jobID, phone string) (*session.Application, error) {
	args := m.Mock.Called(jobID, phone)
	return toApp(args.Get(0)), args.Error(1)
}

//RoomAllocator is a mock
type RoomAllocator struct {
	mock.Mock
}

//Allocate is a mocked function
func (m *RoomAllocator) Allocate(applicationID, identity string) (*session.Room, bool, error) {
	args := m.Mock.Called(applicationID, identity)
	return toRoom(args.Get(0)), args.Bool(1), args.Error(2)
}

//RoomProvider is a mock
type RoomProvider struct {
	mock.Mock
}

//Get is a mocked function
func (m *RoomProvider) Get(roomName string) (*session.Room, error) {
	args := m.Mock.Called(roomName)
	return toRoom(args.Get(0)), args.Error(1)
}

//GetCurrent is a mocked function
func (m *RoomProvider) GetCurrent(applicationID string) (*session.Room, error) {
	args := m.Mock.Called(applicationID)
	return toRoom(args.Get(0)), args.Error(1)
}

//ListOpen is a mocked function
func (m *RoomProvider) ListOpen() ([]session.Room, error) {
	args := m.Mock.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.Room), args.Error(1)
}

//StatusChanger is a mock
type StatusChanger struct {
	mock.Mock
}

//Change is a mocked function
func (m *StatusChanger) Change(roomName string, to session.Status) (session.Status, bool, error) {
	args := m.Mock.Called(roomName, to)
	return args.Get(0).(session.Status), args.Bool(1), args.Error(2)
}

//MarkUsed is a mocked function
func (m *StatusChanger) MarkUsed(roomName string) error {
	args := m.Mock.Called(roomName)
	return args.Error(0)
}

//MarkReconciled is a mocked function
func (m *StatusChanger) MarkReconciled(roomName string, reconciled bool) error {
	args := m.Mock.Called(roomName, reconciled)
	return args.Error(0)
}

//AppStatusUpdater is a mock
type AppStatusUpdater struct {
	mock.Mock
}

//Update is a mocked function
func (m *AppStatusUpdater) Update(id string, status string) error {
	args := m.Mock.Called(id, status)
	return args.Error(0)
}

//TranscriptSaver is a mock
type TranscriptSaver struct {
	mock.Mock
}

//Save is a mocked function
func (m *TranscriptSaver) Save(data *session.Utterance) error {
	args := m.Mock.Called(data)
	return args.Error(0)
}

//TranscriptProvider is a mock
type TranscriptProvider struct {
	mock.Mock
}

//Get is a mocked function
func (m *TranscriptProvider) Get(interviewID string) ([]session.Utterance, error) {
	args := m.Mock.Called(interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.Utterance), args.Error(1)
}

//TokenIssuer is a mock
type TokenIssuer struct {
	mock.Mock
}

//Issue is a mocked function
func (m *TokenIssuer) Issue(roomName, identity string, ttl time.Duration) (string, error) {
	args := m.Mock.Called(roomName, identity, ttl)
	return args.String(0), args.Error(1)
}

//RoomClient is a mock
type RoomClient struct {
	mock.Mock
}

//GetRoom is a mocked function
func (m *RoomClient) GetRoom(roomName string) (*session.RemoteRoom, error) {
	args := m.Mock.Called(roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.RemoteRoom), args.Error(1)
}

//Locker is a mock
type Locker struct {
	mock.Mock
}

//Lock is a mocked function
func (m *Locker) Lock(id string, lockKey string) error {
	args := m.Mock.Called(id, lockKey)
	return args.Error(0)
}

//UnLock is a mocked function
func (m *Locker) UnLock(id string, lockKey string, value *int) error {
	args := m.Mock.Called(id, lockKey, value)
	return args.Error(0)
}

//TemplateSender is a mock
type TemplateSender struct {
	mock.Mock
}

//Send is a mocked function
func (m *TemplateSender) Send(msg *whatsapp.TemplateMsg) (string, error) {
	args := m.Mock.Called(msg)
	return args.String(0), args.Error(1)
}

func toApp(v interface{}) *session.Application {
	if v == nil {
		return nil
	}
	return v.(*session.Application)
}

func toRoom(v interface{}) *session.Room {
	if v == nil {
		return nil
	}
	return v.(*session.Room)
}
