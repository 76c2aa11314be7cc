package test

import (
	"log"
	"sync"

	"github.com/rolevate/roomgo/internal/pkg/messages"
)

//Msg keeps one sent message for assertions
type Msg struct {
	M  *messages.SessionMsg
	Q  string
	RQ string
}

//Sender collects sent messages
type Sender struct {
	Msgs []Msg
	m    sync.Mutex
}

//Send implements messages.Sender
func (sender *Sender) Send(m *messages.SessionMsg, q string, rq string) error {
	log.Printf("Sending msg %s\n", m.ID)
	sender.m.Lock()
	defer sender.m.Unlock()
	sender.Msgs = append(sender.Msgs, Msg{m, q, rq})
	return nil
}

//SentTo counts messages sent to the queue
func (sender *Sender) SentTo(q string) int {
	sender.m.Lock()
	defer sender.m.Unlock()
	res := 0
	for _, m := range sender.Msgs {
		if m.Q == q {
			res++
		}
	}
	return res
}
