package status

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rolevate/roomgo/internal/app/status/api"
	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/messages"
	"github.com/streadway/amqp"
)

type eventChannelFunc func() (<-chan amqp.Delivery, error)

func listenQueue(channel <-chan amqp.Delivery, data *ServiceData, fc chan<- bool) {
	for d := range channel {
		err := processMsg(&d, data)
		if err != nil {
			cmdapp.Log.Errorf("Can't process message %s\n%s", d.MessageId, string(d.Body))
			cmdapp.Log.Error(err)
		}
	}
	cmdapp.Log.Infof("Stopped listening queue")
	close(fc)
}

func registerQueue(data *ServiceData, quitChan <-chan bool, initialWait time.Duration) {
	wait := initialWait
	for {
		select {
		case <-quitChan:
			cmdapp.Log.Infof("Quit listening queue")
			return
		default:
			fc := make(chan bool)
			cmdapp.Log.Infof("Trying listening queue")
			msgs, err := data.EventChannelFunc()
			if err != nil {
				cmdapp.Log.Error(err)
				wait = wait * 2
				if wait > time.Minute {
					wait = time.Minute
				}
				cmdapp.Log.Infof("Wait before reconnect %d s", wait/time.Second)
				time.Sleep(wait)
				continue
			}
			wait = initialWait
			go listenQueue(msgs, data, fc)
			<-fc
		}
	}
}

func processMsg(d *amqp.Delivery, data *ServiceData) error {
	var msg messages.SessionMsg
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return errors.Wrap(err, "Can't decode message "+string(d.Body))
	}
	cmdapp.Log.Infof("processMsg event for room %s", msg.Room)
	conns := getConnections(msg.Room)
	if len(conns) > 0 {
		result, err := data.StatusProvider.Get(msg.Room)
		if err != nil {
			return errors.Wrap(err, "Cannot get status for room: "+msg.Room)
		}
		for _, c := range conns {
			err = sendMsg(c, result)
			cmdapp.LogIf(err)
		}
	} else {
		cmdapp.Log.Infof("No connections found for " + msg.Room)
	}
	return nil
}

func sendMsg(c WsConn, result *api.SessionStatus) error {
	cmdapp.Log.Debugf("Sending status for %s to websocket", result.Local.RoomName)
	err := c.WriteJSON(result)
	if err != nil {
		return errors.Wrap(err, "Cannot write to websocket")
	}
	return nil
}
