package rabbit

import (
	"encoding/json"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
	"github.com/rolevate/roomgo/internal/pkg/messages"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

//Sender performs messages sending using rabbit mq broker
type Sender struct {
	ChannelProvider *ChannelProvider
}

//NewSender initializes rabbit sender
func NewSender(provider *ChannelProvider) *Sender {
	return &Sender{ChannelProvider: provider}
}

//Send sends the message to the queue
func (sender *Sender) Send(message *messages.SessionMsg, queue string, replyQueue string) error {
	cmdapp.Log.Infof("Sending message %s(%s)", queue, message.ID)

	msgBytes, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Can't marshal message")
	}

	realQueue := sender.ChannelProvider.QueueName(queue)
	err = sender.ChannelProvider.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		return ch.Publish(
			"", // exchange
			realQueue,
			false, // mandatory
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         msgBytes,
				ReplyTo:      sender.ChannelProvider.QueueName(replyQueue),
			})
	})
	if err != nil {
		defer sender.ChannelProvider.Close() // lets init sender again
		return errors.Wrap(err, "Can't send message")
	}
	return nil
}
