package rabbit

import "github.com/streadway/amqp"

//Declare decrares queue
func Declare(ch *amqp.Channel, qName string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		qName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

//NewChannel creates a consume channel for the queue
func NewChannel(ch *amqp.Channel, qName string) (<-chan amqp.Delivery, error) {
	return ch.Consume(
		qName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
}
