package middleware

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads from a named queue. Analysis jobs arrive through one of
// these; each delivery is acked only after the callback reports success, so a
// job that fails mid-run is requeued.
type Consumer struct {
	name       string
	channel    *amqp.Channel
	deliveries <-chan amqp.Delivery

	quit chan struct{}
	done chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
}

func NewConsumer(queueName string, connectionAddr string) (*Consumer, error) {
	ch, err := GetConnection(connectionAddr).Channel()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queueName, // name
		false,     // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &Consumer{
		name:    q.Name,
		channel: ch,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

func (c *Consumer) StartConsuming(onMessageCallback OnMessageCallback) *MessageMiddlewareError {
	var startErr error

	c.startOnce.Do(func() {
		deliveries, err := c.channel.Consume(
			c.name, // queue
			"",     // consumer
			false,  // autoAck
			false,  // exclusive
			false,  // noLocal
			false,  // noWait
			nil,    // args
		)
		if err != nil {
			startErr = err
			return
		}
		c.deliveries = deliveries
	})

	if startErr != nil {
		return &MessageMiddlewareError{Code: MessageMiddlewareMessageError, Msg: "Failed consuming: " + startErr.Error()}
	}

	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return nil
		case d, ok := <-c.deliveries:
			if !ok {
				// channel closed by the server or by Cancel
				return nil
			}

			ret := make(chan *MessageMiddlewareError, 1)
			onMessageCallback(MiddlewareMessage{Body: d.Body, Headers: d.Headers}, ret)

			if err := <-ret; err != nil {
				_ = d.Nack(false, true) // requeue
			} else {
				_ = d.Ack(false)
			}
		}
	}
}

func (c *Consumer) StopConsuming() *MessageMiddlewareError {
	c.closeOnce.Do(func() {
		close(c.quit)

		// If StartConsuming was never called there is no loop to wait for;
		// only block on done when a deliveries channel exists.
		if c.deliveries != nil {
			<-c.done
		}
	})
	return nil
}

func (c *Consumer) Send(message []byte) *MessageMiddlewareError {
	err := c.channel.Publish(
		"",
		c.name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/octet-stream",
			Body:        message,
		})
	if err != nil {
		return &MessageMiddlewareError{Code: MessageMiddlewareDisconnectedError, Msg: "Failed to send message"}
	}
	return nil
}

func (c *Consumer) Close() *MessageMiddlewareError {
	c.StopConsuming()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return &MessageMiddlewareError{Code: MessageMiddlewareCloseError, Msg: "Failed to close channel: " + err.Error()}
		}
	}
	return nil
}

func (c *Consumer) Delete() *MessageMiddlewareError {
	var firstErr *MessageMiddlewareError

	if c.channel != nil {
		_, err := c.channel.QueueDelete(c.name, false, false, false)
		if err != nil {
			firstErr = &MessageMiddlewareError{Code: MessageMiddlewareDeleteError, Msg: "Failed to delete queue: " + err.Error()}
		}
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = &MessageMiddlewareError{Code: MessageMiddlewareCloseError, Msg: "Failed to close channel: " + err.Error()}
		}
	}
	return firstErr
}
