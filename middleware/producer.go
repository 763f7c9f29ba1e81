package middleware

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer publishes to a fanout exchange. Reports leave the analyzer through
// one of these.
type Producer struct {
	name    string
	channel *amqp.Channel
}

func NewProducer(name string, connectionAddr string) (*Producer, error) {
	ch, err := GetConnection(connectionAddr).Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(
		name,
		"fanout", // type
		false,    // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, err
	}

	return &Producer{name: name, channel: ch}, nil
}

func (p *Producer) StartConsuming(onMessageCallback OnMessageCallback) *MessageMiddlewareError {
	return &MessageMiddlewareError{Code: MessageMiddlewareProducerCannotConsumeError, Msg: "Producer cannot consume messages"}
}

func (p *Producer) StopConsuming() *MessageMiddlewareError {
	return &MessageMiddlewareError{Code: MessageMiddlewareProducerCannotConsumeError, Msg: "Producer cannot consume messages"}
}

func (p *Producer) Send(message []byte) *MessageMiddlewareError {
	err := p.channel.Publish(
		p.name,
		"",
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

func (p *Producer) Close() *MessageMiddlewareError {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return &MessageMiddlewareError{Code: MessageMiddlewareCloseError, Msg: "Failed to close channel: " + err.Error()}
		}
	}
	return nil
}

func (p *Producer) Delete() *MessageMiddlewareError {
	if p.channel != nil {
		if err := p.channel.ExchangeDelete(p.name, false, false); err != nil {
			return &MessageMiddlewareError{Code: MessageMiddlewareDeleteError, Msg: "Failed to delete exchange: " + err.Error()}
		}
	}
	return nil
}
