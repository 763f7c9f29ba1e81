package middleware

import (
	"fmt"
)

// MiddlewareMessage is one delivery taken off a queue.
type MiddlewareMessage struct {
	Body    []byte
	Headers map[string]interface{}
}

type MessageMiddlewareError struct {
	Code int
	Msg  string
}

func (e *MessageMiddlewareError) Error() string {
	return fmt.Sprintf("middleware error (%d): %s", e.Code, e.Msg)
}

const (
	MessageMiddlewareMessageError int = iota + 1
	MessageMiddlewareDisconnectedError
	MessageMiddlewareCloseError
	MessageMiddlewareDeleteError

	MessageMiddlewareProducerCannotConsumeError
	MessageMiddlewareConsumerCannotSendError
)

// OnMessageCallback handles one delivery. The callback reports the outcome on
// done: nil acks the message, a non-nil error requeues it.
type OnMessageCallback func(message MiddlewareMessage, done chan *MessageMiddlewareError)

type MessageMiddleware interface {
	// StartConsuming listens on the queue or exchange and invokes the
	// callback for each delivery. It blocks until StopConsuming is called or
	// the channel is closed by the server.
	StartConsuming(onMessageCallback OnMessageCallback) *MessageMiddlewareError

	// StopConsuming stops the listen loop. Calling it when nothing is being
	// consumed has no effect.
	StopConsuming() *MessageMiddlewareError

	// Send publishes a message to the queue or exchange.
	Send(message []byte) *MessageMiddlewareError

	// Close disconnects from the queue or exchange.
	Close() *MessageMiddlewareError

	// Delete removes the queue or exchange from the broker.
	Delete() *MessageMiddlewareError
}
