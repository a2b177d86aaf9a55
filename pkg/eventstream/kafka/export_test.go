package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return newPublisher(w)
}
