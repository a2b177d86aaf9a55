package kafka_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/remotes/pkg/eventstream"
	"github.com/papercomputeco/remotes/pkg/eventstream/kafka"
)

type recordingWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	It("rejects a config without brokers", func() {
		_, err := kafka.NewPublisher(kafka.Config{Topic: "t"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a config without a topic", func() {
		_, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).To(HaveOccurred())
	})

	It("builds a writer for a valid config", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "remotes"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())
	})

	It("returns ErrNilEvent for nil events", func() {
		p := kafka.NewPublisherWithWriter(&recordingWriter{})
		Expect(p.PublishStateSaved(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})

	It("writes the event as JSON keyed by remote", func() {
		w := &recordingWriter{}
		p := kafka.NewPublisherWithWriter(w)
		event := eventstream.NewStateSavedEvent("origin", eventstream.ExchangePull, nil)

		Expect(p.PublishStateSaved(context.Background(), event)).To(Succeed())
		Expect(w.messages).To(HaveLen(1))
		Expect(string(w.messages[0].Key)).To(Equal("origin"))

		var decoded eventstream.StateSavedEvent
		Expect(json.Unmarshal(w.messages[0].Value, &decoded)).To(Succeed())
		Expect(decoded.EventID).To(Equal(event.EventID))
	})

	It("wraps writer errors", func() {
		p := kafka.NewPublisherWithWriter(&recordingWriter{err: errors.New("broker down")})
		err := p.PublishStateSaved(context.Background(), eventstream.NewStateSavedEvent("origin", eventstream.ExchangePush, nil))
		Expect(err).To(MatchError(ContainSubstring("broker down")))
	})

	It("closes the writer", func() {
		w := &recordingWriter{}
		Expect(kafka.NewPublisherWithWriter(w).Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})
})
