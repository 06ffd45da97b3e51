package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"scholarship-fund.backend/internal/config"
	"scholarship-fund.backend/internal/domain/entities"
	"scholarship-fund.backend/pkg/metrics"
)

const (
	DriverGoChannel = "gochannel"
	DriverKafka     = "kafka"

	metadataEventType = "event_type"
)

var (
	newKafkaPublisher = func(cfg kafka.PublisherConfig, l watermill.LoggerAdapter) (message.Publisher, error) {
		return kafka.NewPublisher(cfg, l)
	}
	newKafkaSubscriber = func(cfg kafka.SubscriberConfig, l watermill.LoggerAdapter) (message.Subscriber, error) {
		return kafka.NewSubscriber(cfg, l)
	}
)

// EventBus fans registry events out after they are committed
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	shared     bool
	topic      string
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewEventBus builds the publisher/subscriber pair selected by cfg.Driver
func NewEventBus(cfg config.MessagingConfig, log *zap.Logger, m *metrics.Metrics) (*EventBus, error) {
	if log == nil {
		log = zap.NewNop()
	}
	adapter := newZapAdapter(log)
	topic := cfg.Topic
	if topic == "" {
		topic = "scholarship.events"
	}

	bus := &EventBus{topic: topic, log: log, metrics: m}
	switch cfg.Driver {
	case "", DriverGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, adapter)
		bus.publisher, bus.subscriber, bus.shared = ch, ch, true
	case DriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("kafka event bus needs at least one broker")
		}
		pub, err := newKafkaPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, adapter)
		if err != nil {
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		saramaCfg := kafka.DefaultSaramaSubscriberConfig()
		// live stream only; history is served from the event table
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
		sub, err := newKafkaSubscriber(kafka.SubscriberConfig{
			Brokers:               cfg.KafkaBrokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaCfg,
		}, adapter)
		if err != nil {
			_ = pub.Close()
			return nil, fmt.Errorf("kafka subscriber: %w", err)
		}
		bus.publisher, bus.subscriber = pub, sub
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
	}
	return bus, nil
}

// Topic returns the topic events are published on
func (b *EventBus) Topic() string {
	return b.topic
}

// Publish sends events in order. Every event is attempted; the first error is returned.
func (b *EventBus) Publish(ctx context.Context, events []*entities.FundEvent) error {
	var firstErr error
	for _, e := range events {
		err := b.publishOne(ctx, e)
		b.metrics.ObservePublish(string(e.Type), err)
		if err != nil {
			b.log.Warn("event publish failed",
				zap.String("type", string(e.Type)),
				zap.Int64("sequence", e.Sequence),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (b *EventBus) publishOne(ctx context.Context, e *entities.FundEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := message.NewMessage(e.ID.String(), payload)
	msg.Metadata.Set(metadataEventType, string(e.Type))
	msg.SetContext(ctx)
	return b.publisher.Publish(b.topic, msg)
}

// Subscribe streams decoded events until ctx is done. Undecodable messages are dropped.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan *entities.FundEvent, error) {
	msgs, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, err
	}
	out := make(chan *entities.FundEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e entities.FundEvent
				if err := json.Unmarshal(msg.Payload, &e); err != nil {
					b.log.Warn("dropping undecodable event", zap.String("uuid", msg.UUID), zap.Error(err))
					msg.Ack()
					continue
				}
				msg.Ack()
				select {
				case out <- &e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close shuts both sides down
func (b *EventBus) Close() error {
	pubErr := b.publisher.Close()
	if !b.shared {
		if err := b.subscriber.Close(); err != nil && pubErr == nil {
			return err
		}
	}
	return pubErr
}
