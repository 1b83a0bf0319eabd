package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Producer writes messages through a buffered inbox so that publishing never
// blocks the request path. Delivery is best-effort: errors are logged, not
// returned to the caller.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("topic", p.w.Topic).Msg("kafka publish failed")
	}
}

// Publish enqueues the message and returns immediately. When the inbox is
// full the message is dropped rather than blocking the caller.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case p.inbox <- m:
	default:
		log.Warn().Str("topic", p.w.Topic).Msg("kafka inbox full, dropping event")
	}
}

// Close stops accepting messages; the flush goroutine drains what is left.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// WaitClosed blocks until the flush goroutine has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
