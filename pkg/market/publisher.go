package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Publisher forwards accepted ticks to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ticks []PriceTick) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ticks []PriceTick) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// AmqpPublisher sends each batch as one persistent JSON message to a direct
// exchange, routed by the queue name.
type AmqpPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
}

// NewPublisher returns a NopPublisher when no broker url is configured.
func NewPublisher(cfg config.Amqp) (Publisher, error) {
	if cfg.Url == "" {
		log.Info("AMQP url not configured, price ticks will not be published")
		return NopPublisher{}, nil
	}
	p, err := NewAmqpPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func NewAmqpPublisher(cfg config.Amqp) (*AmqpPublisher, error) {
	conn, err := amqp091.Dial(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AmqpPublisher{conn: conn, channel: channel, exchange: cfg.Exchange, queue: cfg.Queue}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	log.Infof("Publishing price ticks to exchange %s, queue %s", cfg.Exchange, cfg.Queue)
	return p, nil
}

func (p *AmqpPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, ticks []PriceTick) error {
	body, err := json.Marshal(ticks)
	if err != nil {
		return fmt.Errorf("marshal ticks: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish ticks: %w", err)
	}
	log.Debugf("Published %d price ticks to %s", len(ticks), p.exchange)
	return nil
}

func (p *AmqpPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
