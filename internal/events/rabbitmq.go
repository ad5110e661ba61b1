package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devnovate-blog-api/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RabbitMQ publishes events as persistent JSON messages on a direct exchange
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

// NewRabbitMQ connects and declares the exchange, queue and binding
func NewRabbitMQ(cfg config.EventsConfig, log zerolog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	log = log.With().Str("component", "events").Logger()
	log.Info().
		Str("exchange", cfg.Exchange).
		Str("queue", cfg.QueueName).
		Str("routing_key", cfg.RoutingKey).
		Msg("Connected to RabbitMQ")

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		log:        log,
	}, nil
}

// Publish sends one event
func (r *RabbitMQ) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.log.Debug().
		Str("type", event.Type).
		Str("article_id", event.ArticleID).
		Msg("Published event")

	return nil
}

// Close releases the channel and connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Encode marshals an event to its wire form
func Encode(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return body, nil
}
