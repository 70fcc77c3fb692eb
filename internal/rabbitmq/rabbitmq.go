package rabbitmq

import (
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// Client соединение и канал RabbitMQ.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// NewClient подключается к брокеру и открывает канал.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("failed to close RabbitMQ connection: %v", cerr)
		}
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	log.Println("RabbitMQ connected")

	return &Client{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareExchange объявляет durable topic exchange.
func (c *Client) DeclareExchange(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil)
}

// Publish публикует сообщение. Канал AMQP не разделяется между горутинами без блокировки.
func (c *Client) Publish(exchange, routingKey string, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel.Publish(exchange, routingKey, false, false, msg)
}

// Close закрывает канал и соединение.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
