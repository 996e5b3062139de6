package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher publishes mission lifecycle messages. Broker failures are logged
// and swallowed: live delivery is best-effort, the ledger is the source of
// truth.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over an established client
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishStatusChange publishes to the topic exchange with routing key
// mission.status.<id>
func (p *Publisher) PublishStatusChange(missionID uint, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	routingKey := fmt.Sprintf("mission.status.%d", missionID)

	if err := p.client.Channel.ExchangeDeclare(
		p.client.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		log.Printf("❌ Failed to declare exchange: %v", err)
		return
	}

	if err := p.client.Channel.PublishWithContext(
		ctx,
		p.client.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		log.Printf("❌ Failed to publish status change for mission #%d: %v", missionID, err)
	}
}

// PublishLocation publishes to the location fanout exchange
func (p *Publisher) PublishLocation(missionID uint, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	exchange := "location_fanout"
	if err := p.client.Channel.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		log.Printf("❌ Failed to declare exchange: %v", err)
		return
	}

	if err := p.client.Channel.PublishWithContext(
		ctx,
		exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		log.Printf("❌ Failed to publish location for mission #%d: %v", missionID, err)
	}
}
