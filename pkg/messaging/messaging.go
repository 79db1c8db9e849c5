package messaging

import (
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ChangeTopic string

const (
	TopicOverrideSaved   ChangeTopic = "override_saved"
	TopicProductDeleted  ChangeTopic = "product_deleted"
	TopicProductRestored ChangeTopic = "product_restored"
)

var allTopics = []ChangeTopic{TopicOverrideSaved, TopicProductDeleted, TopicProductRestored}

// ChangeMessage announces that the override layer changed for one local
// product. Other nodes only need to drop their cached views.
type ChangeMessage struct {
	LocalId string `json:"id"`
}

// CatalogTransport publishes and consumes override-layer change messages so
// every node serving the catalog invalidates together. The prefix separates
// environments sharing one broker.
type CatalogTransport struct {
	conn   *amqp.Connection
	prefix string
}

func ConnectCatalogTransport(amqpUrl, prefix string) (*CatalogTransport, error) {
	conn, err := amqp.DialConfig(amqpUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		return nil, err
	}
	t := &CatalogTransport{conn: conn, prefix: prefix}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	for _, topic := range allTopics {
		if err := defineTopic(ch, t.topicName(topic)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *CatalogTransport) topicName(topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", t.prefix, topic)
}

func defineTopic(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	)
}

func (t *CatalogTransport) send(topic ChangeTopic, msg ChangeMessage) error {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ch, err := t.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := t.topicName(topic)
	return ch.Publish(
		name,
		name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        bytes,
		},
	)
}

func (t *CatalogTransport) SendOverrideSaved(localId string) error {
	return t.send(TopicOverrideSaved, ChangeMessage{LocalId: localId})
}

func (t *CatalogTransport) SendProductDeleted(localId string) error {
	return t.send(TopicProductDeleted, ChangeMessage{LocalId: localId})
}

func (t *CatalogTransport) SendProductRestored(localId string) error {
	return t.send(TopicProductRestored, ChangeMessage{LocalId: localId})
}

func declareBindAndConsume(ch *amqp.Channel, name string) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenForChanges consumes every change topic and hands each message to fn.
// Each topic gets its own channel and goroutine, a decode failure is logged
// and the message dropped.
func (t *CatalogTransport) ListenForChanges(fn func(topic ChangeTopic, msg ChangeMessage)) error {
	for _, topic := range allTopics {
		ch, err := t.conn.Channel()
		if err != nil {
			return err
		}
		deliveries, err := declareBindAndConsume(ch, t.topicName(topic))
		if err != nil {
			ch.Close()
			return err
		}
		go func(topic ChangeTopic, msgs <-chan amqp.Delivery) {
			defer ch.Close()
			for d := range msgs {
				var msg ChangeMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					log.Printf("Failed to unmarshal %s message: %v", topic, err)
				} else {
					fn(topic, msg)
				}
				d.Ack(false)
			}
		}(topic, deliveries)
	}
	return nil
}

func (t *CatalogTransport) Close() error {
	return t.conn.Close()
}
