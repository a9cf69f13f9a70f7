package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Channel: часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// appID подписывает сообщения, чтобы потребители отличали источник в общем брокере.
const appID = "tv-manager"

// PublishMessage сериализует message в JSON и публикует его как постоянное сообщение.
// Ключ маршрутизации дублируется в поле Type.
func PublishMessage(ch Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         routingKey,
		AppId:        appID,
		Body:         body,
	}
	if err := ch.Publish(exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("%s: %s: %w", op, routingKey, err)
	}
	return nil
}
