package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
)

// ErrDiscard означает, что сообщение не будет обработано и при повторе,
// поэтому его не возвращают в очередь.
var ErrDiscard = errors.New("discard message")

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// Consumer: часть *amqp.Channel, нужная для чтения очереди.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumeMessages запускает чтение очереди queueName в отдельной горутине.
// Успешно обработанное сообщение подтверждается, при ошибке возвращается в очередь,
// кроме ошибок ErrDiscard.
func ConsumeMessages(ctx context.Context, ch Consumer, queueName string, handler func([]byte) error, log *slog.Logger) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(d amqp.Delivery) {
					defer func() { <-sem }()
					handle(d, handler, log)
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func handle(d amqp.Delivery, handler func([]byte) error, log *slog.Logger) {
	err := handler(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrDiscard)
	log.Warn("message handling failed", sl.Err(err), slog.Bool("requeue", requeue))
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
