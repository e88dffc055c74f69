package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"chatrelay/internal/model"
	"chatrelay/internal/repository"
)

// EventLogWorker drains the usage-event queue and writes one chat_events row
// per completed exchange.
type EventLogWorker struct {
	conn      *amqp.Connection
	repo      *repository.EventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEventLogWorker(conn *amqp.Connection, repo *repository.EventRepository, queueName string) *EventLogWorker {
	return &EventLogWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *EventLogWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event model.ChatEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(workerCtx, &event); err != nil {
					log.Printf("worker persist event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *EventLogWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
