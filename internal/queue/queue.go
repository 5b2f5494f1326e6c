package queue

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/logger"
)

// TopicDispatch carries outreach batches to the send-emails workflow.
const TopicDispatch = "outreach_dispatch"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers synchronously to every subscriber of a topic, so the
// publisher sees the handler outcome. Failed jobs are not retried.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	Logger   *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		Logger:   logger.OrNop(log),
	}
}

// Publish sends a message to all subscribers and returns the first failure.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error{}, q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler(payload); err != nil {
			q.Logger.Warn("job failed", zap.String("topic", topic), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		q.Logger.Debug("job processed", zap.String("topic", topic))
	}
	return firstErr
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
