package queue

import (
	"context"

	"github.com/unclebandit/aisdr-backend/internal/model"
)

// DispatchPublisher hands an outreach batch to a queue as a single message.
// A consumer (cmd/worker) forwards it to the send-emails workflow.
type DispatchPublisher struct {
	Queue Queue
	Topic string
	// Async is set when Publish returns before a consumer has handled the
	// batch, so a nil error only means it was enqueued.
	Async bool
}

func NewDispatchPublisher(q Queue) *DispatchPublisher {
	return &DispatchPublisher{Queue: q, Topic: TopicDispatch}
}

func (p *DispatchPublisher) Queued() bool { return p.Async }

func (p *DispatchPublisher) DispatchEmails(ctx context.Context, recipients []model.Recipient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Queue.Publish(p.Topic, model.DispatchBatch{Recipients: recipients})
}
