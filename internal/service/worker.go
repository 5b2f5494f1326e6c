// internal/service/worker.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// DispatchWorker consumes queued outreach batches and forwards each one to a
// Dispatcher, normally the send-emails workflow.
type DispatchWorker struct {
	Dispatcher Dispatcher
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Constructor
func NewDispatchWorker(d Dispatcher, timeout time.Duration, log *zap.Logger) *DispatchWorker {
	return &DispatchWorker{
		Dispatcher: d,
		Timeout:    timeout,
		Logger:     logger.OrNop(log),
	}
}

// Handle processes one queue payload. In-process queues deliver the batch
// value; AMQP delivers the JSON body.
func (w *DispatchWorker) Handle(payload any) error {
	batch, err := decodeBatch(payload)
	if err != nil {
		w.log().Error("invalid job", zap.Error(err))
		return err
	}
	if len(batch.Recipients) == 0 {
		w.log().Warn("empty batch dropped")
		return nil
	}

	ctx := context.Background()
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	if err := w.Dispatcher.DispatchEmails(ctx, batch.Recipients); err != nil {
		w.log().Error("❌ failed to send batch", zap.Int("recipients", len(batch.Recipients)), zap.Error(err))
		return err
	}
	w.log().Info("✅ batch sent", zap.Int("recipients", len(batch.Recipients)))
	return nil
}

func (w *DispatchWorker) log() *zap.Logger {
	return logger.OrNop(w.Logger)
}

func decodeBatch(payload any) (model.DispatchBatch, error) {
	switch p := payload.(type) {
	case model.DispatchBatch:
		return p, nil
	case *model.DispatchBatch:
		if p == nil {
			return model.DispatchBatch{}, fmt.Errorf("nil batch")
		}
		return *p, nil
	case []byte:
		var b model.DispatchBatch
		if err := json.Unmarshal(p, &b); err != nil {
			return model.DispatchBatch{}, fmt.Errorf("decode batch: %w", err)
		}
		return b, nil
	default:
		return model.DispatchBatch{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}

// LogDispatcher only logs batches. Used by the memory transport in development.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d *LogDispatcher) DispatchEmails(ctx context.Context, recipients []model.Recipient) error {
	log := logger.OrNop(d.Logger)
	for _, r := range recipients {
		log.Info("📨 would send email",
			zap.String("email", r.Email),
			zap.String("company", r.Company),
			zap.Int("message_length", len(r.Message)))
	}
	return nil
}
