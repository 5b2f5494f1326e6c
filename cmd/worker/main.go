// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/config"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/queue"
	"github.com/unclebandit/aisdr-backend/internal/service"
	"github.com/unclebandit/aisdr-backend/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.AMQP.URL, log)
	if err != nil {
		return err
	}
	defer q.Close()

	wf := workflow.NewClient(cfg.Workflow.PromptIntentURL, cfg.Workflow.SendEmailsURL, cfg.Workflow.Timeout, log)
	worker := service.NewDispatchWorker(wf, cfg.Workflow.Timeout, log)

	if err := consume(q, cfg.AMQP.Queue, worker); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Worker running, waiting for messages...", zap.String("queue", cfg.AMQP.Queue))
	<-ctx.Done()
	log.Info("worker stopping")
	return nil
}

// consume forwards every batch on topic to the worker. Deliveries are acked
// by the queue whatever the outcome; a failed batch is only logged.
func consume(q queue.Queue, topic string, worker *service.DispatchWorker) error {
	return q.Subscribe(topic, worker.Handle)
}
