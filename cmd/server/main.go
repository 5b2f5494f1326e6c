// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/aisdr-backend/internal/config"
	"github.com/unclebandit/aisdr-backend/internal/controller"
	"github.com/unclebandit/aisdr-backend/internal/id"
	"github.com/unclebandit/aisdr-backend/internal/llm"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/queue"
	"github.com/unclebandit/aisdr-backend/internal/repository"
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

	if err := id.Init(cfg.NodeID); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	campaignRepo, closeStore, err := repository.OpenCampaignRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessionRepo, closeSessions, err := repository.OpenSessionRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	workflowClient := workflow.NewClient(cfg.Workflow.PromptIntentURL, cfg.Workflow.SendEmailsURL, cfg.Workflow.Timeout, log)

	dispatcher, closeDispatch, err := newDispatcher(cfg, workflowClient, log)
	if err != nil {
		return err
	}
	defer closeDispatch()

	chatLLM := llm.NewClient(llmConfig(cfg.ChatLLM, cfg.Workflow.Timeout), log)
	emailLLM := llm.NewClient(llmConfig(cfg.EmailLLM, cfg.Workflow.Timeout), log)

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		Placeholders: cfg.Analytics,
		Logger:       log,
	}
	intakeService := &service.IntakeService{
		Sessions:     sessionRepo,
		CampaignRepo: campaignRepo,
		Assistant:    chatLLM,
		Resolver:     workflowClient,
		Logger:       log,
	}
	outreachService := &service.OutreachService{
		Writer:          emailLLM,
		Dispatcher:      dispatcher,
		DefaultTemplate: cfg.Outreach.DefaultTemplate,
		Concurrency:     cfg.Outreach.Concurrency,
		Logger:          log,
	}
	importService := &service.ImportService{
		CampaignRepo: campaignRepo,
		Logger:       log,
	}

	router := controller.NewRouter(controller.Controllers{
		Campaigns: &controller.CampaignController{CampaignService: campaignService, Logger: log},
		Intake:    &controller.IntakeController{IntakeService: intakeService, Logger: log},
		Outreach:  &controller.OutreachController{OutreachService: outreachService, Logger: log},
		Import:    &controller.ImportController{ImportService: importService, Logger: log},
	}, log, 5*time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("sessions", cfg.SessionDriver),
			zap.String("dispatch", cfg.DispatchTransport))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func llmConfig(c config.LLMConfig, timeout time.Duration) llm.Config {
	return llm.Config{
		Name:        c.Name,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		Referer:     c.Referer,
		Title:       c.Title,
		Timeout:     timeout,
	}
}

// newDispatcher picks the outreach transport. The memory transport runs the
// dispatch worker in process against a logging dispatcher.
func newDispatcher(cfg config.Config, wf *workflow.Client, log *zap.Logger) (service.Dispatcher, func(), error) {
	switch cfg.DispatchTransport {
	case config.DispatchWebhook:
		return wf, func() {}, nil

	case config.DispatchAMQP:
		q, err := queue.DialAMQP(cfg.AMQP.URL, log)
		if err != nil {
			return nil, nil, err
		}
		pub := queue.NewDispatchPublisher(q)
		pub.Topic = cfg.AMQP.Queue
		pub.Async = true
		return pub, func() { q.Close() }, nil

	case config.DispatchMemory:
		q := queue.NewInMemoryQueue(log)
		worker := service.NewDispatchWorker(&service.LogDispatcher{Logger: log}, cfg.Workflow.Timeout, log)
		if err := q.Subscribe(queue.TopicDispatch, worker.Handle); err != nil {
			return nil, nil, err
		}
		return queue.NewDispatchPublisher(q), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown DISPATCH_TRANSPORT %q", cfg.DispatchTransport)
	}
}
