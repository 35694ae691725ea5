package services

import (
	"context"
	"net/http"

	"firewatch-go/internal/config"
	"firewatch-go/internal/jobs"
	"firewatch-go/internal/scheduler"
	"firewatch-go/internal/services/alerts"
	"firewatch-go/internal/services/messaging"
	"firewatch-go/internal/services/notifications"
	"firewatch-go/internal/services/prediction"
	"firewatch-go/internal/services/simulation"
	"firewatch-go/internal/services/snapshot"
	"firewatch-go/internal/services/upload"
	"firewatch-go/internal/services/weather"
	"firewatch-go/internal/storage"
)

// Container wires the detection-to-notification pipeline together.
type Container struct {
	Config    *config.Config
	Store     *storage.Store
	Messaging *messaging.Service
	Queue     *jobs.Queue
	Scheduler *scheduler.Scheduler
}

func NewContainer(cfg *config.Config) (*Container, error) {
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	messagingSvc, err := messaging.NewService(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	queue := jobs.NewQueue(cfg.QueueWorkers, cfg.QueueSize)

	snapshotSvc, err := snapshot.NewService(cfg)
	if err != nil {
		messagingSvc.Shutdown(context.Background())
		store.Close()
		return nil, err
	}

	predictionClient := prediction.NewClient(cfg.PredictionURL,
		&http.Client{Timeout: cfg.PredictionTimeout})
	uploadSvc := upload.NewService(cfg.UploadURL, cfg.UploadFolder,
		&http.Client{Timeout: cfg.UploadTimeout})
	weatherClient := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey,
		&http.Client{Timeout: cfg.WeatherTimeout})

	mailer := notifications.NewMailer(cfg, store)
	telegram := notifications.NewTelegramNotifier(cfg, nil)
	fanout := notifications.NewFanout(cfg, queue, messagingSvc, mailer, telegram)

	alertSvc := alerts.NewService(cfg, store, uploadSvc, fanout, messagingSvc)
	simulationSvc := simulation.NewService(cfg, store, weatherClient, alertSvc)

	scanner := scheduler.NewScanner(cfg, store, snapshotSvc, predictionClient, alertSvc)
	sched := scheduler.New(cfg, queue, store, scanner, simulationSvc)

	return &Container{
		Config:    cfg,
		Store:     store,
		Messaging: messagingSvc,
		Queue:     queue,
		Scheduler: sched,
	}, nil
}

// Shutdown stops the pipeline in dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Queue != nil {
		c.Queue.Stop()
	}
	if c.Messaging != nil {
		c.Messaging.Shutdown(ctx)
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}
