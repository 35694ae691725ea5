package notifications

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"firewatch-go/internal/config"
	"firewatch-go/internal/jobs"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
)

// Broadcaster publishes alert events to the real-time channel.
type Broadcaster interface {
	PublishAlertCreated(alert *models.Alert) error
}

// InlineImage is a snapshot read into memory before the source file is
// reclaimed; delivery jobs run after the scan task has already cleaned up.
type InlineImage struct {
	Name string
	Data []byte
}

// LoadInlineImage reads a local snapshot for inline embedding. Returns nil
// for an empty path or an unreadable file; the mail still goes out without
// the attachment.
func LoadInlineImage(path string) *InlineImage {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return &InlineImage{Name: filepath.Base(path), Data: data}
}

// EmailSender delivers alert emails asynchronously.
type EmailSender interface {
	SendAlertEmail(ctx context.Context, alert *models.Alert, image *InlineImage) error
}

// ChatNotifier delivers an alert over the chat-bot channel.
type ChatNotifier interface {
	Send(ctx context.Context, alert *models.Alert, sourceName string)
}

// Enqueuer accepts independent background jobs.
type Enqueuer interface {
	Enqueue(job jobs.Job) bool
}

// Fanout delivers a created alert on every enabled channel independently:
// one queued job per channel, so a failure on one channel never prevents
// delivery on another.
type Fanout struct {
	cfg         *config.Config
	queue       Enqueuer
	broadcaster Broadcaster
	mailer      EmailSender
	telegram    ChatNotifier
	log         zerolog.Logger
}

func NewFanout(cfg *config.Config, queue Enqueuer, broadcaster Broadcaster, mailer EmailSender, telegram ChatNotifier) *Fanout {
	return &Fanout{
		cfg:         cfg,
		queue:       queue,
		broadcaster: broadcaster,
		mailer:      mailer,
		telegram:    telegram,
		log:         logging.NewServiceLogger(cfg, "fanout"),
	}
}

// Dispatch enqueues the per-channel deliveries for a freshly created alert.
// sourceName is the display name of the triggering camera or sensor;
// localImagePath points at the snapshot when one exists locally.
func (f *Fanout) Dispatch(alert *models.Alert, sourceName, localImagePath string) {
	f.queue.Enqueue(jobs.Job{
		Name: fmt.Sprintf("broadcast-alert-%d", alert.ID),
		Run: func(ctx context.Context) {
			// Fire-and-forget: no retry, no acknowledgment.
			if err := f.broadcaster.PublishAlertCreated(alert); err != nil {
				f.log.Error().Err(err).Uint("alert_id", alert.ID).Msg("Failed to broadcast alert")
			}
		},
	})

	if alert.ViaEmail {
		image := LoadInlineImage(localImagePath)
		f.queue.Enqueue(jobs.Job{
			Name: fmt.Sprintf("email-alert-%d", alert.ID),
			Run: func(ctx context.Context) {
				if err := f.mailer.SendAlertEmail(ctx, alert, image); err != nil {
					f.log.Error().Err(err).Uint("alert_id", alert.ID).Msg("Failed to email alert")
				}
			},
		})
	}

	f.queue.Enqueue(jobs.Job{
		Name: fmt.Sprintf("telegram-alert-%d", alert.ID),
		Run: func(ctx context.Context) {
			f.telegram.Send(ctx, alert, sourceName)
		},
	})
}
