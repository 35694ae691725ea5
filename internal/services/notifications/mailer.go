package notifications

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"firewatch-go/internal/config"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
)

// RecipientStore resolves the users an alert email goes to.
type RecipientStore interface {
	ZoneOwner(ctx context.Context, zoneID uint) (*models.User, error)
	AdminFor(ctx context.Context, user *models.User) (*models.User, error)
}

// Mailer delivers alert emails over SMTP. Inactive recipients are skipped
// and logged, not treated as failures.
type Mailer struct {
	cfg   *config.Config
	store RecipientStore
	send  func(msg *gomail.Message) error
	log   zerolog.Logger
}

func NewMailer(cfg *config.Config, store RecipientStore) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &Mailer{
		cfg:   cfg,
		store: store,
		send:  func(msg *gomail.Message) error { return dialer.DialAndSend(msg) },
		log:   logging.NewServiceLogger(cfg, "mailer"),
	}
}

// SendAlertEmail resolves the recipients for the alert and delivers one mail
// to each. For sensor_threshold alerts the zone owner's administrative
// supervisor is included as well. The snapshot is embedded inline when the
// dispatcher captured one.
func (m *Mailer) SendAlertEmail(ctx context.Context, alert *models.Alert, image *InlineImage) error {
	recipients, err := m.resolveRecipients(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		m.log.Info().Uint("alert_id", alert.ID).Msg("No active recipients for alert email")
		return nil
	}

	for _, recipient := range recipients {
		if err := m.deliver(recipient, alert, image); err != nil {
			m.log.Error().
				Err(err).
				Uint("alert_id", alert.ID).
				Str("email", recipient.Email).
				Msg("Failed to send alert email")
			continue
		}
		m.log.Info().
			Uint("alert_id", alert.ID).
			Str("email", recipient.Email).
			Msg("Alert email sent")
	}
	return nil
}

func (m *Mailer) resolveRecipients(ctx context.Context, alert *models.Alert) ([]models.User, error) {
	owner, err := m.store.ZoneOwner(ctx, alert.ZoneID)
	if err != nil {
		return nil, err
	}

	candidates := []*models.User{owner}
	if alert.Origin == models.OriginSensorThreshold {
		admin, err := m.store.AdminFor(ctx, owner)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, admin)
	}

	seen := make(map[uint]bool)
	var recipients []models.User
	for _, user := range candidates {
		if user == nil || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		if !user.IsActive {
			m.log.Warn().
				Str("name", user.Name).
				Str("email", user.Email).
				Str("role", string(user.Role)).
				Msg("Recipient inactive, skipping alert email")
			continue
		}
		recipients = append(recipients, *user)
	}
	return recipients, nil
}

func (m *Mailer) deliver(recipient models.User, alert *models.Alert, image *InlineImage) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.MailSender)
	msg.SetHeader("To", recipient.Email)
	msg.SetHeader("Subject", m.subject(alert))

	body := alert.Message
	if alert.ImageURL != "" {
		body = fmt.Sprintf("%s\n\nSnapshot: %s", body, alert.ImageURL)
	}
	msg.SetBody("text/plain", body)

	if image != nil {
		msg.Embed(image.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(image.Data)
			return err
		}))
	}

	return m.send(msg)
}

func (m *Mailer) subject(alert *models.Alert) string {
	zoneName := ""
	if alert.Zone != nil {
		zoneName = alert.Zone.Name
	}
	switch alert.Origin {
	case models.OriginSensorThreshold:
		return fmt.Sprintf("Temperature threshold exceeded in zone %s", zoneName)
	case models.OriginMLDetection:
		return fmt.Sprintf("Fire detected in zone %s", zoneName)
	default:
		return fmt.Sprintf("New alert in zone %s", zoneName)
	}
}
