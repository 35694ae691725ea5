package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"firewatch-go/internal/config"
	"firewatch-go/internal/models"
)

// Service publishes pipeline events to NATS. Broadcast is fire-and-forget:
// consumers are expected to be already subscribed, no acknowledgment is
// required.
type Service struct {
	conn *nats.Conn
	cfg  *config.Config
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("firewatch-worker"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

// AlertEvent is the compact payload broadcast on alert creation.
type AlertEvent struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	Origin    string    `json:"origin"`
	Status    string    `json:"status"`
	ZoneName  string    `json:"zone_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SensorReadingEvent is broadcast for every accepted sensor log.
type SensorReadingEvent struct {
	ID          uint      `json:"id"`
	SensorID    uint      `json:"sensor_id"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Service) PublishAlertCreated(alert *models.Alert) error {
	event := AlertEvent{
		ID:        alert.ID,
		Message:   alert.Message,
		Origin:    string(alert.Origin),
		Status:    string(alert.Status),
		CreatedAt: alert.CreatedAt,
	}
	if alert.Zone != nil {
		event.ZoneName = alert.Zone.Name
	}
	return s.publish(s.cfg.AlertsSubject, event)
}

func (s *Service) PublishSensorReading(reading *models.SensorLog) error {
	return s.publish(s.cfg.SensorLogsSubject, SensorReadingEvent{
		ID:          reading.ID,
		SensorID:    reading.SensorID,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		CreatedAt:   reading.CreatedAt,
	})
}

func (s *Service) publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.conn.Publish(subject, payload)
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain, fallback to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}
