package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"firewatch-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("worker_id", cfg.WorkerID).Str("service", service).Logger()
}

func WithCamera(base zerolog.Logger, cameraID uint) zerolog.Logger {
	return base.With().Uint("camera_id", cameraID).Logger()
}

func WithSensor(base zerolog.Logger, sensorID uint) zerolog.Logger {
	return base.With().Uint("sensor_id", sensorID).Logger()
}
