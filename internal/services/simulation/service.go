package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"firewatch-go/internal/config"
	"firewatch-go/internal/logging"
	"firewatch-go/internal/models"
	"firewatch-go/internal/services/weather"
	"firewatch-go/internal/storage"
)

// Tuning values carried over from observed production behavior.
const (
	baseTemperature     = 22.0
	tempInfluenceFactor = 0.1
	tempInfluencePivot  = 15.0
	baseHumidity        = 45.0
	humInfluenceFactor  = 0.05
	humInfluencePivot   = 50.0
	breachProbability   = 0.05
	thresholdMargin     = 0.5
)

// WeatherFetcher resolves current outdoor conditions for a location query.
type WeatherFetcher interface {
	Fetch(ctx context.Context, query string) (*weather.Current, error)
}

// ReadingRecorder persists one derived reading and runs the threshold rule.
type ReadingRecorder interface {
	RecordReading(ctx context.Context, sensor *models.Sensor, temperature, humidity float64) (*models.SensorLog, error)
}

// Service derives simulated sensor readings from the external weather feed
// and pushes them through the same alerting logic as real sensors.
type Service struct {
	cfg     *config.Config
	store   *storage.Store
	weather WeatherFetcher
	alerts  ReadingRecorder
	rng     func() float64
	log     zerolog.Logger
}

func NewService(cfg *config.Config, store *storage.Store, fetcher WeatherFetcher, recorder ReadingRecorder) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		weather: fetcher,
		alerts:  recorder,
		rng:     rand.Float64,
		log:     logging.NewServiceLogger(cfg, "simulation"),
	}
}

// Run performs one simulation sweep. Zone failures are isolated: a failed
// weather fetch or incomplete data skips that zone only.
func (s *Service) Run(ctx context.Context) {
	if s.cfg.WeatherAPIKey == "" {
		s.log.Warn().Msg("Weather API key not configured, skipping simulation sweep")
		return
	}

	zones, err := s.store.SimulationZones(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load simulation zones")
		return
	}
	if len(zones) == 0 {
		s.log.Info().Msg("No zones with location and active sensors found")
		return
	}

	for i := range zones {
		s.processZone(ctx, &zones[i])
	}
}

func (s *Service) processZone(ctx context.Context, zone *models.Zone) {
	query, label := locationQuery(zone)
	s.log.Info().Uint("zone_id", zone.ID).Str("location", label).Msg("Processing zone")

	current, err := s.weather.Fetch(ctx, query)
	if err != nil {
		s.log.Error().Err(err).Uint("zone_id", zone.ID).Msg("Weather fetch failed, skipping zone")
		return
	}
	if current.TempC == nil || current.Humidity == nil {
		s.log.Warn().Uint("zone_id", zone.ID).Msg("Incomplete weather data, skipping zone")
		return
	}

	for i := range zone.Sensors {
		sensor := &zone.Sensors[i]
		sensor.Zone = zone
		logger := logging.WithSensor(s.log, sensor.ID)

		temperature := s.simulateTemperature(sensor, *current.TempC)
		humidity := s.simulateHumidity(*current.Humidity)

		if _, err := s.alerts.RecordReading(ctx, sensor, temperature, humidity); err != nil {
			logger.Error().Err(err).Msg("Failed to process sensor reading")
		}
	}
}

// locationQuery builds the weather API key for a zone: coordinates when
// present, city name otherwise.
func locationQuery(zone *models.Zone) (query, label string) {
	if zone.Latitude != nil && zone.Longitude != nil {
		query = fmt.Sprintf("%v,%v", *zone.Latitude, *zone.Longitude)
		return query, fmt.Sprintf("Lat/Lon (%s)", query)
	}
	city := ""
	if zone.City != nil {
		city = *zone.City
	}
	return city, fmt.Sprintf("City (%s)", city)
}

// simulateTemperature derives an indoor estimate around a fixed baseline
// driven by the outdoor temperature plus bounded noise. A small probability
// forces a threshold breach; otherwise an estimate that stays under the
// threshold is clamped just below it.
func (s *Service) simulateTemperature(sensor *models.Sensor, outdoorTemp float64) float64 {
	estimate := round2(baseTemperature + (outdoorTemp-tempInfluencePivot)*tempInfluenceFactor + (s.rng() - 0.5))
	if sensor.Threshold == nil {
		return estimate
	}

	threshold := *sensor.Threshold
	switch {
	case s.rng() < breachProbability:
		return round2(threshold + s.rng()*2)
	case estimate >= threshold:
		s.log.Warn().
			Float64("temperature", estimate).
			Float64("threshold", threshold).
			Msg("Simulated temperature exceeds threshold")
		return estimate
	default:
		return math.Min(estimate, threshold-thresholdMargin)
	}
}

// simulateHumidity derives humidity from the outdoor value with bounded
// noise, clamped to [0, 100].
func (s *Service) simulateHumidity(outdoorHumidity float64) float64 {
	estimate := round2(baseHumidity + (outdoorHumidity-humInfluencePivot)*humInfluenceFactor + (s.rng()-0.5)*2)
	return math.Min(math.Max(estimate, 0), 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
