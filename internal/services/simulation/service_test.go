package simulation

import (
	"testing"

	"firewatch-go/internal/config"
	"firewatch-go/internal/models"
)

// fixedRng returns the given values in order, repeating the last one.
func fixedRng(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func newTestService(rng func() float64) *Service {
	svc := NewService(&config.Config{}, nil, nil, nil)
	svc.rng = rng
	return svc
}

func floatPtr(v float64) *float64 { return &v }

func TestSimulateTemperatureWithoutThreshold(t *testing.T) {
	// noise term of exactly 0.5 - 0.5 = 0
	svc := newTestService(fixedRng(0.5))
	sensor := &models.Sensor{}

	got := svc.simulateTemperature(sensor, 25.0)
	want := 23.0 // 22 + (25-15)*0.1
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSimulateTemperatureStaysBelowThreshold(t *testing.T) {
	// First draw is the noise term, second decides against a forced breach.
	svc := newTestService(fixedRng(0.5, 0.9))
	sensor := &models.Sensor{Threshold: floatPtr(23.2)}

	got := svc.simulateTemperature(sensor, 25.0)
	want := 22.7 // min(23.0, 23.2-0.5)
	if got != want {
		t.Fatalf("expected clamp to %v, got %v", want, got)
	}
}

func TestSimulateTemperatureForcedBreach(t *testing.T) {
	// Second draw under 0.05 forces a breach; third scales the overshoot.
	svc := newTestService(fixedRng(0.5, 0.01, 0.25))
	sensor := &models.Sensor{Threshold: floatPtr(40.0)}

	got := svc.simulateTemperature(sensor, 25.0)
	want := 40.5 // threshold + 0.25*2
	if got != want {
		t.Fatalf("expected forced breach %v, got %v", want, got)
	}
}

func TestSimulateTemperatureNaturalBreachKept(t *testing.T) {
	svc := newTestService(fixedRng(0.5, 0.9))
	sensor := &models.Sensor{Threshold: floatPtr(22.5)}

	got := svc.simulateTemperature(sensor, 25.0)
	if got != 23.0 {
		t.Fatalf("expected natural breach 23.0 to be kept, got %v", got)
	}
}

func TestSimulateHumidityClamped(t *testing.T) {
	svc := newTestService(fixedRng(1.0)) // maximum noise

	if got := svc.simulateHumidity(2000); got != 100 {
		t.Fatalf("expected upper clamp 100, got %v", got)
	}

	svc = newTestService(fixedRng(0.0)) // minimum noise
	if got := svc.simulateHumidity(-2000); got != 0 {
		t.Fatalf("expected lower clamp 0, got %v", got)
	}
}

func TestSimulateHumidityFollowsOutdoor(t *testing.T) {
	svc := newTestService(fixedRng(0.5))

	got := svc.simulateHumidity(70)
	want := 46.0 // 45 + (70-50)*0.05
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLocationQueryPrefersCoordinates(t *testing.T) {
	city := "Hanoi"
	lat, lon := 21.0285, 105.8542
	zone := &models.Zone{City: &city, Latitude: &lat, Longitude: &lon}

	query, _ := locationQuery(zone)
	if query != "21.0285,105.8542" {
		t.Fatalf("expected coordinate query, got %q", query)
	}

	zone.Latitude = nil
	query, _ = locationQuery(zone)
	if query != "Hanoi" {
		t.Fatalf("expected city fallback, got %q", query)
	}
}
