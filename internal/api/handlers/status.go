package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"firewatch-go/internal/storage"
)

const statsRange = 24 * time.Hour

// PipelineStatus exposes the last sweep times of the scheduler.
type PipelineStatus interface {
	Status() (lastScan, lastSimulation time.Time)
}

// StatusStore is the subset of the store the status surface reads.
type StatusStore interface {
	PendingAlertCount(ctx context.Context) (int64, error)
	SensorStatsSince(ctx context.Context, since time.Time) (storage.SensorStats, error)
	SensorChartData(ctx context.Context, sensorIDs []uint, start, end time.Time) (map[uint][]storage.ChartPoint, error)
}

type StatusHandler struct {
	store     StatusStore
	scheduler PipelineStatus
}

func NewStatusHandler(store StatusStore, scheduler PipelineStatus) *StatusHandler {
	return &StatusHandler{store: store, scheduler: scheduler}
}

func (h *StatusHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	pending, err := h.store.PendingAlertCount(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count pending alerts"})
		return
	}

	stats, err := h.store.SensorStatsSince(ctx, time.Now().Add(-statsRange))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sensor stats"})
		return
	}

	lastScan, lastSimulation := h.scheduler.Status()

	c.JSON(http.StatusOK, gin.H{
		"pending_alerts":    pending,
		"sensor_stats":      stats,
		"stats_range_hours": int(statsRange.Hours()),
		"last_scan_sweep":   formatSweepTime(lastScan),
		"last_simulation":   formatSweepTime(lastSimulation),
		"timestamp":         time.Now().Unix(),
	})
}

// GetChartData serves per-sensor reading series for charting. sensor_ids is a
// required comma-separated list; start_time/end_time are optional RFC3339
// bounds defaulting to the last 24 hours.
func (h *StatusHandler) GetChartData(c *gin.Context) {
	sensorIDs, err := parseSensorIDs(c.Query("sensor_ids"))
	if err != nil || len(sensorIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sensor_ids is required"})
		return
	}

	end := time.Now()
	start := end.Add(-statsRange)
	if raw := c.Query("start_time"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid start_time"})
			return
		}
	}
	if raw := c.Query("end_time"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid end_time"})
			return
		}
	}

	series, err := h.store.SensorChartData(c.Request.Context(), sensorIDs, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chart data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chart_data": series})
}

func parseSensorIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func formatSweepTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}
