// Package alerting turns derived sensor statuses into deduplicated,
// severity-classified alerts and forwards them to the configured sinks.
package alerting

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// Sink receives emitted alerts. Delivery is best-effort and fire-and-forget;
// a sink that fails must not stop the alert from being recorded.
type Sink interface {
	Notify(alert models.Alert)
}

// Engine owns the in-memory alert list for one dashboard session. Alongside
// the list it tracks, per sensor, the alert currently blocking re-emission:
// a sensor that stays out of range keeps its blocking alert and emits
// nothing, while acknowledging the alert or returning to normal re-arms the
// sensor for its next threshold crossing. Re-arming never deletes or
// acknowledges the alert record itself.
type Engine struct {
	mu       sync.RWMutex
	alerts   []models.Alert    // newest first
	blocking map[string]string // sensor ID -> ID of the alert suppressing emission
	sinks    []Sink
	now      func() time.Time
}

func NewEngine(sinks ...Sink) *Engine {
	return &Engine{
		blocking: make(map[string]string),
		sinks:    sinks,
		now:      time.Now,
	}
}

// Evaluate runs every sensor's derived status through the per-sensor state
// machine. Each normal-to-low/high crossing emits exactly one alert; repeat
// evaluations in the same out-of-range episode are no-ops.
func (e *Engine) Evaluate(sensors []models.Sensor) []models.Alert {
	e.mu.Lock()

	var emitted []models.Alert
	for _, s := range sensors {
		switch s.Status {
		case models.StatusLow, models.StatusHigh:
			if _, ok := e.blocking[s.ID]; ok {
				continue
			}
			alert := buildAlert(s, e.now())
			e.alerts = append([]models.Alert{alert}, e.alerts...)
			e.blocking[s.ID] = alert.ID
			emitted = append(emitted, alert)
		case models.StatusNormal:
			// Recovery re-arms emission but leaves the alert unacknowledged.
			delete(e.blocking, s.ID)
		}
	}
	e.mu.Unlock()

	for _, alert := range emitted {
		e.dispatch(alert)
	}
	return emitted
}

func buildAlert(s models.Sensor, at time.Time) models.Alert {
	severity := models.SeverityWarning
	title := "Warning Alert"
	detail := "High reading detected"
	if s.Status == models.StatusLow {
		severity = models.SeverityCritical
		title = "Critical Alert"
		detail = "Critical low reading"
	}

	var value float64
	var unit string
	if s.LatestReading != nil {
		value = s.LatestReading.Value
		unit = s.LatestReading.Unit
	}

	return models.Alert{
		ID:        uuid.NewString(),
		SensorID:  s.ID,
		Severity:  severity,
		Title:     title,
		Message:   fmt.Sprintf("%s: %v%s - %s", s.Name, value, unit, detail),
		CreatedAt: at,
	}
}

func (e *Engine) dispatch(alert models.Alert) {
	for _, sink := range e.sinks {
		sink.Notify(alert)
	}
}

// Acknowledge marks an alert read and, if it was the one blocking its
// sensor, re-arms that sensor. Reports whether the ID was found.
func (e *Engine) Acknowledge(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.alerts {
		if e.alerts[i].ID == id {
			e.alerts[i].Acknowledged = true
			if e.blocking[e.alerts[i].SensorID] == id {
				delete(e.blocking, e.alerts[i].SensorID)
			}
			return true
		}
	}
	return false
}

// ClearAll drops every alert, read or not, and re-arms all sensors.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts = nil
	e.blocking = make(map[string]string)
}

// Alerts returns a copy of the alert list, newest first.
func (e *Engine) Alerts() []models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Alert, len(e.alerts))
	copy(out, e.alerts)
	return out
}

// UnreadCount counts unacknowledged alerts.
func (e *Engine) UnreadCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, a := range e.alerts {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}

// LogSink writes alerts to the standard logger.
type LogSink struct{}

func (LogSink) Notify(alert models.Alert) {
	log.Printf("ALERT [%s] %s: %s", alert.Severity, alert.Title, alert.Message)
}
