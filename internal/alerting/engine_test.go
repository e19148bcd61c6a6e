package alerting

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

type captureSink struct {
	mu     sync.Mutex
	alerts []models.Alert
}

func (c *captureSink) Notify(alert models.Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}

func lowSensor(id string) models.Sensor {
	return models.Sensor{
		ID:       id,
		Name:     "Field A Moisture",
		Category: models.CategorySoilMoisture,
		Status:   models.StatusLow,
		LatestReading: &models.SensorReading{
			SensorID:  id,
			Value:     12,
			Unit:      "%",
			Timestamp: time.Now(),
		},
	}
}

func highSensor(id string) models.Sensor {
	s := lowSensor(id)
	s.Name = "Greenhouse Temp"
	s.Status = models.StatusHigh
	s.LatestReading.Value = 41
	s.LatestReading.Unit = "°C"
	return s
}

func normalSensor(id string) models.Sensor {
	s := lowSensor(id)
	s.Status = models.StatusNormal
	return s
}

func TestLowStatusEmitsCriticalAlert(t *testing.T) {
	e := NewEngine()

	emitted := e.Evaluate([]models.Sensor{lowSensor("3")})

	require.Len(t, emitted, 1)
	assert.Equal(t, models.SeverityCritical, emitted[0].Severity)
	assert.Equal(t, "Critical Alert", emitted[0].Title)
	assert.Equal(t, "Field A Moisture: 12% - Critical low reading", emitted[0].Message)
	assert.Equal(t, "3", emitted[0].SensorID)
	assert.False(t, emitted[0].Acknowledged)
}

func TestHighStatusEmitsWarningAlert(t *testing.T) {
	e := NewEngine()

	emitted := e.Evaluate([]models.Sensor{highSensor("7")})

	require.Len(t, emitted, 1)
	assert.Equal(t, models.SeverityWarning, emitted[0].Severity)
	assert.Equal(t, "Warning Alert", emitted[0].Title)
}

func TestNormalStatusEmitsNothing(t *testing.T) {
	e := NewEngine()

	assert.Empty(t, e.Evaluate([]models.Sensor{normalSensor("1")}))
	assert.Empty(t, e.Alerts())
}

func TestRepeatedEvaluationDoesNotDuplicate(t *testing.T) {
	e := NewEngine()

	first := e.Evaluate([]models.Sensor{lowSensor("3")})
	second := e.Evaluate([]models.Sensor{lowSensor("3")})

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Len(t, e.Alerts(), 1)
}

func TestOneAlertPerThresholdCrossing(t *testing.T) {
	e := NewEngine()

	// normal -> low -> low -> normal -> low: two crossings, two alerts,
	// never three. Recovery re-arms emission even though the first alert
	// stays unacknowledged.
	e.Evaluate([]models.Sensor{normalSensor("3")})
	e.Evaluate([]models.Sensor{lowSensor("3")})
	e.Evaluate([]models.Sensor{lowSensor("3")})
	e.Evaluate([]models.Sensor{normalSensor("3")})
	e.Evaluate([]models.Sensor{lowSensor("3")})

	assert.Len(t, e.Alerts(), 2)
}

func TestAcknowledgeReArmsWithoutRecovery(t *testing.T) {
	e := NewEngine()

	e.Evaluate([]models.Sensor{lowSensor("3")})
	alerts := e.Alerts()
	require.Len(t, alerts, 1)
	require.True(t, e.Acknowledge(alerts[0].ID))

	// Still low, no recovery in between: acknowledgment alone re-arms.
	emitted := e.Evaluate([]models.Sensor{lowSensor("3")})

	assert.Len(t, emitted, 1)
	assert.Len(t, e.Alerts(), 2)
}

func TestTwoCrossingsWithAckBetweenCreateTwoAlerts(t *testing.T) {
	e := NewEngine()

	e.Evaluate([]models.Sensor{lowSensor("3")})
	require.True(t, e.Acknowledge(e.Alerts()[0].ID))
	e.Evaluate([]models.Sensor{normalSensor("3")})
	e.Evaluate([]models.Sensor{lowSensor("3")})

	assert.Len(t, e.Alerts(), 2)
}

func TestRecoveryDoesNotAcknowledge(t *testing.T) {
	e := NewEngine()

	e.Evaluate([]models.Sensor{lowSensor("3")})
	e.Evaluate([]models.Sensor{normalSensor("3")})

	alerts := e.Alerts()
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Acknowledged)
	assert.Equal(t, 1, e.UnreadCount())
}

func TestAcknowledgeUnknownID(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.Acknowledge("nope"))
}

func TestIndependentSensors(t *testing.T) {
	e := NewEngine()

	emitted := e.Evaluate([]models.Sensor{lowSensor("1"), highSensor("2"), normalSensor("3")})

	assert.Len(t, emitted, 2)
	assert.Equal(t, 2, e.UnreadCount())
}

func TestAlertsNewestFirst(t *testing.T) {
	e := NewEngine()

	e.Evaluate([]models.Sensor{lowSensor("1")})
	e.Evaluate([]models.Sensor{highSensor("2")})

	alerts := e.Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, "2", alerts[0].SensorID)
	assert.Equal(t, "1", alerts[1].SensorID)
}

func TestClearAll(t *testing.T) {
	e := NewEngine()

	e.Evaluate([]models.Sensor{lowSensor("1"), highSensor("2")})
	e.ClearAll()

	assert.Empty(t, e.Alerts())
	assert.Equal(t, 0, e.UnreadCount())

	// Clearing also removes the dedup block, so a new crossing emits again.
	emitted := e.Evaluate([]models.Sensor{lowSensor("1")})
	assert.Len(t, emitted, 1)
}

func TestSinksReceiveEmittedAlerts(t *testing.T) {
	sink := &captureSink{}
	e := NewEngine(sink)

	e.Evaluate([]models.Sensor{lowSensor("1")})
	e.Evaluate([]models.Sensor{lowSensor("1")}) // deduped, no second push

	assert.Equal(t, 1, sink.count())
}
