package alerting

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// WebhookSink forwards alerts to an external push endpoint. The tag field
// carries the sensor ID so the receiving platform can collapse duplicate
// notifications for the same sensor.
type WebhookSink struct {
	client *resty.Client
	url    string
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
}

func NewWebhookSink(url string) *WebhookSink {
	client := resty.New().SetTimeout(5 * time.Second)
	return &WebhookSink{client: client, url: url}
}

// Notify posts the alert to the webhook. A dropped push is not an error:
// failures are logged and the alert stays recorded either way.
func (w *WebhookSink) Notify(alert models.Alert) {
	go func() {
		payload := webhookPayload{
			Title: alert.Title,
			Body:  alert.Message,
			Tag:   alert.SensorID,
		}
		resp, err := w.client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(w.url)
		if err != nil {
			log.Printf("Push webhook delivery failed: %v", err)
			return
		}
		if resp.IsError() {
			log.Printf("Push webhook returned status %d", resp.StatusCode())
		}
	}()
}
