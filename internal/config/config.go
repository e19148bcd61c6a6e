package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration.
type Config struct {
	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string
	RedisAddr      string
	RedisPassword  string
	PushWebhookURL string
	AllowedOrigin  string
	Port           string
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (Config, error) {
	// load env variables
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	cfg := Config{
		InfluxDBURL:    os.Getenv("INFLUXDB_URL"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getEnv("INFLUXDB_BUCKET", "sensor_readings"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		PushWebhookURL: os.Getenv("PUSH_WEBHOOK_URL"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		Port:           getEnv("PORT", "8081"),
	}
	if cfg.InfluxDBURL == "" || cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		return Config{}, fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
