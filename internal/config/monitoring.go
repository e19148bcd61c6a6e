package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// SensorDef is one entry of the sensor inventory file.
type SensorDef struct {
	ID        string   `mapstructure:"id"`
	Name      string   `mapstructure:"name"`
	Category  string   `mapstructure:"category"`
	Unit      string   `mapstructure:"unit"`
	Latitude  *float64 `mapstructure:"latitude"`
	Longitude *float64 `mapstructure:"longitude"`
}

// Monitoring holds the threshold rules and the sensor inventory, read from
// monitoring.yaml. Defaults keep the service usable without a file.
type Monitoring struct {
	Thresholds map[string]models.Thresholds `mapstructure:"thresholds"`
	Sensors    []SensorDef                  `mapstructure:"sensors"`
}

// ThresholdsFor returns the rules for a category, falling back to a band that
// never fires for unknown categories.
func (m Monitoring) ThresholdsFor(category models.SensorCategory) models.Thresholds {
	if t, ok := m.Thresholds[string(category)]; ok {
		return t
	}
	return models.Thresholds{Low: -1e18, High: 1e18}
}

// LoadMonitoring reads monitoring.yaml from the given directory.
func LoadMonitoring(path string) (Monitoring, error) {
	v := viper.New()
	v.SetConfigName("monitoring")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: error reading monitoring config, using defaults: %v", err)
	}

	var m Monitoring
	if err := v.Unmarshal(&m); err != nil {
		return Monitoring{}, err
	}
	return m, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("thresholds.soil_moisture.low", 30.0)
	v.SetDefault("thresholds.soil_moisture.high", 70.0)
	v.SetDefault("thresholds.temperature.low", 10.0)
	v.SetDefault("thresholds.temperature.high", 35.0)
	v.SetDefault("thresholds.water_level.low", 20.0)
	v.SetDefault("thresholds.water_level.high", 90.0)
}
