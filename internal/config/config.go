package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

type Config struct {
	Sensor   SensorConfig   `mapstructure:"sensor"`
	Bsec     BsecConfig     `mapstructure:"bsec"`
	Exporter ExporterConfig `mapstructure:"exporter"`
}

type SensorConfig struct {
	// Device is the I²C bus device, e.g. /dev/i2c-1.
	Device string `mapstructure:"device"`
	// Address selects the primary or secondary I²C address.
	Address string `mapstructure:"address"`

	InitialAmbientTempCelsius float32 `mapstructure:"initial_ambient_temp_celsius"`
}

type BsecConfig struct {
	// Config is the path of the engine configuration blob.
	Config string `mapstructure:"config"`

	TemperatureOffsetCelsius float32 `mapstructure:"temperature_offset_celsius"`

	// StateFile is where the engine state snapshot is persisted.
	StateFile string `mapstructure:"state_file"`

	// Subscriptions maps virtual sensor names to sample rate names.
	Subscriptions map[string]string `mapstructure:"subscriptions"`
}

type ExporterConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

func defaultSubscriptions() map[string]string {
	subscriptions := make(map[string]string, 11)
	for _, sensor := range []string{
		"co2_equivalent",
		"breath_voc_equivalent",
		"raw_temperature",
		"raw_pressure",
		"raw_humidity",
		"raw_gas",
		"stabilization_status",
		"run_in_status",
		"sensor_heat_compensated_temperature",
		"sensor_heat_compensated_humidity",
		"gas_percentage",
	} {
		subscriptions[sensor] = "lp"
	}
	return subscriptions
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	// Defaults setzen
	v.SetDefault("sensor.address", "primary")
	v.SetDefault("sensor.initial_ambient_temp_celsius", 20.0)
	v.SetDefault("bsec.config", "/etc/linux-bsec-exporter/bsec.conf")
	v.SetDefault("bsec.temperature_offset_celsius", 0.0)
	v.SetDefault("bsec.state_file", "/var/lib/linux-bsec-exporter/bsec-state.bin")
	v.SetDefault("bsec.subscriptions", defaultSubscriptions())
	v.SetDefault("exporter.listen_addr", "localhost:3953")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Sensor.Device == "" {
		return fmt.Errorf("config: sensor.device is required")
	}
	if c.Sensor.Address != "primary" && c.Sensor.Address != "secondary" {
		return fmt.Errorf("config: sensor.address must be primary or secondary, got %q", c.Sensor.Address)
	}
	if _, err := c.Bsec.SubscriptionRequests(); err != nil {
		return err
	}
	return nil
}

// SubscriptionRequests converts the configured subscription table into
// engine requests. Unknown sensor or rate names are configuration
// errors, never silently ignored.
func (b *BsecConfig) SubscriptionRequests() ([]engine.SubscriptionRequest, error) {
	requests := make([]engine.SubscriptionRequest, 0, len(b.Subscriptions))
	for sensorName, rateName := range b.Subscriptions {
		sensor, err := engine.ParseOutputKind(sensorName)
		if err != nil {
			return nil, fmt.Errorf("config: bsec.subscriptions: %w", err)
		}
		rate, err := engine.ParseSampleRate(rateName)
		if err != nil {
			return nil, fmt.Errorf("config: bsec.subscriptions[%s]: %w", sensorName, err)
		}
		requests = append(requests, engine.SubscriptionRequest{
			Sensor:     sensor,
			SampleRate: rate,
		})
	}
	return requests, nil
}
