package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Mode        string
	Environment string
	LogLevel    string
	Garage      GarageConfig
	OTelConfig  OTelConfig
}

type GarageConfig struct {
	SmallCapacity    int
	MediumCapacity   int
	LargeCapacity    int
	GracePeriodHours float64
	Small            RateConfig
	Medium           RateConfig
	Large            RateConfig
}

type RateConfig struct {
	Hourly   float64
	DailyMax float64
}

type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Mode:        getEnv("MODE", "cli"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		Garage: GarageConfig{
			SmallCapacity:    getEnvInt("GARAGE_SMALL_CAPACITY", 10),
			MediumCapacity:   getEnvInt("GARAGE_MEDIUM_CAPACITY", 6),
			LargeCapacity:    getEnvInt("GARAGE_LARGE_CAPACITY", 4),
			GracePeriodHours: getEnvFloat("GRACE_PERIOD_HOURS", 0.25),
			Small: RateConfig{
				Hourly:   getEnvFloat("SMALL_HOURLY_RATE", 2.0),
				DailyMax: getEnvFloat("SMALL_DAILY_MAX", 20.0),
			},
			Medium: RateConfig{
				Hourly:   getEnvFloat("MEDIUM_HOURLY_RATE", 3.0),
				DailyMax: getEnvFloat("MEDIUM_DAILY_MAX", 30.0),
			},
			Large: RateConfig{
				Hourly:   getEnvFloat("LARGE_HOURLY_RATE", 5.0),
				DailyMax: getEnvFloat("LARGE_DAILY_MAX", 50.0),
			},
		},
		OTelConfig: OTelConfig{
			Enabled:      getEnvBool("TELEMETRY_ENABLED", true),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "parking-garage-service"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil && i >= 0 {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
