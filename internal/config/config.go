// Package config loads runtime settings from the environment, after reading
// an optional .env file. Unset or malformed values keep their defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Address       string
	Interval      time.Duration
	SampleTimeout time.Duration
	AllPartitions bool
	Device        string
	LogLevel      string
	LogFormat     string
}

const (
	DefaultAddress       = "0.0.0.0:8080"
	DefaultInterval      = time.Second
	DefaultSampleTimeout = 2 * time.Second
)

func Load() *Config {
	godotenv.Load()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = DefaultAddress
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	all, _ := strconv.ParseBool(os.Getenv("DISK_ALL_PARTITIONS"))

	return &Config{
		Address:       addr,
		Interval:      durationEnv("POLL_INTERVAL", DefaultInterval),
		SampleTimeout: durationEnv("DISK_SAMPLE_TIMEOUT", DefaultSampleTimeout),
		AllPartitions: all,
		Device:        os.Getenv("DISK_DEVICE"),
		LogLevel:      logLevel,
		LogFormat:     logFormat,
	}
}

func durationEnv(key string, def time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
