package inpainting

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultEndpoint   = "https://api-inference.huggingface.co/models/meryemarpaci/sd2base-inpainting-lora"
	DefaultTimeout    = 60 * time.Second
	DefaultTargetSize = 512

	DefaultSteps         = 50
	DefaultGuidanceScale = 7.5
	DefaultStrength      = 1.0
)

// Config describes the hosted inference endpoint.
type Config struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	TargetSize int
}

// ConfigFromEnv reads INPAINTING_API_URL, HUGGINGFACE_API_TOKEN,
// INPAINTING_TIMEOUT and INPAINTING_TARGET_SIZE.
func ConfigFromEnv() Config {
	cfg := Config{
		Endpoint:   strings.TrimSpace(os.Getenv("INPAINTING_API_URL")),
		Token:      strings.TrimSpace(os.Getenv("HUGGINGFACE_API_TOKEN")),
		Timeout:    DefaultTimeout,
		TargetSize: DefaultTargetSize,
	}
	if raw := strings.TrimSpace(os.Getenv("INPAINTING_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if raw := strings.TrimSpace(os.Getenv("INPAINTING_TARGET_SIZE")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.TargetSize = v
		}
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.TargetSize <= 0 {
		c.TargetSize = DefaultTargetSize
	}
	return c
}
