package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultSourceURL is the be-svitlo schedule endpoint.
const DefaultSourceURL = "https://be-svitlo.oe.if.ua/schedule-by-queue"

// DefaultPublisherURL is the svitlobot timetable endpoint.
const DefaultPublisherURL = "https://api.svitlobot.in.ua/website/timetableEditEvent"

// DefaultHeaders mimic a browser; the upstream rejects bare clients.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7",
	"Referer":         "https://svitlo.oe.if.ua/",
	"Origin":          "https://svitlo.oe.if.ua",
}

// SourceConfig selects the upstream schedule and the queue to follow.
type SourceConfig struct {
	APIURL         string `json:"api_url"`
	Queue          string `json:"queue"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Timezone is the IANA zone that decides what today is.
	Timezone string            `json:"timezone"`
	Headers  map[string]string `json:"headers"`
}

func (c *SourceConfig) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultSourceURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Kyiv"
	}
	if len(c.Headers) == 0 {
		c.Headers = make(map[string]string, len(DefaultHeaders))
		for k, v := range DefaultHeaders {
			c.Headers[k] = v
		}
	}
}

func (c SourceConfig) Validate() error {
	if c.Queue == "" {
		return errors.New("queue is required")
	}
	if err := validateURL(c.APIURL); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c SourceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Timeout returns the per-request timeout.
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PublisherConfig points at the downstream timetable endpoint.
type PublisherConfig struct {
	APIURL         string `json:"api_url"`
	ChannelKey     string `json:"channel_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c *PublisherConfig) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultPublisherURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// PlaceholderChannelKey is the value shipped in sample configs.
const PlaceholderChannelKey = "ВАШ_КЛЮЧ_СЮДИ"

func (c PublisherConfig) Validate() error {
	if c.ChannelKey == "" || c.ChannelKey == PlaceholderChannelKey {
		return errors.New("channel_key is required")
	}
	return validateURL(c.APIURL)
}

// Timeout returns the per-request timeout.
func (c PublisherConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig controls the poll loop.
type SyncConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
}

func (c *SyncConfig) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 300
	}
}

func (c SyncConfig) Validate() error {
	if c.IntervalSeconds < 1 {
		return fmt.Errorf("interval_seconds must be positive, got %d", c.IntervalSeconds)
	}
	return nil
}

// Interval returns the pause between passes.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url %q must be http or https", raw)
	}
	return nil
}
