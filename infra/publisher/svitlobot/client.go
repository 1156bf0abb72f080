// Package svitlobot submits weekly timetables to the svitlobot channel API.
package svitlobot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/svitlosync/config"
	"github.com/kilianp07/svitlosync/core/logger"
	"github.com/kilianp07/svitlosync/core/publisher"
)

// Client implements publisher.Publisher.
type Client struct {
	client     *http.Client
	apiURL     string
	channelKey string
	log        logger.Logger
}

// NewClient builds a client for cfg.
func NewClient(cfg config.PublisherConfig, log logger.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:     &http.Client{Timeout: timeout},
		apiURL:     cfg.APIURL,
		channelKey: cfg.ChannelKey,
		log:        log,
	}
}

var _ publisher.Publisher = (*Client)(nil)

// Publish sends timetableData, the seven day codes joined by ';'. The
// separator goes over the wire percent-encoded.
func (c *Client) Publish(ctx context.Context, timetableData string) error {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return fmt.Errorf("%w: parse url: %v", publisher.ErrUnreachable, err)
	}
	q := u.Query()
	q.Set("channel_key", c.channelKey)
	q.Set("timetableData", timetableData)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", publisher.ErrUnreachable, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", publisher.ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status code: %d, body: %s", publisher.ErrRejected, resp.StatusCode, body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	c.log.Debugf("timetable accepted with status %d", resp.StatusCode)
	return nil
}
