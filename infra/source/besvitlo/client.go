// Package besvitlo fetches queue schedules from the be-svitlo API.
package besvitlo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/svitlosync/config"
	"github.com/kilianp07/svitlosync/core/logger"
	"github.com/kilianp07/svitlosync/core/source"
	"github.com/kilianp07/svitlosync/core/timetable"
)

// Client implements source.ScheduleSource.
type Client struct {
	client  *http.Client
	apiURL  string
	queue   string
	headers map[string]string
	loc     *time.Location
	log     logger.Logger
}

// NewClient builds a client for cfg. The location decides which calendar
// date a time.Time belongs to.
func NewClient(cfg config.SourceConfig, loc *time.Location, log logger.Logger) *Client {
	if loc == nil {
		loc = time.Local
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		apiURL:  cfg.APIURL,
		queue:   cfg.Queue,
		headers: cfg.Headers,
		loc:     loc,
		log:     log,
	}
}

var _ source.ScheduleSource = (*Client)(nil)

// Fetch returns the windows announced for date. A missing date or queue is
// an empty schedule, not a failure.
func (c *Client) Fetch(ctx context.Context, date time.Time) ([]timetable.RawWindow, error) {
	resp, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	day := date.In(c.loc).Format(DateLayout)
	windows, found := resp.Windows(day, c.queue)
	if !found {
		c.log.Warnf("no schedule for queue %s on %s", c.queue, day)
		return []timetable.RawWindow{}, nil
	}
	if windows == nil {
		windows = []timetable.RawWindow{}
	}
	return windows, nil
}

func (c *Client) fetchAll(ctx context.Context) (Response, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", source.ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("queue", c.queue)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", source.ErrUnavailable, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", source.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d, body: %.200s", source.ErrUnavailable, resp.StatusCode, body)
	}
	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", source.ErrUnavailable, err)
	}
	c.log.Debugf("fetched %d schedule days for queue %s", len(out), c.queue)
	return out, nil
}
