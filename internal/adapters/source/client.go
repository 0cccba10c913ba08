// Package source pulls time entries from the kiosk provider's REST API and
// shapes them into the staged payload key set. Pagination is a simple page
// loop; retry and backoff are the scheduler's concern, not this client's.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
)

// Default client configuration constants.
const (
	defaultPageSize  = 200
	defaultTimeout   = 60 * time.Second
	maxErrorBodySize = 800
)

// Client fetches attendance entries from the provider API.
type Client struct {
	baseURL     string
	entriesPath string
	keyID       string
	keySecret   string
	token       string
	pageSize    int
	httpClient  *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithCredentials sets the API key pair sent on every request.
func WithCredentials(keyID, keySecret string) Option {
	return func(c *Client) {
		c.keyID = keyID
		c.keySecret = keySecret
	}
}

// WithToken sets a personal access token. The API key pair takes precedence
// when both are configured.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithEntriesPath overrides the time-entries endpoint path.
func WithEntriesPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.entriesPath = path
		}
	}
}

// WithPageSize sets the page size requested from the API.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a provider client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		entriesPath: "/v1/time-entries",
		pageSize:    defaultPageSize,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// page is the provider's paged entry envelope. Some deployments return a
// bare entry list instead of the envelope; both shapes decode.
type page struct {
	Data     []entry `json:"data"`
	NextPage bool    `json:"nextPage"`
}

func (p *page) UnmarshalJSON(b []byte) error {
	body := bytes.TrimLeft(b, " \t\r\n")
	if len(body) > 0 && body[0] == '[' {
		p.NextPage = false
		return json.Unmarshal(body, &p.Data)
	}

	type envelope page // drop methods to avoid recursion
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	*p = page(e)
	return nil
}

// entry is one provider time entry. The provider has shipped both field
// spellings over time, so both are accepted.
type entry struct {
	StartedAt       string `json:"startedAt"`
	StartAt         string `json:"startAt"`
	EndedAt         string `json:"endedAt"`
	EndAt           string `json:"endAt"`
	Type            string `json:"type"`
	EntryType       string `json:"entryType"`
	DurationSeconds *int64 `json:"durationSeconds"`
	Person          named  `json:"person"`
	Group           named  `json:"group"`
	Activity        named  `json:"activity"`
	Kiosk           named  `json:"kiosk"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
	LastEditedOn    string `json:"lastEditedOn"`
}

type named struct {
	Name string `json:"name"`
}

// Entries fetches every entry in [from, to] and returns staged payload maps.
func (c *Client) Entries(ctx context.Context, from, to time.Time) ([]map[string]string, error) {
	var payloads []map[string]string

	for pageNum := 1; ; pageNum++ {
		p, err := c.fetchPage(ctx, pageNum, from, to)
		if err != nil {
			return nil, err
		}
		if len(p.Data) == 0 {
			break
		}

		for i := range p.Data {
			payloads = append(payloads, p.Data[i].payload())
		}

		if !p.NextPage && len(p.Data) < c.pageSize {
			break
		}
	}

	return payloads, nil
}

// fetchPage requests one page of entries.
func (c *Client) fetchPage(ctx context.Context, pageNum int, from, to time.Time) (page, error) {
	u, err := url.Parse(c.baseURL + c.entriesPath)
	if err != nil {
		return page{}, fmt.Errorf("%w: %w", ErrSourceAPI, err)
	}
	q := u.Query()
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	q.Set("page", strconv.Itoa(pageNum))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return page{}, fmt.Errorf("%w: %w", ErrSourceAPI, err)
	}
	req.Header.Set("Accept", "application/json")
	switch {
	case c.keyID != "":
		req.Header.Set("X-API-KEY-ID", c.keyID)
		req.Header.Set("X-API-KEY-SECRET", c.keySecret)
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("%w: %w", ErrSourceAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return page{}, fmt.Errorf("%w: status %d: %s", ErrSourceAPI, resp.StatusCode, body)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return page{}, fmt.Errorf("%w: decode page %d: %w", ErrSourceAPI, pageNum, err)
	}
	return p, nil
}

// payload maps an API entry onto the staged payload key set. Absent source
// fields stay absent in the map.
func (e *entry) payload() map[string]string {
	p := make(map[string]string)

	start := firstOf(e.StartedAt, e.StartAt)
	end := firstOf(e.EndedAt, e.EndAt)
	ts := firstOf(start, end)

	setIf(p, model.KeyDate, isoDate(ts))
	setIf(p, model.KeyTime, isoTime(ts))
	setIf(p, model.KeyFullName, e.Person.Name)
	setIf(p, model.KeyGroup, e.Group.Name)
	setIf(p, model.KeyEntryType, firstOf(e.Type, e.EntryType))
	setIf(p, model.KeyActivity, e.Activity.Name)
	setIf(p, model.KeyKioskName, e.Kiosk.Name)
	setIf(p, model.KeyCreatedOn, e.CreatedAt)
	setIf(p, model.KeyLastEditedOn, firstOf(e.UpdatedAt, e.LastEditedOn))
	if e.DurationSeconds != nil {
		p[model.KeyDuration] = secToHMS(*e.DurationSeconds)
	}

	return p
}

// isoDate extracts YYYY-MM-DD from an ISO timestamp string.
func isoDate(ts string) string {
	if len(ts) < 10 {
		return ""
	}
	return ts[:10]
}

// isoTime extracts HH:MM:SS from an ISO timestamp string.
func isoTime(ts string) string {
	if len(ts) < 19 || ts[10] != 'T' {
		return ""
	}
	return ts[11:19]
}

// secToHMS renders whole seconds as an H:MM:SS duration string.
func secToHMS(sec int64) string {
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setIf(p map[string]string, key, value string) {
	if value != "" {
		p[key] = value
	}
}
