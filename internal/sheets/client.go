// Package sheets is the HTTP client for the spreadsheet proxy that stores
// schedule rows.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
)

// Actions understood by the proxy.
const (
	ActionRead           = "read"
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionAvailableWeeks = "getAvailableWeeks"
)

// ErrRejected is returned when the proxy answers with success:false.
var ErrRejected = errors.New("remote rejected request")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Action string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Action, e.Code, e.Body)
}

type response struct {
	Success  bool     `json:"success"`
	Data     []Row    `json:"data"`
	RowIndex int      `json:"rowIndex"`
	Weeks    []string `json:"weeks"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type mutationRequest struct {
	Action string `json:"action"`
	*Row
}

type deleteRequest struct {
	Action   string `json:"action"`
	RowIndex int    `json:"rowIndex"`
}

// Client issues one request per call against a single endpoint. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a client for endpoint. The timeout bounds every request.
func New(endpoint string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", endpoint)
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Read returns every row stored for week.
func (c *Client) Read(ctx context.Context, week models.WeekKey) ([]Row, error) {
	resp, err := c.get(ctx, ActionRead, url.Values{"week_start": {week.SheetDate()}})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Create appends row and returns its new row index.
func (c *Client) Create(ctx context.Context, row Row) (int, error) {
	row.RowIndex = 0
	resp, err := c.post(ctx, ActionCreate, mutationRequest{Action: ActionCreate, Row: &row})
	if err != nil {
		return 0, err
	}
	if resp.RowIndex == 0 {
		logger.Warn("Create response carried no row index", "task", row.Task, "day", row.Day)
	}
	return resp.RowIndex, nil
}

// Update overwrites the row at row.RowIndex with the full field set.
func (c *Client) Update(ctx context.Context, row Row) error {
	if row.RowIndex == 0 {
		return fmt.Errorf("%s: missing row index", ActionUpdate)
	}
	_, err := c.post(ctx, ActionUpdate, mutationRequest{Action: ActionUpdate, Row: &row})
	return err
}

// Delete removes the row at rowIndex.
func (c *Client) Delete(ctx context.Context, rowIndex int) error {
	if rowIndex == 0 {
		return fmt.Errorf("%s: missing row index", ActionDelete)
	}
	_, err := c.post(ctx, ActionDelete, deleteRequest{Action: ActionDelete, RowIndex: rowIndex})
	return err
}

// AvailableWeeks returns every week that has at least one row. Dates the
// client cannot parse are skipped.
func (c *Client) AvailableWeeks(ctx context.Context) ([]models.WeekKey, error) {
	resp, err := c.get(ctx, ActionAvailableWeeks, nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[models.WeekKey]bool, len(resp.Weeks))
	weeks := make([]models.WeekKey, 0, len(resp.Weeks))
	for _, raw := range resp.Weeks {
		week, err := ParseWeekStart(raw)
		if err != nil {
			logger.Warn("Skipping unparsable week", "week_start", raw, "error", err)
			continue
		}
		if !seen[week] {
			seen[week] = true
			weeks = append(weeks, week)
		}
	}
	return weeks, nil
}

func (c *Client) get(ctx context.Context, action string, params url.Values) (*response, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("action", action)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(action, req)
}

func (c *Client) post(ctx context.Context, action string, body interface{}) (*response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(action, req)
}

func (c *Client) do(action string, req *http.Request) (*response, error) {
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", action, err)
	}
	logger.Debug("Remote call finished", "action", action, "status", res.StatusCode, "elapsed", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Action: action, Code: res.StatusCode, Body: string(body)}
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: malformed response: %w", action, err)
	}
	if !resp.Success {
		if resp.Error != "" {
			return nil, fmt.Errorf("%s: %w: %s", action, ErrRejected, resp.Error)
		}
		return nil, fmt.Errorf("%s: %w", action, ErrRejected)
	}
	return &resp, nil
}
