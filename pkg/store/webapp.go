package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"forecastlog/pkg/record"

	log "github.com/sirupsen/logrus"
)

const (
	// okBody is the literal body the web app returns for a successful write.
	okBody       = "OK"
	maxBodyBytes = 10 << 20

	actionRefreshDashboard = "refreshDashboard"
)

// Config is the immutable connection setup for a WebAppClient.
type Config struct {
	// URL of the deployed web app, usually ending in /exec.
	URL string
	// Token is sent as the token query parameter on every request.
	Token    string
	Timeouts Timeouts
	// HTTPClient is optional. Its own Timeout is left alone; each call is
	// bounded by the matching entry in Timeouts.
	HTTPClient *http.Client
}

// WebAppClient talks to a spreadsheet automation web app over a single
// endpoint, selecting the operation with query parameters and POST bodies.
type WebAppClient struct {
	base     *url.URL
	token    string
	timeouts Timeouts
	http     *http.Client
}

var _ RecordStore = (*WebAppClient)(nil)

func NewWebAppClient(cfg Config) (*WebAppClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("web app URL is required")
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid web app URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid web app URL scheme %q", base.Scheme)
	}
	if cfg.Token == "" {
		return nil, errors.New("shared token is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &WebAppClient{
		base:     base,
		token:    cfg.Token,
		timeouts: cfg.Timeouts.WithDefaults(),
		http:     client,
	}, nil
}

// ListPartitions returns the tab names known to the store, in store order.
func (c *WebAppClient) ListPartitions(ctx context.Context) ([]string, error) {
	const op = "list tabs"
	body, err := c.do(ctx, op, c.timeouts.List, http.MethodGet, url.Values{"listSheets": {"1"}}, nil)
	if err != nil {
		return []string{}, err
	}
	names, err := record.DecodeTabNames(body)
	if err != nil {
		return []string{}, c.shapeError(op, err)
	}
	return names, nil
}

// AppendRecord writes r to its tab. The store creates the tab if needed.
func (c *WebAppClient) AppendRecord(ctx context.Context, r record.Record) error {
	const op = "append"
	payload, err := json.Marshal(r)
	if err != nil {
		return &Error{Op: op, Kind: KindServer, Err: err}
	}
	body, err := c.do(ctx, op, c.timeouts.Append, http.MethodPost, nil, payload)
	if err != nil {
		return err
	}
	if err := expectOK(op, body); err != nil {
		return err
	}
	log.WithField("tab", r.ProjectTab).Debug("appended record")
	return nil
}

// FetchRecords reads the default tab of a single-tab deployment.
func (c *WebAppClient) FetchRecords(ctx context.Context) (record.Table, error) {
	const op = "fetch records"
	body, err := c.do(ctx, op, c.timeouts.Partition, http.MethodGet, nil, nil)
	if err != nil {
		return record.EmptyRecordTable(), err
	}
	records, err := record.DecodeRecords(body)
	if err != nil {
		return record.EmptyRecordTable(), c.shapeError(op, err)
	}
	return record.RecordsTable(records), nil
}

// FetchPartitionRecords reads every record of one tab.
func (c *WebAppClient) FetchPartitionRecords(ctx context.Context, tab string) (record.Table, error) {
	const op = "fetch tab"
	tab = strings.TrimSpace(tab)
	if tab == "" {
		return record.EmptyRecordTable(), &Error{Op: op, Kind: KindServer, Err: ErrNoPartition}
	}
	body, err := c.do(ctx, op, c.timeouts.Partition, http.MethodGet, url.Values{"projectTab": {tab}}, nil)
	if err != nil {
		return record.EmptyRecordTable(), err
	}
	records, err := record.DecodeRecords(body)
	if err != nil {
		return record.EmptyRecordTable(), c.shapeError(op, err)
	}
	for i := range records {
		if records[i].ProjectTab == "" {
			records[i].ProjectTab = tab
		}
	}
	return record.RecordsTable(records), nil
}

// FetchDashboard reads the aggregate built by the store across all tabs.
func (c *WebAppClient) FetchDashboard(ctx context.Context) (record.Table, error) {
	const op = "fetch dashboard"
	body, err := c.do(ctx, op, c.timeouts.Dashboard, http.MethodGet, url.Values{"dashboard": {"1"}}, nil)
	if err != nil {
		return record.EmptyDashboardTable(), err
	}
	rows, err := record.DecodeDashboardRows(body)
	if err != nil {
		return record.EmptyDashboardTable(), c.shapeError(op, err)
	}
	return record.DashboardTable(rows), nil
}

// RefreshDashboard asks the store to rebuild the aggregate. It does not fetch it.
func (c *WebAppClient) RefreshDashboard(ctx context.Context) error {
	const op = "refresh dashboard"
	payload, _ := json.Marshal(map[string]string{"action": actionRefreshDashboard})
	body, err := c.do(ctx, op, c.timeouts.Refresh, http.MethodPost, nil, payload)
	if err != nil {
		return err
	}
	return expectOK(op, body)
}

func (c *WebAppClient) do(ctx context.Context, op string, timeout time.Duration, method string, params url.Values, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(params), reqBody)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = c.redact(err)
		log.WithFields(log.Fields{"op": op, "elapsed": time.Since(start)}).Warnf("network error: %v", err)
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = c.redact(err)
		log.WithField("op", op).Warnf("reading response: %v", err)
		return nil, &Error{Op: op, Kind: KindTransport, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := truncate(strings.TrimSpace(string(body)))
		log.WithFields(log.Fields{"op": op, "status": resp.StatusCode}).Warnf("server error: %s", text)
		return nil, &Error{Op: op, Kind: KindServer, StatusCode: resp.StatusCode, Body: text}
	}
	log.WithFields(log.Fields{"op": op, "status": resp.StatusCode, "bytes": len(body)}).Debug("store call complete")
	return body, nil
}

func (c *WebAppClient) endpoint(params url.Values) string {
	u := *c.base
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String()
}

// redact strips the token from errors that echo the request URL.
func (c *WebAppClient) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: c.base.Redacted(), Err: ue.Err}
	}
	return err
}

func (c *WebAppClient) shapeError(op string, err error) error {
	log.WithField("op", op).Warnf("rejecting response: %v", err)
	return &Error{Op: op, Kind: KindShape, StatusCode: http.StatusOK, Err: err}
}

func expectOK(op string, body []byte) error {
	text := strings.TrimSpace(string(body))
	if text == okBody {
		return nil
	}
	log.WithField("op", op).Warnf("unexpected reply: %s", truncate(text))
	return &Error{Op: op, Kind: KindServer, StatusCode: http.StatusOK, Body: truncate(text)}
}
