package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abrezinsky/clubdash/internal/logger"
)

var (
	// ErrDataUnavailable means a tab could not be fetched or parsed
	ErrDataUnavailable = errors.New("sheet data unavailable")
	// ErrReadOnly is returned by AppendRow when no write endpoint is configured
	ErrReadOnly = errors.New("sheet is read-only")
)

// Client defines the spreadsheet operations the dashboard needs
type Client interface {
	// FetchTable reads a whole tab
	FetchTable(ctx context.Context, tab string) (*Table, error)
	// AppendRow adds a row at the bottom of a tab
	AppendRow(ctx context.Context, tab string, row []string) error
}

// HTTPClient reads a published Google spreadsheet through its CSV export and
// appends rows through an Apps Script web app.
type HTTPClient struct {
	baseURL    string
	sheetID    string
	writeURL   string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a client for the spreadsheet sheetID
func NewHTTPClient(baseURL, sheetID, writeURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, sheetID, writeURL, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL, sheetID, writeURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sheetID:    sheetID,
		writeURL:   writeURL,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *HTTPClient) tableURL(tab string) string {
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.baseURL, url.PathEscape(c.sheetID), url.QueryEscape(tab))
}

// FetchTable downloads tab as CSV. Any failure wraps ErrDataUnavailable.
func (c *HTTPClient) FetchTable(ctx context.Context, tab string) (*Table, error) {
	u := c.tableURL(tab)
	c.log.Debug("Sheet request", "method", "GET", "url", u, "tab", tab)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, tab, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("Sheet request failed", "tab", tab, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrDataUnavailable, tab, resp.StatusCode)
	}
	// A private or missing spreadsheet answers 200 with a sign-in page.
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, fmt.Errorf("%w: %s: spreadsheet is not published", ErrDataUnavailable, tab)
	}

	t, err := ReadCSV(tab, resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Sheet response", "tab", tab, "rows", len(t.Rows))
	return t, nil
}

// ReadCSV parses a CSV export into a Table
func ReadCSV(tab string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, tab, err)
	}
	return NewTable(tab, records), nil
}

type appendRequest struct {
	Sheet  string   `json:"sheet"`
	Values []string `json:"values"`
}

type appendResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

// AppendRow posts row to the write endpoint
func (c *HTTPClient) AppendRow(ctx context.Context, tab string, row []string) error {
	if c.writeURL == "" {
		return ErrReadOnly
	}
	body, err := json.Marshal(appendRequest{Sheet: tab, Values: row})
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	c.log.Debug("Sheet append", "url", c.writeURL, "tab", tab, "cells", len(row))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("append to %s: HTTP %d", tab, resp.StatusCode)
	}

	var out appendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("append to %s: failed to decode response: %w", tab, err)
	}
	if out.Result != "success" {
		return fmt.Errorf("append to %s: %s", tab, out.Error)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
