// Package source obtains the raw production and quality datasets: a
// Google Sheets fetch with a local-workbook and last-snapshot fallback.
// Every failure path ends in an empty dataset, never a crash or a hang.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"agrodash/dataset"
)

// ErrSourceUnavailable wraps every remote-fetch failure so callers can
// switch to a fallback without inspecting transport details.
var ErrSourceUnavailable = errors.New("source unavailable")

var sheetIDRegex = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID pulls the document ID out of a full Google Sheets URL.
// A bare ID passes through unchanged.
func ExtractSheetID(sheetURL string) (string, error) {
	if m := sheetIDRegex.FindStringSubmatch(sheetURL); len(m) == 2 {
		return m[1], nil
	}
	if regexp.MustCompile(`^[a-zA-Z0-9-_]+$`).MatchString(sheetURL) {
		return sheetURL, nil
	}
	return "", fmt.Errorf("no sheet ID in %q", sheetURL)
}

// SheetsClient fetches worksheets through the public CSV export
// endpoint. Requests carry a bounded timeout and are rate limited so a
// refresh storm cannot trip Google's quota.
type SheetsClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *slog.Logger
}

// NewSheetsClient builds a client with the given per-request timeout.
func NewSheetsClient(timeout time.Duration, logger *slog.Logger) *SheetsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 4),
		baseURL:    "https://docs.google.com",
		logger:     logger,
	}
}

// SetBaseURL overrides the endpoint host. Used by tests.
func (c *SheetsClient) SetBaseURL(base string) { c.baseURL = base }

// FetchWorksheet downloads one worksheet of a document as CSV and
// converts it to a RawDataset. worksheet may be empty for the first
// tab. All failures return ErrSourceUnavailable-wrapped errors.
func (c *SheetsClient) FetchWorksheet(ctx context.Context, sheetURL, worksheet string) (*dataset.RawDataset, error) {
	sheetID, err := ExtractSheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv", c.baseURL, sheetID)
	if worksheet != "" {
		endpoint += "&sheet=" + url.QueryEscape(worksheet)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("sheet fetch failed", "sheet_id", sheetID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("sheet fetch rejected", "sheet_id", sheetID, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	ds, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	c.logger.Info("sheet fetched", "sheet_id", sheetID, "worksheet", worksheet, "rows", ds.Len())
	return ds, nil
}

// ParseCSV reads delimited text into a RawDataset. The first record is
// the header; short rows are padded implicitly by leaving cells unset.
func ParseCSV(r io.Reader) (*dataset.RawDataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &dataset.RawDataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	ds := &dataset.RawDataset{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		row := make(dataset.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
