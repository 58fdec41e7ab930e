// Package google reads the sales dataset from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salesplot/internal/core"
	"salesplot/internal/sources"
)

// DefaultRange covers the ten columns of the sales export on a sheet named "Sales".
const DefaultRange = "Sales!A:J"

// valuesGetter is the slice of the Sheets API the client needs.
type valuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s sheetsValues) Get(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Client struct {
	values        valuesGetter
	spreadsheetID string
	readRange     string
}

var _ sources.TransactionReader = (*Client)(nil)

// NewFromEnv creates a Sheets client using service-account credentials.
// Required: GOOGLE_SPREADSHEET_ID (or the spreadsheetID argument).
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, readRange string) (*Client, error) {
	if spreadsheetID == "" {
		spreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	}
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if readRange == "" {
		readRange = DefaultRange
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		values:        sheetsValues{svc: svc},
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// newSheetsService initializes a read-only Sheets service from service account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadTransactions fetches the configured range; its first row is the header.
func (c *Client) ReadTransactions(ctx context.Context) (core.Table, error) {
	if c.values == nil {
		return core.Table{}, errors.New("sheets service not initialized")
	}

	values, err := c.values.Get(ctx, c.spreadsheetID, c.readRange)
	if err != nil {
		return core.Table{}, fmt.Errorf("read %s: %w", c.readRange, err)
	}

	t, err := parseValues(values)
	if err != nil {
		return core.Table{}, fmt.Errorf("parse %s: %w", c.readRange, err)
	}

	slog.InfoContext(ctx, "Loaded transactions from Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"range", c.readRange,
		"rows", t.Len())
	return t, nil
}
