package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Spreadsheet struct {
	Id  string
	Url string
}

// SheetWriter creates a spreadsheet holding the given rows, starting at A1.
type SheetWriter interface {
	CreateSheet(ctx context.Context, title string, rows [][]any) (Spreadsheet, error)
}

type SheetsWriter struct {
	client     *sheets.Service
	retryDelay time.Duration
}

func NewSheetsWriter(ctx context.Context, httpClient *http.Client) (*SheetsWriter, error) {
	client, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsWriter{client: client, retryDelay: 10 * time.Second}, nil
}

func (w *SheetsWriter) CreateSheet(ctx context.Context, title string, rows [][]any) (Spreadsheet, error) {
	spreadsheet, err := w.client.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return Spreadsheet{}, fmt.Errorf("creating spreadsheet: %w", err)
	}
	log.Infof("Created spreadsheet %q (%s)", title, spreadsheet.SpreadsheetId)

	values := &sheets.ValueRange{Values: rows}
	err = retry.Do(
		func() error {
			_, err := w.client.Spreadsheets.Values.Update(spreadsheet.SpreadsheetId, "A1", values).
				ValueInputOption("USER_ENTERED").
				Context(ctx).
				Do()
			return err
		},
		retry.Context(ctx),
		retry.RetryIf(isRateLimited),
		retry.Attempts(3),
		retry.Delay(w.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return Spreadsheet{}, fmt.Errorf("writing rows to spreadsheet: %w", err)
	}
	return Spreadsheet{Id: spreadsheet.SpreadsheetId, Url: spreadsheet.SpreadsheetUrl}, nil
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		log.Warnf("Google Sheets rate limit hit, will retry: %v", err)
		return true
	}
	return false
}
