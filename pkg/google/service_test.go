package google

import (
	"context"
	"net/http"
	"testing"

	"github.com/fintrack/fintrack/internal/test_utils"
	"github.com/fintrack/fintrack/pkg/monthly"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubClientProvider struct {
	authorized bool
}

func (p stubClientProvider) Client(ctx context.Context, userId int) (*http.Client, error) {
	if !p.authorized {
		return nil, ErrUnauthenticated
	}
	return http.DefaultClient, nil
}

type recordingWriter struct {
	title string
	rows  [][]any
}

func (w *recordingWriter) CreateSheet(ctx context.Context, title string, rows [][]any) (Spreadsheet, error) {
	w.title = title
	w.rows = rows
	return Spreadsheet{Id: "sheet-1", Url: "https://docs.google.com/spreadsheets/d/sheet-1"}, nil
}

func setupExport(t *testing.T, authorized bool) (*ServiceImpl, *recordingWriter) {
	repo := monthly.NewRepositoryStub()
	t.Cleanup(repo.Cleanup)
	var savings [monthly.MonthsInYear]decimal.Decimal
	savings[0] = decimal.NewFromInt(100)
	savings[11] = decimal.RequireFromString("50.5")
	require.NoError(t, repo.SaveSummary(context.Background(), test_utils.TestUserId, monthly.Savings, 2024, savings))

	writer := &recordingWriter{}
	service := NewService(stubClientProvider{authorized: authorized}, monthly.NewService(repo),
		func(ctx context.Context, httpClient *http.Client) (SheetWriter, error) {
			return writer, nil
		})
	return service, writer
}

func TestServiceImpl_ExportYear(t *testing.T) {
	t.Run("should write both series to a new spreadsheet", func(t *testing.T) {
		// given
		service, writer := setupExport(t, true)

		// when
		sheet, err := service.ExportYear(test_utils.UserContext(), 2024)

		// then
		require.NoError(t, err)
		assert.Equal(t, "sheet-1", sheet.Id)
		assert.Equal(t, "fintrack 2024", writer.title)
		require.Len(t, writer.rows, monthly.MonthsInYear+3)
		assert.Equal(t, []any{"Month", "Savings", "Expenses", "Expense items"}, writer.rows[0])
		assert.Equal(t, []any{"January", "100.00", "0.00", 0}, writer.rows[1])
		assert.Equal(t, []any{"December", "50.50", "0.00", 0}, writer.rows[12])
		assert.Equal(t, []any{"Total", "150.50", "0.00", ""}, writer.rows[13])
	})

	t.Run("should require Google authorization", func(t *testing.T) {
		service, writer := setupExport(t, false)

		_, err := service.ExportYear(test_utils.UserContext(), 2024)

		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Nil(t, writer.rows)
	})
}

func TestGoogleAuth_Client(t *testing.T) {
	// given
	store := NewTokenStoreStub()
	auth := NewGoogleAuth(store, testConfig())
	require.NoError(t, store.StartAuthorization(context.Background(), 7, "nonce"))

	// when
	_, errPending := auth.Client(context.Background(), 7)
	known, err := store.CompleteAuthorization(context.Background(), "nonce", &oauth2.Token{AccessToken: "a"})
	require.NoError(t, err)
	client, errDone := auth.Client(context.Background(), 7)

	// then
	assert.True(t, known)
	assert.ErrorIs(t, errPending, ErrUnauthenticated)
	require.NoError(t, errDone)
	assert.NotNil(t, client)
}
