package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/pkg/monthly"
	"github.com/fintrack/fintrack/pkg/user"
	log "github.com/sirupsen/logrus"
)

type ClientProvider interface {
	Client(ctx context.Context, userId int) (*http.Client, error)
}

type YearProvider interface {
	GetYear(ctx context.Context, kind monthly.Kind, year int) (monthly.YearView, error)
}

type WriterFactory func(ctx context.Context, httpClient *http.Client) (SheetWriter, error)

type Service interface {
	ExportYear(ctx context.Context, year int) (Spreadsheet, error)
}

type ServiceImpl struct {
	auth      ClientProvider
	years     YearProvider
	newWriter WriterFactory
}

func NewService(auth ClientProvider, years YearProvider, newWriter WriterFactory) *ServiceImpl {
	if newWriter == nil {
		newWriter = func(ctx context.Context, httpClient *http.Client) (SheetWriter, error) {
			return NewSheetsWriter(ctx, httpClient)
		}
	}
	return &ServiceImpl{auth: auth, years: years, newWriter: newWriter}
}

// ExportYear writes savings and expenses of the year side by side into a new spreadsheet.
func (s *ServiceImpl) ExportYear(ctx context.Context, year int) (Spreadsheet, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Spreadsheet{}, fmt.Errorf("failed to get current user: %w", err)
	}

	savings, err := s.years.GetYear(ctx, monthly.Savings, year)
	if err != nil {
		return Spreadsheet{}, err
	}
	expenses, err := s.years.GetYear(ctx, monthly.Expenses, year)
	if err != nil {
		return Spreadsheet{}, err
	}

	client, err := s.auth.Client(ctx, userId)
	if err != nil {
		return Spreadsheet{}, err
	}
	writer, err := s.newWriter(ctx, client)
	if err != nil {
		return Spreadsheet{}, err
	}

	sheet, err := writer.CreateSheet(ctx, fmt.Sprintf("fintrack %d", year), yearRows(savings, expenses))
	if err != nil {
		log.Errorf("failed to export year %d for user %d: %v", year, userId, err)
		return Spreadsheet{}, err
	}
	return sheet, nil
}

func yearRows(savings, expenses monthly.YearView) [][]any {
	rows := make([][]any, 0, monthly.MonthsInYear+3)
	rows = append(rows, []any{"Month", "Savings", "Expenses", "Expense items"})
	for i := 0; i < monthly.MonthsInYear; i++ {
		rows = append(rows, []any{
			time.Month(i + 1).String(),
			amountAt(savings, i),
			amountAt(expenses, i),
			itemsAt(expenses, i),
		})
	}
	rows = append(rows, []any{"Total", savings.Total.StringFixed(2), expenses.Total.StringFixed(2), ""})
	rows = append(rows, []any{"Average", savings.Average.StringFixed(2), expenses.Average.StringFixed(2), ""})
	return rows
}

func amountAt(view monthly.YearView, i int) string {
	if i >= len(view.Months) {
		return "0.00"
	}
	return view.Months[i].Amount.StringFixed(2)
}

func itemsAt(view monthly.YearView, i int) int {
	if i >= len(view.Months) {
		return 0
	}
	return len(view.Months[i].Items)
}
