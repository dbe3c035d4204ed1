package monthly

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MonthsInYear = 12

var ErrInvalidKind = errors.New("invalid monthly kind")
var ErrInvalidMonth = errors.New("month must be between 1 and 12")
var ErrInvalidYear = errors.New("invalid year")
var ErrInvalidCategory = errors.New("invalid expense category")
var ErrInvalidItem = errors.New("invalid expense item")
var ErrItemNotFound = errors.New("expense item not found")

// Kind selects which monthly series a summary belongs to.
type Kind string

const (
	Savings  Kind = "savings"
	Expenses Kind = "expenses"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case Savings:
		return Savings, nil
	case Expenses:
		return Expenses, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

type Category string

const (
	Housing        Category = "housing"
	Food           Category = "food"
	Transportation Category = "transportation"
	Utilities      Category = "utilities"
	Entertainment  Category = "entertainment"
	Healthcare     Category = "healthcare"
	Other          Category = "other"
)

var Categories = []Category{Housing, Food, Transportation, Utilities, Entertainment, Healthcare, Other}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == strings.ToLower(strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

type ExpenseItem struct {
	Id          uuid.UUID
	Date        time.Time
	Description string
	Category    Category
	Amount      decimal.Decimal
}

// MonthlyAmount is one month of a year. Month is 1-based.
type MonthlyAmount struct {
	Month  int
	Amount decimal.Decimal
	Items  []ExpenseItem
}

// Discrepancy marks a month whose recorded amount disagrees with its line items.
type Discrepancy struct {
	Month      int
	Recorded   decimal.Decimal
	ItemsTotal decimal.Decimal
	ItemsCount int
}

type YearStats struct {
	Total          decimal.Decimal
	Average        decimal.Decimal
	MonthsRecorded int
	// Highest and Lowest consider only non-zero months; both are 0 when there are none.
	HighestMonth int
	Highest      decimal.Decimal
	LowestMonth  int
	Lowest       decimal.Decimal
}

// YearView is a complete year of one series with derived figures.
type YearView struct {
	Kind          Kind
	Year          int
	Months        []MonthlyAmount
	Total         decimal.Decimal
	Average       decimal.Decimal
	Discrepancies []Discrepancy
}
