package core

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Person is a household member with a monthly baseline income.
	Person struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		Income       float64 `json:"income"`
		LinkedUserID string  `json:"linkedUserId,omitempty"`
	}

	// Category allocates a target fraction of effective household income.
	// TargetPercent is expressed as 0-100.
	Category struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		TargetPercent float64 `json:"targetPercent"`
	}

	Transaction struct {
		ID               string          `json:"id"`
		Description      string          `json:"description"`
		Amount           float64         `json:"amount"`
		CategoryID       string          `json:"categoryId,omitempty"`
		PaidBy           string          `json:"paidBy"`
		Type             TransactionType `json:"type"`
		IsIncrement      bool            `json:"isIncrement"`
		IsRecurring      bool            `json:"isRecurring"`
		IsCreditCard     bool            `json:"isCreditCard"`
		ExcludeFromSplit bool            `json:"excludeFromSplit"`
		IsForecast       bool            `json:"isForecast"`
		Date             Date            `json:"date"`
		CreatedAt        time.Time       `json:"createdAt,omitempty"`
	}

	// CategoryStatistics is the historical mean/stddev of expense amounts
	// for one category over a trailing window. Computed by the statistics
	// service, consumed by the outlier detector.
	CategoryStatistics struct {
		CategoryID        string  `json:"categoryId"`
		Mean              float64 `json:"mean"`
		StandardDeviation float64 `json:"standardDeviation"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrEmptyDescription    = errors.New("empty description")
	ErrExpenseNeedsCtg     = errors.New("expense transaction requires a category")
	ErrIncomeWithCategory  = errors.New("income transaction must not carry a category")
	ErrInvalidDate         = errors.New("invalid date")
	ErrEmptyName           = errors.New("empty name")
	ErrNegativeIncome      = errors.New("income cannot be negative")
	ErrInvalidTargetShare  = errors.New("target percent must be between 0 and 100")
	ErrNoReplacementPerson = errors.New("no replacement person available")
)

// goalCategoryNames are the normalized names of goal/savings categories.
// For these, exceeding the target is the desirable outcome and they are
// excluded from the fair split.
var goalCategoryNames = map[string]bool{
	"liberdade financeira": true,
	"metas":                true,
}

// freedomCategoryName is the designated category of the financial-freedom
// health factor.
const freedomCategoryName = "liberdade financeira"

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCategoryName lowercases a category name and strips accents so
// that "Liberdade Financeira" and "liberdade financeira" compare equal.
func NormalizeCategoryName(name string) string {
	folded, _, err := transform.String(accentFolder, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// IsGoalCategory reports whether the category name designates a goal/savings
// category with inverted budget semantics.
func IsGoalCategory(name string) bool {
	return goalCategoryNames[NormalizeCategoryName(name)]
}

// IsFreedomCategory reports whether the category is the financial-freedom
// goal used by the health score.
func IsFreedomCategory(name string) bool {
	return NormalizeCategoryName(name) == freedomCategoryName
}

func (c Category) IsGoal() bool { return IsGoalCategory(c.Name) }

func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Year and Month identify the reporting period a transaction belongs to.
func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Income < 0 {
		return ErrNegativeIncome
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.TargetPercent < 0 || c.TargetPercent > 100 {
		return ErrInvalidTargetShare
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TypeExpense:
		if t.CategoryID == "" {
			return ErrExpenseNeedsCtg
		}
	case TypeIncome:
		if t.CategoryID != "" {
			return ErrIncomeWithCategory
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// IsExpense reports whether the transaction is an expense entry.
func (t Transaction) IsExpense() bool { return t.Type == TypeExpense }

// IsIncome reports whether the transaction is an income entry.
func (t Transaction) IsIncome() bool { return t.Type == TypeIncome }
