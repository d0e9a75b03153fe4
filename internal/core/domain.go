package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	CMA        AccountType = "cma"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	AccountType     string
	TransactionType string
	CategoryType    string
	Frequency       string

	// Date is a calendar day without a time component. The zero value means
	// "unset" for optional dates such as a recurring rule's end date.
	Date struct {
		time.Time
	}

	Account struct {
		ID            int64           `json:"id"`
		UserID        int64           `json:"user_id"`
		Name          string          `json:"name"`
		Type          AccountType     `json:"type"`
		Balance       decimal.Decimal `json:"balance"`
		Institution   string          `json:"institution,omitempty"`
		AccountNumber string          `json:"account_number,omitempty"`
		CreatedAt     time.Time       `json:"created_at"`
		UpdatedAt     time.Time       `json:"updated_at"`
	}

	Category struct {
		ID       int64        `json:"id"`
		UserID   int64        `json:"user_id"`
		Name     string       `json:"name"`
		Type     CategoryType `json:"type"`
		IsFixed  bool         `json:"is_fixed"`
		ParentID int64        `json:"parent_id,omitempty"` // 0 means root
	}

	Transaction struct {
		ID          int64           `json:"id"`
		AccountID   int64           `json:"account_id"`
		CategoryID  int64           `json:"category_id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        Date            `json:"transaction_date"`
		IsRecurring bool            `json:"is_recurring"`
		RecurringID int64           `json:"recurring_id,omitempty"` // 0 for manual entries
		CreatedAt   time.Time       `json:"created_at"`
	}

	RecurringTransaction struct {
		ID          int64           `json:"id"`
		AccountID   int64           `json:"account_id"`
		CategoryID  int64           `json:"category_id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description,omitempty"`
		Frequency   Frequency       `json:"frequency"`
		DayOfMonth  int             `json:"day_of_month"`
		IsActive    bool            `json:"is_active"`
		StartDate   Date            `json:"start_date"`
		EndDate     Date            `json:"end_date,omitempty"` // zero when open-ended
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// AssetSnapshot is a write-once historical record produced outside the
	// ledger engine and only read back for the net-worth trend.
	AssetSnapshot struct {
		ID              int64           `json:"id"`
		UserID          int64           `json:"user_id"`
		TotalAssets     decimal.Decimal `json:"total_assets"`
		NetWorth        decimal.Decimal `json:"net_worth"`
		AccountsSummary json.RawMessage `json:"accounts_summary,omitempty"`
		SnapshotDate    Date            `json:"snapshot_date"`
		CreatedAt       time.Time       `json:"created_at"`
	}
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrRecurringNotFound   = errors.New("recurring transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransaction  = errors.New("invalid transaction")

	// ErrAlreadyMaterialized reports that a recurring rule has already been
	// turned into a transaction for the requested date.
	ErrAlreadyMaterialized = errors.New("recurring transaction already materialized for date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, int(m), d)
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(*s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns the balance effect of an amount under this transaction
// type: +amount for income, -amount for expense.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == Expense {
		return amount.Neg()
	}
	return amount
}

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, Investment, CMA:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("account name cannot be empty")
	}
	if len(a.Name) > 100 {
		return errors.New("account name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return errors.New("invalid account type")
	}
	if a.Balance.IsNegative() {
		return errors.New("opening balance cannot be negative")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("category name cannot be empty")
	}
	if len(c.Name) > 50 {
		return errors.New("category name too long (max 50 characters)")
	}
	if !c.Type.Valid() {
		return errors.New("invalid category type")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return errors.New("transaction requires an account")
	}
	if t.CategoryID <= 0 {
		return errors.New("transaction requires a category")
	}
	if !t.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if r.AccountID <= 0 {
		return errors.New("recurring transaction requires an account")
	}
	if r.CategoryID <= 0 {
		return errors.New("recurring transaction requires a category")
	}
	if !r.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if !r.Frequency.Valid() {
		return errors.New("invalid frequency")
	}
	if r.Frequency == Monthly && (r.DayOfMonth < 1 || r.DayOfMonth > 31) {
		return errors.New("day of month must be between 1 and 31")
	}
	if r.StartDate.IsZero() {
		return errors.New("start date cannot be zero")
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
