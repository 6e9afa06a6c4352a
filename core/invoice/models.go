package invoice

import (
	"strings"
	"time"

	"github.com/cavok/flightdesk/core"
)

// Invoice statuses
const (
	StatusDraft     = "draft"
	StatusIssued    = "issued"
	StatusPaid      = "paid"
	StatusImported  = "imported" // brought in from the billing provider, already settled
	StatusCancelled = "cancelled"
)

// Measuring-unit codes that denominate a line item in flight hours.
var HourUnits = []string{"HUR", "HOUR", "H"}

// PaidStatuses are the statuses under which an invoice's hour items count
// as purchased packages.
var PaidStatuses = []string{StatusPaid, StatusImported}

type (
	Item struct {
		ID          string  `json:"id"`
		InvoiceID   string  `json:"-"`
		Name        string  `json:"name"`
		Unit        string  `json:"unit"`
		Quantity    float64 `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
		TotalAmount float64 `json:"total_amount"`
	}

	Invoice struct {
		ID        string    `json:"id"`
		Series    string    `json:"series"`
		Number    string    `json:"number"`
		UserID    string    `json:"user_id"` // linked client
		Status    string    `json:"status"`
		IssueDate time.Time `json:"issue_date"` // UTC
		DueDate   time.Time `json:"due_date"`   // UTC
		Currency  string    `json:"currency"`
		Items     []Item    `json:"items"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}
)

// IsHourUnit reports whether an item's measuring unit denominates flight hours.
func (it Item) IsHourUnit() bool {
	unit := strings.ToUpper(strings.TrimSpace(it.Unit))
	for _, u := range HourUnits {
		if u == unit {
			return true
		}
	}
	return false
}

type QueryFilter struct {
	UserID    string    `query:"user_id"`
	Status    string    `query:"status"`
	Series    string    `query:"series"`
	IssueFrom time.Time `query:"issue_from"`
	IssueTo   time.Time `query:"issue_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.Status == "" && qf.Series == "" &&
		qf.IssueFrom.IsZero() && qf.IssueTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Series = core.CleanString(qf.Series)
}
