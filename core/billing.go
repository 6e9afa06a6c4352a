package core

import (
	"context"
	"time"
)

type (
	// BillingItem is one line of a provider invoice. Unit carries the UN/ECE
	// measuring-unit code as issued (flight-hour packages use HUR/HOUR/H).
	BillingItem struct {
		Name        string
		Unit        string
		Quantity    float64
		UnitPrice   float64
		TotalAmount float64
	}

	// BillingInvoice is a provider invoice as fetched from the billing API.
	BillingInvoice struct {
		Series      string
		Number      string
		ClientName  string
		ClientVAT   string
		ClientEmail string
		IssueDate   time.Time
		DueDate     time.Time
		Currency    string
		Paid        bool
		Items       []BillingItem
	}

	// BillingService is any external invoicing provider (SmartBill, ...).
	BillingService interface {
		// GetInvoice fetches a single invoice by series and number.
		GetInvoice(ctx context.Context, series, number string) (BillingInvoice, error)
		// ListPaidInvoices fetches all paid invoices issued since the given date.
		ListPaidInvoices(ctx context.Context, since time.Time) ([]BillingInvoice, error)
	}
)
