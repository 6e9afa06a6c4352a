package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/invoice"
)

type invoiceRepository struct {
	db *invoiceTable
}

var _ invoice.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(db *DB) invoice.Repository {
	return &invoiceRepository{db: db.invoice}
}

func (repo *invoiceRepository) query() []invoice.Invoice {
	invoices := make([]invoice.Invoice, 0, len(repo.db.table))
	for _, inv := range repo.db.table {
		invoices = append(invoices, *inv)
	}
	return invoices
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv invoice.Invoice, exec ...core.DBExecutor) (invoice.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv.ID = uuid.New().String()
	for i := range inv.Items {
		inv.Items[i].ID = uuid.New().String()
		inv.Items[i].InvoiceID = inv.ID
	}
	repo.db.table[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter *invoice.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]invoice.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	invoices := repo.query()
	if filter != nil {
		var filtered []invoice.Invoice
		for _, inv := range invoices {
			if filter.UserID != "" && inv.UserID != filter.UserID {
				continue
			}
			if filter.Status != "" && inv.Status != filter.Status {
				continue
			}
			if filter.Series != "" && inv.Series != filter.Series {
				continue
			}
			if !filter.IssueFrom.IsZero() && inv.IssueDate.Before(filter.IssueFrom.UTC()) {
				continue
			}
			if !filter.IssueTo.IsZero() && inv.IssueDate.After(filter.IssueTo.UTC()) {
				continue
			}
			filtered = append(filtered, inv)
		}
		invoices = filtered
	}

	sort.Slice(invoices, func(i, j int) bool { return invoices[i].IssueDate.Before(invoices[j].IssueDate) })
	return invoices, nil
}

func (repo *invoiceRepository) QueryPaidInvoicesForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]invoice.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	paid := make(map[string]bool, len(invoice.PaidStatuses))
	for _, status := range invoice.PaidStatuses {
		paid[status] = true
	}

	var invoices []invoice.Invoice
	for _, inv := range repo.query() {
		if inv.UserID == userID && paid[inv.Status] {
			invoices = append(invoices, inv)
		}
	}

	sort.Slice(invoices, func(i, j int) bool { return invoices[i].IssueDate.Before(invoices[j].IssueDate) })
	return invoices, nil
}

func (repo *invoiceRepository) GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inv, ok := repo.db.table[id]; ok {
		return *inv, nil
	}
	return invoice.Invoice{}, invoice.ErrNotFound
}

func (repo *invoiceRepository) GetInvoiceBySeriesNumber(ctx context.Context, series, number string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inv := range repo.query() {
		if inv.Series == series && inv.Number == number {
			return inv, nil
		}
	}
	return invoice.Invoice{}, invoice.ErrNotFound
}

func (repo *invoiceRepository) UpdateInvoiceStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv, ok := repo.db.table[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	return *inv, nil
}
