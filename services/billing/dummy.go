package billingsvc

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
)

var ErrInvoiceNotFound = errors.New("provider invoice not found")

// dummyService serves canned invoices; used in dev mode and tests.
type dummyService struct {
	mu       sync.RWMutex
	invoices []core.BillingInvoice
}

var _ core.BillingService = (*dummyService)(nil)

func NewDummyService(invoices ...core.BillingInvoice) *dummyService {
	return &dummyService{invoices: invoices}
}

func (svc *dummyService) AddInvoices(invoices ...core.BillingInvoice) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.invoices = append(svc.invoices, invoices...)
}

func (svc *dummyService) GetInvoice(ctx context.Context, series, number string) (core.BillingInvoice, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	for _, inv := range svc.invoices {
		if inv.Series == series && inv.Number == number {
			return inv, nil
		}
	}
	return core.BillingInvoice{}, ErrInvoiceNotFound
}

func (svc *dummyService) ListPaidInvoices(ctx context.Context, since time.Time) ([]core.BillingInvoice, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	var invoices []core.BillingInvoice
	for _, inv := range svc.invoices {
		if inv.Paid && !inv.IssueDate.Before(since) {
			invoices = append(invoices, inv)
		}
	}
	return invoices, nil
}
