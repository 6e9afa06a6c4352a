package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("invoice not found")
	ErrExists   = errors.New("invoice already imported")
)

type (
	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice, exec ...core.DBExecutor) (Invoice, error)
		QueryInvoices(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Invoice, error)
		// QueryPaidInvoicesForUser returns the user's invoices with status in
		// PaidStatuses, items included, ordered by issue date ascending.
		QueryPaidInvoicesForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Invoice, error)
		GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Invoice, error)
		GetInvoiceBySeriesNumber(ctx context.Context, series, number string, exec ...core.DBExecutor) (Invoice, error)
		UpdateInvoiceStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (Invoice, error)
	}

	ServiceInterface interface {
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		QueryPaidForUser(userID string) ([]Invoice, error)
		GetByID(id string) (Invoice, error)
		MarkPaid(id string) (Invoice, error)
		Import(series, number string) (Invoice, error)
		SyncPaid(since time.Time) (int, error)
	}

	service struct {
		db         core.DB
		repo       Repository
		usrSvc     user.ServiceInterface
		billingSvc core.BillingService
		logger     core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(db core.DB, repo Repository, usrSvc user.ServiceInterface, billingSvc core.BillingService, logger core.Logger) *service {
	return &service{
		db:         db,
		repo:       repo,
		usrSvc:     usrSvc,
		billingSvc: billingSvc,
		logger:     logger,
	}
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Invoice, error) {
	return svc.repo.QueryInvoices(context.Background(), filter, ordering)
}

func (svc *service) QueryPaidForUser(userID string) ([]Invoice, error) {
	return svc.repo.QueryPaidInvoicesForUser(context.Background(), userID)
}

func (svc *service) GetByID(id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(context.Background(), id)
}

func (svc *service) MarkPaid(id string) (Invoice, error) {
	return svc.repo.UpdateInvoiceStatus(context.Background(), id, StatusPaid)
}

// Import fetches a single invoice from the billing provider and materializes
// it locally, linked to the client user by email.
func (svc *service) Import(series, number string) (Invoice, error) {
	ctx := context.Background()

	if _, err := svc.repo.GetInvoiceBySeriesNumber(ctx, series, number); err == nil {
		return Invoice{}, ErrExists
	} else if errors.Cause(err) != ErrNotFound {
		return Invoice{}, err
	}

	provInv, err := svc.billingSvc.GetInvoice(ctx, series, number)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "fetching provider invoice")
	}
	return svc.materialize(ctx, provInv)
}

// SyncPaid imports every paid provider invoice issued since the given date
// that is not yet known locally. Returns the number of invoices imported.
// Invoices whose client email matches no user are skipped with a warning,
// not failed: one unmatched client must not block the backfill.
func (svc *service) SyncPaid(since time.Time) (int, error) {
	ctx := context.Background()

	provInvs, err := svc.billingSvc.ListPaidInvoices(ctx, since)
	if err != nil {
		return 0, errors.Wrap(err, "listing provider invoices")
	}

	var count int
	for _, provInv := range provInvs {
		if _, err := svc.repo.GetInvoiceBySeriesNumber(ctx, provInv.Series, provInv.Number); err == nil {
			continue
		} else if errors.Cause(err) != ErrNotFound {
			return count, err
		}

		if _, err := svc.materialize(ctx, provInv); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				svc.logger.Warn(fmt.Sprintf("skipping invoice %s%s: no user for %q", provInv.Series, provInv.Number, provInv.ClientEmail))
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

func (svc *service) materialize(ctx context.Context, provInv core.BillingInvoice) (Invoice, error) {
	usr, err := svc.usrSvc.GetByEmail(provInv.ClientEmail)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "matching client to user")
	}

	status := StatusIssued
	if provInv.Paid {
		status = StatusImported
	}

	now := time.Now().UTC()
	inv := Invoice{
		Series:    provInv.Series,
		Number:    provInv.Number,
		UserID:    usr.ID,
		Status:    status,
		IssueDate: provInv.IssueDate.UTC(),
		DueDate:   provInv.DueDate.UTC(),
		Currency:  provInv.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range provInv.Items {
		inv.Items = append(inv.Items, Item{
			Name:        item.Name,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalAmount: item.TotalAmount,
		})
	}
	return svc.repo.CreateInvoice(ctx, inv)
}
