package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/invoice"
)

// invoiceRow mirrors the invoice table.
type invoiceRow struct {
	ID        string    `db:"id"`
	Series    string    `db:"series"`
	Number    string    `db:"number"`
	UserID    string    `db:"user_id"`
	Status    string    `db:"status"`
	IssueDate null.Time `db:"issue_date"`
	DueDate   null.Time `db:"due_date"`
	Currency  string    `db:"currency"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

// invoiceItemRow mirrors the invoice_item table.
type invoiceItemRow struct {
	ID          string  `db:"id"`
	InvoiceID   string  `db:"invoice_id"`
	Name        string  `db:"name"`
	Unit        string  `db:"unit"`
	Quantity    float64 `db:"quantity"`
	UnitPrice   float64 `db:"unit_price"`
	TotalAmount float64 `db:"total_amount"`
}

type invoiceRepository struct {
	db *sqlx.DB
}

var _ invoice.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(db *sqlx.DB) *invoiceRepository {
	return &invoiceRepository{db: db}
}

func (repo invoiceRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return repo.db
}

func (repo invoiceRepository) toRow(inv invoice.Invoice) invoiceRow {
	return invoiceRow{
		ID:        inv.ID,
		Series:    inv.Series,
		Number:    inv.Number,
		UserID:    inv.UserID,
		Status:    inv.Status,
		IssueDate: null.NewTime(inv.IssueDate.UTC(), !inv.IssueDate.IsZero()),
		DueDate:   null.NewTime(inv.DueDate.UTC(), !inv.DueDate.IsZero()),
		Currency:  inv.Currency,
		CreatedAt: null.NewTime(inv.CreatedAt.UTC(), !inv.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(inv.UpdatedAt.UTC(), !inv.UpdatedAt.IsZero()),
	}
}

func (repo invoiceRepository) fromRow(row invoiceRow, itemRows []invoiceItemRow) invoice.Invoice {
	inv := invoice.Invoice{
		ID:        row.ID,
		Series:    row.Series,
		Number:    row.Number,
		UserID:    row.UserID,
		Status:    row.Status,
		IssueDate: row.IssueDate.Time,
		DueDate:   row.DueDate.Time,
		Currency:  row.Currency,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	for _, it := range itemRows {
		inv.Items = append(inv.Items, invoice.Item{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Name:        it.Name,
			Unit:        it.Unit,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalAmount: it.TotalAmount,
		})
	}
	return inv
}

// trapNoRowsErr maps psql "no rows" err to invoice.ErrNotFound
func (repo invoiceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return invoice.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// loadItems fetches items for the given invoices and groups them per invoice,
// preserving insertion order.
func (repo invoiceRepository) loadItems(ctx context.Context, exec sqlx.ExtContext, invoiceIDs []string) (map[string][]invoiceItemRow, error) {
	items := make(map[string][]invoiceItemRow, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return items, nil
	}

	const query = `SELECT * FROM invoice_item WHERE invoice_id = ANY($1) ORDER BY id`
	var rows []invoiceItemRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, pq.Array(invoiceIDs)); err != nil {
		return nil, errors.Wrap(err, "querying invoice items")
	}
	for _, row := range rows {
		items[row.InvoiceID] = append(items[row.InvoiceID], row)
	}
	return items, nil
}

func (repo invoiceRepository) fromRowsWithItems(ctx context.Context, exec sqlx.ExtContext, rows []invoiceRow) ([]invoice.Invoice, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	items, err := repo.loadItems(ctx, exec, ids)
	if err != nil {
		return nil, err
	}

	invoices := make([]invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, repo.fromRow(row, items[row.ID]))
	}
	return invoices, nil
}

func (repo invoiceRepository) CreateInvoice(ctx context.Context, inv invoice.Invoice, exec ...core.DBExecutor) (invoice.Invoice, error) {
	inv.ID = uuid.New().String()
	row := repo.toRow(inv)
	dbExec := repo.getExec(exec)

	const query = `
		INSERT INTO invoice (id, series, number, user_id, status, issue_date, due_date, currency, created_at, updated_at)
		VALUES (:id, :series, :number, :user_id, :status, :issue_date, :due_date, :currency, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, dbExec, query, row); err != nil {
		return invoice.Invoice{}, errors.Wrap(err, "inserting invoice")
	}

	const itemQuery = `
		INSERT INTO invoice_item (id, invoice_id, name, unit, quantity, unit_price, total_amount)
		VALUES (:id, :invoice_id, :name, :unit, :quantity, :unit_price, :total_amount)`
	itemRows := make([]invoiceItemRow, 0, len(inv.Items))
	for _, item := range inv.Items {
		itemRow := invoiceItemRow{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Name:        item.Name,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalAmount: item.TotalAmount,
		}
		if _, err := sqlx.NamedExecContext(ctx, dbExec, itemQuery, itemRow); err != nil {
			return invoice.Invoice{}, errors.Wrap(err, "inserting invoice item")
		}
		itemRows = append(itemRows, itemRow)
	}
	return repo.fromRow(row, itemRows), nil
}

func (repo invoiceRepository) QueryInvoices(ctx context.Context, filter *invoice.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]invoice.Invoice, error) {
	query := "SELECT * FROM invoice"
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, "user_id = "+arg(filter.UserID))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(filter.Status))
		}
		if filter.Series != "" {
			conds = append(conds, "series = "+arg(filter.Series))
		}
		if !filter.IssueFrom.IsZero() {
			conds = append(conds, "issue_date >= "+arg(filter.IssueFrom.UTC()))
		}
		if !filter.IssueTo.IsZero() {
			conds = append(conds, "issue_date <= "+arg(filter.IssueTo.UTC()))
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	dbExec := repo.getExec(exec)
	var rows []invoiceRow
	if err := sqlx.SelectContext(ctx, dbExec, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	return repo.fromRowsWithItems(ctx, dbExec, rows)
}

func (repo invoiceRepository) QueryPaidInvoicesForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]invoice.Invoice, error) {
	const query = `SELECT * FROM invoice WHERE user_id = $1 AND status = ANY($2) ORDER BY issue_date ASC`

	dbExec := repo.getExec(exec)
	var rows []invoiceRow
	if err := sqlx.SelectContext(ctx, dbExec, &rows, query, userID, pq.Array(invoice.PaidStatuses)); err != nil {
		return nil, errors.Wrap(err, "querying paid invoices")
	}
	return repo.fromRowsWithItems(ctx, dbExec, rows)
}

func (repo invoiceRepository) GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return invoice.Invoice{}, invoice.ErrNotFound
	}

	dbExec := repo.getExec(exec)
	var row invoiceRow
	if err := sqlx.GetContext(ctx, dbExec, &row, "SELECT * FROM invoice WHERE id = $1", id); err != nil {
		return invoice.Invoice{}, repo.trapNoRowsErr(err, "finding invoice")
	}
	items, err := repo.loadItems(ctx, dbExec, []string{row.ID})
	if err != nil {
		return invoice.Invoice{}, err
	}
	return repo.fromRow(row, items[row.ID]), nil
}

func (repo invoiceRepository) GetInvoiceBySeriesNumber(ctx context.Context, series, number string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	dbExec := repo.getExec(exec)
	var row invoiceRow
	if err := sqlx.GetContext(ctx, dbExec, &row, "SELECT * FROM invoice WHERE series = $1 AND number = $2", series, number); err != nil {
		return invoice.Invoice{}, repo.trapNoRowsErr(err, "finding invoice")
	}
	items, err := repo.loadItems(ctx, dbExec, []string{row.ID})
	if err != nil {
		return invoice.Invoice{}, err
	}
	return repo.fromRow(row, items[row.ID]), nil
}

func (repo invoiceRepository) UpdateInvoiceStatus(ctx context.Context, id, status string, exec ...core.DBExecutor) (invoice.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return invoice.Invoice{}, invoice.ErrNotFound
	}

	dbExec := repo.getExec(exec)
	var row invoiceRow
	const query = `UPDATE invoice SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *`
	if err := sqlx.GetContext(ctx, dbExec, &row, query, status, id); err != nil {
		return invoice.Invoice{}, repo.trapNoRowsErr(err, "updating invoice")
	}
	items, err := repo.loadItems(ctx, dbExec, []string{row.ID})
	if err != nil {
		return invoice.Invoice{}, err
	}
	return repo.fromRow(row, items[row.ID]), nil
}
