package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/invoice"
)

type invoiceApi struct {
	deps *Deps
}

func registerInvoiceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := invoiceApi{deps: deps}

	ig := g.Group("/invoices", jwt)
	ig.GET("", api.query, staffMiddleware())
	ig.GET("/:id", api.retrieve)
	ig.POST("/:id/mark-paid", api.markPaid, staffMiddleware())
	ig.POST("/import", api.importInvoice, staffMiddleware())
	ig.POST("/sync", api.syncPaid, adminMiddleware())
}

func (api *invoiceApi) query(ctx echo.Context) error {
	filter := new(invoice.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []invoice.Invoice{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.deps.InvoiceSvc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []invoice.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

// retrieve returns a single invoice; clients can only read their own.
func (api *invoiceApi) retrieve(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsBaseManager()) && inv.UserID != ctxUsr.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) markPaid(ctx echo.Context) error {
	inv, err := api.deps.InvoiceSvc.MarkPaid(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == invoice.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking invoice paid")
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) importInvoice(ctx echo.Context) error {
	var data ImportInvoiceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImportInvoiceRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	inv, err := api.deps.InvoiceSvc.Import(data.Series, data.Number)
	if err != nil {
		switch errors.Cause(err) {
		case invoice.ErrExists:
			return core.NewValidationError(invoice.ErrExists)
		default:
			return errors.Wrap(err, "importing invoice")
		}
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *invoiceApi) syncPaid(ctx echo.Context) error {
	var data SyncInvoicesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SyncInvoicesRequest")
	}
	if data.Since.IsZero() {
		data.Since = time.Now().UTC().AddDate(0, -1, 0) // default: last month
	}

	count, err := api.deps.InvoiceSvc.SyncPaid(data.Since)
	if err != nil {
		return errors.Wrap(err, "syncing paid invoices")
	}
	return ctx.JSON(http.StatusOK, SyncInvoicesResponse{Imported: count})
}

type (
	ImportInvoiceRequest struct {
		Series string `json:"series" validate:"required"`
		Number string `json:"number" validate:"required"`
	}

	SyncInvoicesRequest struct {
		Since time.Time `json:"since"`
	}

	SyncInvoicesResponse struct {
		Imported int `json:"imported"`
	}
)

func (ir *ImportInvoiceRequest) Validate(validate *validator.Validate) error {
	ir.Series = core.CleanString(ir.Series)
	ir.Number = core.CleanString(ir.Number)
	return validate.Struct(ir)
}
