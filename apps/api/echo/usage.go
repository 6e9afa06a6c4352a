package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core/user"
)

type usageApi struct {
	deps *Deps
}

func registerUsageAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := usageApi{deps: deps}

	ug := g.Group("/usage", jwt)
	ug.GET("/:id", api.retrieve)
}

// retrieve returns the hour-package usage report for a user. Users can read
// their own report; admins and base managers can read anyone's.
func (api *usageApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.CanViewUsage(ctx.Param("id")) {
		return errHttpForbidden
	}

	report, err := api.deps.LedgerSvc.BuildReport(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "building usage report")
	}
	return ctx.JSON(http.StatusOK, report)
}
