package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core/flight"
)

type flightApi struct {
	deps *Deps
}

func registerFlightAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := flightApi{deps: deps}

	fg := g.Group("/flights", jwt)
	fg.POST("", api.create)
	fg.GET("", api.query)
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update, staffMiddleware())
	fg.DELETE("/:id", api.destroy, staffMiddleware())
}

// create logs a flight. Pilots can only log their own; staff and
// instructors can log for anyone.
func (api *flightApi) create(ctx echo.Context) error {
	var data flight.NewFlight
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFlight")
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsBaseManager() || ctxUsr.IsInstructor()) {
		if data.UserID != ctxUsr.ID {
			return errHttpForbidden
		}
	}

	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	fl, err := api.deps.FlightSvc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating flight")
	}
	return ctx.JSON(http.StatusCreated, fl)
}

// query returns flights. Non-staff users only see flights they flew,
// instructed or paid for.
func (api *flightApi) query(ctx echo.Context) error {
	filter := new(flight.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []flight.Flight{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var flights []flight.Flight
	if ctxUsr.IsAdmin() || ctxUsr.IsBaseManager() {
		flights, err = api.deps.FlightSvc.Query(filter, ordering.Orderings)
	} else {
		flights, err = api.deps.FlightSvc.QueryForUser(ctxUsr.ID)
	}
	if err != nil {
		return errors.Wrap(err, "querying flights")
	}
	if flights == nil {
		flights = []flight.Flight{}
	}
	return ctx.JSON(http.StatusOK, flights)
}

func (api *flightApi) retrieve(ctx echo.Context) error {
	fl, err := api.deps.FlightSvc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == flight.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding flight by ID")
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsAdmin() || ctxUsr.IsBaseManager()) {
		if fl.UserID != ctxUsr.ID && fl.PayerID != ctxUsr.ID && fl.InstructorID != ctxUsr.ID {
			return errHttpNotFound
		}
	}
	return ctx.JSON(http.StatusOK, fl)
}

func (api *flightApi) update(ctx echo.Context) error {
	var data flight.UpdateFlight
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFlight")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	fl, err := api.deps.FlightSvc.Update(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == flight.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating flight")
	}
	return ctx.JSON(http.StatusOK, fl)
}

func (api *flightApi) destroy(ctx echo.Context) error {
	if _, err := api.deps.FlightSvc.GetByID(ctx.Param("id")); err != nil {
		if errors.Cause(err) == flight.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding flight by ID")
	}

	if err := api.deps.FlightSvc.Delete(ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting flight")
	}
	return ctx.NoContent(http.StatusNoContent)
}
