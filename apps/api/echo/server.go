package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/ledger"
	"github.com/cavok/flightdesk/core/user"
)

type (
	// Deps are the services the API serves; wired in main.
	Deps struct {
		Logger      core.Logger
		Validate    *validator.Validate
		Translator  ut.Translator
		UserSvc     user.ServiceInterface
		FlightSvc   flight.ServiceInterface
		InvoiceSvc  invoice.ServiceInterface
		LedgerSvc   ledger.ServiceInterface
		IdentitySvc core.IdentityService
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		addr string
		deps *Deps
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

// NewServer sets up the API server. signalShutdown is called whenever an
// unrecoverable error is caught; pass nil in tests.
func NewServer(addr string, signalShutdown func(), deps *Deps) Server {
	s := &server{
		addr: addr,
		deps: deps,
		app:  echo.New(),
	}
	s.setup(signalShutdown)
	return s
}

func (s *server) setup(signalShutdown func()) {
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	appJWTConfig.SigningKey = []byte(core.Conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !core.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(metricsMiddleware())
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps)
	registerFlightAPI(v1, jwt, s.deps)
	registerInvoiceAPI(v1, jwt, s.deps)
	registerUsageAPI(v1, jwt, s.deps)
}

func (s *server) Start() error {
	return s.app.Start(s.addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+core.Conf.AppName+" API!")
}
