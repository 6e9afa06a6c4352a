package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoapi "github.com/cavok/flightdesk/apps/api/echo"
	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/ledger"
	"github.com/cavok/flightdesk/core/user"
	appfs "github.com/cavok/flightdesk/fs"
	billingsvc "github.com/cavok/flightdesk/services/billing"
	emailsvc "github.com/cavok/flightdesk/services/email"
	identitysvc "github.com/cavok/flightdesk/services/identity"
	logsvc "github.com/cavok/flightdesk/services/logger"
	"github.com/cavok/flightdesk/storage/database"
	sqlxrepos "github.com/cavok/flightdesk/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	if err := run(conf, logger); err != nil {
		logger.Fatal("API server failed", err)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		return err
	}
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db); err != nil {
		return err
	}
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up validation & mailers
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	flight.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, logger)

	// set up services
	var mailSvc core.EmailService
	var billingSvc core.BillingService
	var identitySvc core.IdentityService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
		billingSvc = billingsvc.NewDummyService()
		identitySvc = identitysvc.NewDummyService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
		billingSvc = billingsvc.NewSmartbillService(conf)
		identitySvc = identitysvc.NewVeriffService(conf)
	}

	usrSvc := user.NewService(sdb, sqlxrepos.NewUserRepository(sdb), mailSvc, identitySvc, conf)
	flightSvc := flight.NewService(sdb, sqlxrepos.NewFlightRepository(sdb))
	invSvc := invoice.NewService(sdb, sqlxrepos.NewInvoiceRepository(sdb), usrSvc, billingSvc, logger)
	ledgerSvc := ledger.NewService(usrSvc, invSvc, flightSvc)

	// start debug server; do not block main on it
	go serveDebug(conf, logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	signalShutdown := func() { shutdown <- syscall.SIGTERM }

	// start API server
	app := echoapi.NewServer(
		conf.Server.Addr,
		signalShutdown,
		&echoapi.Deps{
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			UserSvc:     usrSvc,
			FlightSvc:   flightSvc,
			InvoiceSvc:  invSvc,
			LedgerSvc:   ledgerSvc,
			IdentitySvc: identitySvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + conf.Server.Addr)
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		logger.Info("shutting down: " + sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}

// serveDebug exposes profiling and metrics endpoints on a separate,
// non-public port.
func serveDebug(conf *core.Config, logger core.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("debug server listening on " + conf.Server.DebugHost)
	if err := http.ListenAndServe(conf.Server.DebugHost, mux); err != nil {
		logger.Error("debug server closed", err)
	}
}
