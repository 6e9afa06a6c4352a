package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
	billingsvc "github.com/cavok/flightdesk/services/billing"
	emailsvc "github.com/cavok/flightdesk/services/email"
	identitysvc "github.com/cavok/flightdesk/services/identity"
	logsvc "github.com/cavok/flightdesk/services/logger"
	"github.com/cavok/flightdesk/storage/database"
	sqlxrepos "github.com/cavok/flightdesk/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var billingSvc core.BillingService
	if conf.Debug {
		billingSvc = billingsvc.NewDummyService()
	} else {
		billingSvc = billingsvc.NewSmartbillService(conf)
	}
	usrRepo := sqlxrepos.NewUserRepository(sdb)
	flightRepo := sqlxrepos.NewFlightRepository(sdb)
	usrSvc := user.NewService(sdb, usrRepo, emailsvc.NewConsoleService(), identitysvc.NewDummyService(), conf)
	invSvc := invoice.NewService(sdb, sqlxrepos.NewInvoiceRepository(sdb), usrSvc, billingSvc, logsvc.NewStdLogger(logger))

	// start CLI
	cli := commandLine{
		db:         db,
		usrRepo:    usrRepo,
		flightRepo: flightRepo,
		invSvc:     invSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
