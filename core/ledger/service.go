package ledger

import (
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
)

type (
	ServiceInterface interface {
		BuildReport(userID string) (UsageReport, error)
	}

	service struct {
		usrSvc    user.ServiceInterface
		invSvc    invoice.ServiceInterface
		flightSvc flight.ServiceInterface
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(usrSvc user.ServiceInterface, invSvc invoice.ServiceInterface, flightSvc flight.ServiceInterface) *service {
	return &service{
		usrSvc:    usrSvc,
		invSvc:    invSvc,
		flightSvc: flightSvc,
	}
}

// BuildReport recomputes the user's full hour-package ledger from scratch:
// no intermediate state is persisted or cached between calls. A storage
// failure aborts the whole report; no partial ledger is ever returned.
func (svc *service) BuildReport(userID string) (UsageReport, error) {
	usr, err := svc.usrSvc.GetByID(userID)
	if err != nil {
		return UsageReport{}, errors.Wrap(err, "finding user")
	}

	report := UsageReport{
		User: ReportUser{
			ID:        usr.ID,
			Email:     usr.Email,
			FirstName: usr.FirstName,
			LastName:  usr.LastName,
		},
		Packages: []PackageUsage{},
	}

	invoices, err := svc.invSvc.QueryPaidForUser(userID)
	if err != nil {
		return UsageReport{}, errors.Wrap(err, "querying paid invoices")
	}

	packages := ExtractPackages(invoices)
	if len(packages) == 0 {
		// nothing purchased: skip the flight query, report all zeroes
		return report, nil
	}

	flights, err := svc.flightSvc.QueryForUser(userID)
	if err != nil {
		return UsageReport{}, errors.Wrap(err, "querying flights")
	}

	report.Packages = Allocate(packages, flights, userID, time.Now().UTC())
	report.Statistics = ComputeStatistics(flights, userID)
	report.FlightCount = len(flights)

	for _, pkg := range report.Packages {
		report.TotalPurchasedHours += pkg.TotalHours
		report.TotalUsedHours += pkg.UsedHours
		report.TotalCharteredHours += pkg.CharteredHours
	}
	report.RemainingHours = report.TotalPurchasedHours - (report.TotalUsedHours + report.TotalCharteredHours)

	return report, nil
}
