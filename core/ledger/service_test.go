package ledger

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
)

type (
	stubUserSvc struct {
		user.ServiceInterface
		usr user.User
		err error
	}

	stubInvoiceSvc struct {
		invoice.ServiceInterface
		invoices []invoice.Invoice
		err      error
	}

	stubFlightSvc struct {
		flight.ServiceInterface
		flights []flight.Flight
		err     error
		called  bool
	}
)

func (s *stubUserSvc) GetByID(id string) (user.User, error) { return s.usr, s.err }

func (s *stubInvoiceSvc) QueryPaidForUser(userID string) ([]invoice.Invoice, error) {
	return s.invoices, s.err
}

func (s *stubFlightSvc) QueryForUser(userID string) ([]flight.Flight, error) {
	s.called = true
	return s.flights, s.err
}

func TestBuildReport(t *testing.T) {
	usr := user.User{ID: owner, Email: "owner@test.test", FirstName: "Amy", LastName: "Johnson"}
	invoices := []invoice.Invoice{
		{
			ID:        "inv1",
			IssueDate: day(1),
			Currency:  "EUR",
			Items:     []invoice.Item{{ID: "it1", Unit: "HUR", Quantity: 5, TotalAmount: 1250}},
		},
		{
			ID:        "inv2",
			IssueDate: day(5),
			Currency:  "EUR",
			Items:     []invoice.Item{{ID: "it1", Unit: "HUR", Quantity: 10, TotalAmount: 2400}},
		},
	}
	flights := []flight.Flight{
		{ID: "f1", UserID: owner, Date: day(2), TotalHours: 3, FlightType: flight.TypeTraining},
		{ID: "f2", UserID: owner, Date: day(6), TotalHours: 8, FlightType: flight.TypeTraining},
	}

	svc := NewService(
		&stubUserSvc{usr: usr},
		&stubInvoiceSvc{invoices: invoices},
		&stubFlightSvc{flights: flights},
	)

	report, err := svc.BuildReport(owner)
	if err != nil {
		t.Fatalf("BuildReport() failed: %v", err)
	}

	assert.Equal(t, ReportUser{ID: owner, Email: "owner@test.test", FirstName: "Amy", LastName: "Johnson"}, report.User)
	assert.Equal(t, 15.0, report.TotalPurchasedHours)
	assert.Equal(t, 11.0, report.TotalUsedHours)
	assert.Equal(t, 0.0, report.TotalCharteredHours)
	assert.Equal(t, 4.0, report.RemainingHours)
	assert.Equal(t, 2, report.FlightCount)
	if assert.Len(t, report.Packages, 2) {
		assert.Equal(t, 5.0, report.Packages[0].UsedHours)
		assert.Equal(t, 6.0, report.Packages[1].UsedHours)
	}
	assert.Equal(t, RegularStat{Regular: 11, RegularCount: 2}, report.Statistics.FlownHours)
}

func TestBuildReportZeroPackagesShortCircuit(t *testing.T) {
	usr := user.User{ID: owner, Email: "owner@test.test", FirstName: "Amy", LastName: "Johnson"}
	flightSvc := &stubFlightSvc{flights: []flight.Flight{
		{ID: "f1", UserID: owner, Date: day(2), TotalHours: 3, FlightType: flight.TypeTraining},
	}}

	svc := NewService(
		&stubUserSvc{usr: usr},
		&stubInvoiceSvc{}, // no invoices at all
		flightSvc,
	)

	report, err := svc.BuildReport(owner)
	if err != nil {
		t.Fatalf("BuildReport() failed: %v", err)
	}

	assert.Equal(t, 0.0, report.TotalPurchasedHours)
	assert.Empty(t, report.Packages)
	assert.Equal(t, 0, report.FlightCount)
	assert.False(t, flightSvc.called, "flight query must be skipped when no packages exist")
}

func TestBuildReportStorageFailure(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name string
		svc  ServiceInterface
	}{
		{
			name: "user lookup fails",
			svc:  NewService(&stubUserSvc{err: boom}, &stubInvoiceSvc{}, &stubFlightSvc{}),
		},
		{
			name: "invoice query fails",
			svc:  NewService(&stubUserSvc{}, &stubInvoiceSvc{err: boom}, &stubFlightSvc{}),
		},
		{
			name: "flight query fails",
			svc: NewService(
				&stubUserSvc{},
				&stubInvoiceSvc{invoices: []invoice.Invoice{
					{ID: "inv1", IssueDate: day(1), Items: []invoice.Item{{ID: "it1", Unit: "H", Quantity: 1}}},
				}},
				&stubFlightSvc{err: boom},
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := tt.svc.BuildReport(owner)
			if errors.Cause(err) != boom {
				t.Errorf("BuildReport() error = %v, want %v", err, boom)
			}
			// no partial ledger
			assert.Equal(t, UsageReport{}, report)
		})
	}
}
