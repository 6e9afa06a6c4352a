package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/ledger"
	"github.com/cavok/flightdesk/core/user"
)

func Test_usageApi_access(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)
	manager := env.createUser(t, "Mihai", "Baze", "mihai@test.aero", "", []string{user.RoleBaseManager}, true)
	admin := env.createUser(t, "Adina", "Admin", "adina@test.aero", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/usage/" + owner.ID,
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "Other pilots cannot read", path: "/v1/usage/" + owner.ID, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "Unknown user is 404 for admin", path: "/v1/usage/b5bb4b10-cd5c-41d3-9f85-fe0ee206fbc8",
			token: getToken(t, admin), wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the target themselves, base managers and admins can all read
	for _, reader := range []user.User{owner, manager, admin} {
		req, rec := newAuthRequest(http.MethodGet, "/v1/usage/"+owner.ID, getToken(t, reader))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("reader %s: code = %v; want %v", reader.Email, rec.Code, http.StatusOK)
		}
	}
}

func Test_usageApi_report(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)

	// two hour packages; the landing fee line and the unpaid invoice are noise
	env.createInvoice(t, invoice.Invoice{
		Series: "FD", Number: "0101", UserID: owner.ID, Status: invoice.StatusImported,
		IssueDate: day(t, "2024-01-10"), Currency: "EUR",
		Items: []invoice.Item{
			{Name: "Hour package C172", Unit: "HUR", Quantity: 10, UnitPrice: 120, TotalAmount: 1200},
			{Name: "Landing fee", Unit: "BUC", Quantity: 2, UnitPrice: 15, TotalAmount: 30},
		},
	})
	env.createInvoice(t, invoice.Invoice{
		Series: "FD", Number: "0102", UserID: owner.ID, Status: invoice.StatusPaid,
		IssueDate: day(t, "2024-03-05"), Currency: "EUR",
		Items: []invoice.Item{
			{Name: "Hour package C172", Unit: "HOUR", Quantity: 5, UnitPrice: 120, TotalAmount: 600},
		},
	})
	env.createInvoice(t, invoice.Invoice{
		Series: "FD", Number: "0103", UserID: owner.ID, Status: invoice.StatusIssued,
		IssueDate: day(t, "2024-04-01"), Currency: "EUR",
		Items: []invoice.Item{
			{Name: "Hour package C172", Unit: "HUR", Quantity: 8, UnitPrice: 120, TotalAmount: 960},
		},
	})

	env.createFlight(t, flight.Flight{
		UserID: owner.ID, Date: day(t, "2024-02-01"), TotalHours: 3.5,
		FlightType: flight.TypeTraining, Departure: "LRBS", Arrival: "LRBS", Aircraft: "YR-ABC",
	})
	env.createFlight(t, flight.Flight{
		UserID: owner.ID, Date: day(t, "2024-02-20"), TotalHours: 1,
		FlightType: flight.TypeFerry, Departure: "LRBS", Arrival: "LRCL", Aircraft: "YR-ABC",
	})
	// flown by someone else on the owner's tab
	env.createFlight(t, flight.Flight{
		UserID: other.ID, PayerID: owner.ID, Date: day(t, "2024-03-10"), TotalHours: 2,
		FlightType: flight.TypeCharter, Departure: "LRBS", Arrival: "LRBS", Aircraft: "YR-XYZ",
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/usage/"+owner.ID, getToken(t, owner))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report ledger.UsageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, owner.ID, report.User.ID)
	assert.Equal(t, "ion@test.aero", report.User.Email)
	assert.Equal(t, 3, report.FlightCount)
	assert.Equal(t, 15.0, report.TotalPurchasedHours)
	assert.Equal(t, 4.5, report.TotalUsedHours)
	assert.Equal(t, 2.0, report.TotalCharteredHours)
	assert.Equal(t, 8.5, report.RemainingHours)

	require.Len(t, report.Packages, 2)
	p1, p2 := report.Packages[0], report.Packages[1]

	// oldest package absorbs everything, in flight-date order
	assert.Equal(t, 10.0, p1.TotalHours)
	assert.Equal(t, 4.5, p1.UsedHours)
	assert.Equal(t, 2.0, p1.CharteredHours)
	assert.Equal(t, 3.5, p1.RemainingHours)
	assert.Equal(t, ledger.StatusLowHours, p1.Status)
	assert.Len(t, p1.AllocatedFlights, 2)
	assert.Len(t, p1.AllocatedCharteredFlights, 1)

	assert.Equal(t, 5.0, p2.TotalHours)
	assert.Equal(t, 0.0, p2.UsedHours)
	assert.Equal(t, 5.0, p2.RemainingHours)
	assert.Equal(t, ledger.StatusInProgress, p2.Status)
	assert.Empty(t, p2.AllocatedFlights)

	// categories: training is regular, ferry and chartered are separate
	assert.Equal(t, 3.5, report.Statistics.FlownHours.Regular)
	assert.Equal(t, 1, report.Statistics.FlownHours.RegularCount)
	assert.Equal(t, 1.0, report.Statistics.FerryHours.Total)
	assert.Equal(t, 2.0, report.Statistics.CharteredHours.Total)
	assert.Equal(t, 0.0, report.Statistics.PilotCharterHours.Total)
}

func Test_usageApi_emptyLedger(t *testing.T) {
	env := setup(t)

	owner := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	// a flight without any purchased package must not produce allocations
	env.createFlight(t, flight.Flight{
		UserID: owner.ID, Date: day(t, "2024-02-01"), TotalHours: 1.5,
		FlightType: flight.TypeTraining, Departure: "LRBS", Arrival: "LRBS", Aircraft: "YR-ABC",
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/usage/"+owner.ID, getToken(t, owner))
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report ledger.UsageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Empty(t, report.Packages)
	assert.Zero(t, report.TotalPurchasedHours)
	assert.Zero(t, report.RemainingHours)
	assert.Zero(t, report.FlightCount) // flight query skipped entirely
}
