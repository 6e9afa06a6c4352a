package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/user"
)

func Test_flightApi_create(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)
	instructor := env.createUser(t, "Radu", "Chinezu", "radu@test.aero", "", []string{user.RoleInstructor}, true)

	newFl := func(userID string) flight.NewFlight {
		return flight.NewFlight{
			UserID:     userID,
			Date:       day(t, "2024-05-04"),
			TotalHours: 1.5,
			FlightType: flight.TypeTraining,
			Departure:  "LRBS",
			Arrival:    "LRCK",
			Aircraft:   "YR-ABC",
		}
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/flights", marshalObj(t, newFl(pilot.ID)))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("pilot logs own flight", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/flights", getToken(t, pilot), marshalObj(t, newFl(pilot.ID)))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created flight.Flight
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, pilot.ID, created.UserID)
		assert.Equal(t, flight.TypeTraining, created.FlightType)
	})

	t.Run("pilot cannot log for someone else", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/flights", getToken(t, pilot), marshalObj(t, newFl(other.ID)))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("instructor logs for a student", func(t *testing.T) {
		data := newFl(other.ID)
		data.InstructorID = instructor.ID
		req, rec := newAuthRequest(http.MethodPost, "/v1/flights", getToken(t, instructor), marshalObj(t, data))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("invalid payload", func(t *testing.T) {
		data := newFl(pilot.ID)
		data.Departure = "not-an-icao"
		req, rec := newAuthRequest(http.MethodPost, "/v1/flights", getToken(t, pilot), marshalObj(t, data))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_flightApi_query(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)
	manager := env.createUser(t, "Mihai", "Baze", "mihai@test.aero", "", []string{user.RoleBaseManager}, true)

	f1 := env.createFlight(t, flight.Flight{
		UserID: pilot.ID, Date: day(t, "2024-02-01"), TotalHours: 2,
		FlightType: flight.TypeTraining, Departure: "LRBS", Arrival: "LRCK", Aircraft: "YR-ABC",
	})
	f2 := env.createFlight(t, flight.Flight{
		UserID: other.ID, Date: day(t, "2024-02-10"), TotalHours: 1,
		FlightType: flight.TypeDemo, Departure: "LRCK", Arrival: "LRBS", Aircraft: "YR-ABC",
	})
	// chartered for pilot; shows up in pilot's own listing
	f3 := env.createFlight(t, flight.Flight{
		UserID: other.ID, PayerID: pilot.ID, Date: day(t, "2024-03-01"), TotalHours: 3,
		FlightType: flight.TypeCharter, Departure: "LRBS", Arrival: "LRTR", Aircraft: "YR-XYZ",
	})

	tests := []httpTest{
		{
			name: "staff sees everything", path: "/v1/flights", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: marshalList(t, f1, f2, f3),
		},
		{
			name: "staff filter by aircraft", path: "/v1/flights?aircraft=YR-XYZ", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: marshalList(t, f3),
		},
		{
			name: "pilot sees own and chartered", path: "/v1/flights", token: getToken(t, pilot),
			wantCode: http.StatusOK, wantData: marshalList(t, f1, f3),
		},
		{
			name: "filters ignored for non-staff", path: "/v1/flights?aircraft=YR-ABC", token: getToken(t, other),
			wantCode: http.StatusOK, wantData: marshalList(t, f2, f3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_flightApi_retrieve(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)
	manager := env.createUser(t, "Mihai", "Baze", "mihai@test.aero", "", []string{user.RoleBaseManager}, true)

	fl := env.createFlight(t, flight.Flight{
		UserID: pilot.ID, Date: day(t, "2024-02-01"), TotalHours: 2,
		FlightType: flight.TypeTraining, Departure: "LRBS", Arrival: "LRCK", Aircraft: "YR-ABC",
	})

	tests := []httpTest{
		{
			name: "own flight", path: "/v1/flights/" + fl.ID, token: getToken(t, pilot),
			wantCode: http.StatusOK, wantData: marshalObj(t, fl),
		},
		{
			name: "staff", path: "/v1/flights/" + fl.ID, token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: marshalObj(t, fl),
		},
		{
			name: "not a participant", path: "/v1/flights/" + fl.ID, token: getToken(t, other),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound),
		},
		{
			name: "unknown flight", path: "/v1/flights/7629ea8e-45ea-44c8-8a2c-776e20f06b33", token: getToken(t, manager),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_flightApi_updateDestroy(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	manager := env.createUser(t, "Mihai", "Baze", "mihai@test.aero", "", []string{user.RoleBaseManager}, true)

	fl := env.createFlight(t, flight.Flight{
		UserID: pilot.ID, Date: day(t, "2024-02-01"), TotalHours: 2,
		FlightType: flight.TypeTraining, Departure: "LRBS", Arrival: "LRCK", Aircraft: "YR-ABC",
	})

	t.Run("pilot cannot amend", func(t *testing.T) {
		hours := 2.5
		body := marshalObj(t, flight.UpdateFlight{TotalHours: &hours})
		req, rec := newAuthRequest(http.MethodPut, "/v1/flights/"+fl.ID, getToken(t, pilot), body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff amends hours", func(t *testing.T) {
		hours := 2.5
		body := marshalObj(t, flight.UpdateFlight{TotalHours: &hours})
		req, rec := newAuthRequest(http.MethodPut, "/v1/flights/"+fl.ID, getToken(t, manager), body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated flight.Flight
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, 2.5, updated.TotalHours)
		assert.Equal(t, fl.Departure, updated.Departure)
	})

	t.Run("pilot cannot delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/flights/"+fl.ID, getToken(t, pilot))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("staff deletes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/flights/"+fl.ID, getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/flights/"+fl.ID, getToken(t, manager))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
