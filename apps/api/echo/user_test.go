package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/cavok/flightdesk/apps/api/echo"
	"github.com/cavok/flightdesk/core/user"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Ion", "Popescu", "ion@test.aero", "Secr3tSecr3t", []string{user.RolePilot}, true)
	env.createUser(t, "Dodo", "Dormant", "dodo@test.aero", "Secr3tSecr3t", []string{user.RolePilot}, false)

	t.Run("valid credentials", func(t *testing.T) {
		body := marshalObj(t, LoginRequest{Email: "ion@test.aero", Password: "Secr3tSecr3t"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
	})

	tests := []httpTest{
		{
			name: "wrong password",
			body: marshalObj(t, LoginRequest{Email: "ion@test.aero", Password: "nope-nope"}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email",
			body: marshalObj(t, LoginRequest{Email: "ghost@test.aero", Password: "Secr3tSecr3t"}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account",
			body: marshalObj(t, LoginRequest{Email: "dodo@test.aero", Password: "Secr3tSecr3t"}),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	manager := env.createUser(t, "Mihai", "Baze", "mihai@test.aero", "", []string{user.RoleBaseManager}, true)
	admin := env.createUser(t, "Adina", "Admin", "adina@test.aero", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "Auth required", path: "/v1/users",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "Staff required", path: "/v1/users", token: getToken(t, pilot),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "Admin gets all", path: "/v1/users", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marshalList(t, pilot, manager, admin),
		},
		{
			name: "Base manager gets all", path: "/v1/users", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: marshalList(t, pilot, manager, admin),
		},
		{
			name: "search", path: "/v1/users?search=popescu", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marshalList(t, pilot),
		},
		{
			name: "filter by role", path: "/v1/users?role=basemanager:", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marshalList(t, manager),
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

func Test_userApi_register(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	admin := env.createUser(t, "Adina", "Admin", "adina@test.aero", "", []string{user.RoleAdmin}, true)

	newUsr := user.NewUser{
		FirstName: "Nou", LastName: "Venit", Email: "nou@test.aero",
		Password: "Secr3tSecr3t", PasswordConfirm: "Secr3tSecr3t",
		Roles: []string{user.RolePilot},
	}

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, pilot), marshalObj(t, newUsr))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates pilot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), marshalObj(t, newUsr))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "nou@test.aero", created.Email)
		assert.Equal(t, []string{user.RolePilot}, created.Roles)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), marshalObj(t, newUsr))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cannot grant a role above own", func(t *testing.T) {
		data := newUsr
		data.Email = "owner@test.aero"
		data.Roles = []string{user.RoleAdminOwner}
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), marshalObj(t, data))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)

	pilot := env.createUser(t, "Ion", "Popescu", "ion@test.aero", "", []string{user.RolePilot}, true)
	other := env.createUser(t, "Ana", "Ionescu", "ana@test.aero", "", []string{user.RolePilot}, true)
	admin := env.createUser(t, "Adina", "Admin", "adina@test.aero", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{
			name: "own detail", path: "/v1/users/" + pilot.ID, token: getToken(t, pilot),
			wantCode: http.StatusOK, wantData: marshalObj(t, pilot),
		},
		{
			name: "admin reads anyone", path: "/v1/users/" + pilot.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marshalObj(t, pilot),
		},
		{
			name: "others get 404", path: "/v1/users/" + pilot.ID, token: getToken(t, other),
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
