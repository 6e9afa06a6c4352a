package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
	billingsvc "github.com/cavok/flightdesk/services/billing"
	emailsvc "github.com/cavok/flightdesk/services/email"
	identitysvc "github.com/cavok/flightdesk/services/identity"
	logsvc "github.com/cavok/flightdesk/services/logger"
	dummydb "github.com/cavok/flightdesk/storage/database/dummy"
)

var (
	conf    *core.Config
	usrRepo user.Repository
)

func TestMain(m *testing.M) {
	_ = os.Setenv("ENV", "TEST")
	conf = core.NewConfig()
	logger = log.New(ioutil.Discard, "", 0)
	os.Exit(m.Run())
}

func setup(t *testing.T, provInvs ...core.BillingInvoice) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	flightRepo := dummydb.NewFlightRepository(db)
	invRepo := dummydb.NewInvoiceRepository(db)

	usrSvc := user.NewService(nil, usrRepo, emailsvc.NewConsoleServiceMock(), identitysvc.NewDummyService(), conf)
	invSvc := invoice.NewService(nil, invRepo, usrSvc, billingsvc.NewDummyService(provInvs...), logsvc.NewStdLogger(logger))

	return &commandLine{
		usrRepo:    usrRepo,
		flightRepo: flightRepo,
		invSvc:     invSvc,
	}
}

func createUser(t *testing.T, email string) user.User {
	t.Helper()

	now := time.Now().UTC()
	active := true
	usr := user.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		IsActive:  &active,
		Roles:     user.PilotRoles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("initial"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "flight", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe@test.aero")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.aero"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.aero"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Secr3tSecr3t"), nil }

	if err := cli.run([]string{"admin", "adduser", "-email", "new@test.aero", "-admin"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "new@test.aero"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if !usr.IsAdmin() {
		t.Errorf("addUser() roles = %v; want admin roles", usr.Roles)
	}
	if usr.IsActive == nil || !*usr.IsActive {
		t.Error("addUser() user not active")
	}
	if err := usr.CheckPassword("Secr3tSecr3t"); err != nil {
		t.Error("addUser() password not set")
	}

	// running again updates the existing user
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("0therPassw0rd"), nil }
	if err := cli.run([]string{"admin", "adduser", "-email", "new@test.aero"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	updated, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "new@test.aero"})
	if err != nil {
		t.Fatalf("GetUser() failed, %v", err)
	}
	if updated.ID != usr.ID {
		t.Errorf("addUser() created a duplicate user")
	}
	if err := updated.CheckPassword("0therPassw0rd"); err != nil {
		t.Error("addUser() password not updated")
	}
}

func Test_commandLine_importInvoices(t *testing.T) {
	provInv := core.BillingInvoice{
		Series: "FD", Number: "0300", ClientEmail: "awe@test.aero",
		IssueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Currency: "RON", Paid: true,
		Items: []core.BillingItem{{Name: "Hour package 10h", Unit: "HUR", Quantity: 10}},
	}
	cli := setup(t, provInv)

	createUser(t, "awe@test.aero")

	if err := cli.run([]string{"admin", "importinvoices", "-since", "2024-01-01"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	invs, err := cli.invSvc.Query(&invoice.QueryFilter{Series: "FD"}, nil)
	if err != nil {
		t.Fatalf("Query() failed, %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("importInvoices() imported %d invoice(s); want 1", len(invs))
	}
	if invs[0].Status != invoice.StatusImported {
		t.Errorf("importInvoices() status = %s; want %s", invs[0].Status, invoice.StatusImported)
	}

	t.Run("bad since date", func(t *testing.T) {
		if err := cli.run([]string{"admin", "importinvoices", "-since", "lol"}); err == nil {
			t.Error("cli.run() expected a date parse error")
		}
	})
}
