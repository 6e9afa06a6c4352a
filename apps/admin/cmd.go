package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	usrRepo    user.Repository
	flightRepo flight.Repository
	invSvc     invoice.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|up-by-one|up-to|down|down-to|redo|reset|status|version|create|fix - manage DB migrations")
	fmt.Println("  adduser -email EMAIL [-admin] - create or reactivate a user; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password; the password is prompted next")
	fmt.Println("  importinvoices [-since YYYY-MM-DD] - import paid invoices from the billing provider")
	fmt.Println("  exportflights -out FILE.xlsx [-from YYYY-MM-DD] [-to YYYY-MM-DD] - export logged flights to a spreadsheet")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles to the user.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importInvoicesCmd := flag.NewFlagSet("importinvoices", flag.ExitOnError)
	importInvoicesSince := importInvoicesCmd.String("since", "", "Import invoices issued since this date (YYYY-MM-DD). Defaults to last month.")

	exportFlightsCmd := flag.NewFlagSet("exportflights", flag.ExitOnError)
	exportFlightsOut := exportFlightsCmd.String("out", "", "Destination .xlsx file.")
	exportFlightsFrom := exportFlightsCmd.String("from", "", "Only flights on or after this date (YYYY-MM-DD).")
	exportFlightsTo := exportFlightsCmd.String("to", "", "Only flights on or before this date (YYYY-MM-DD).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserEmail, pwd, *addUserAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "importinvoices":
		if err := importInvoicesCmd.Parse(args[2:]); err != nil {
			return err
		}
		since := time.Now().UTC().AddDate(0, -1, 0)
		if *importInvoicesSince != "" {
			var err error
			if since, err = time.Parse("2006-01-02", *importInvoicesSince); err != nil {
				return err
			}
		}
		return cli.importInvoices(since)
	case "exportflights":
		if err := exportFlightsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportFlightsOut == "" {
			exportFlightsCmd.Usage()
			return errHelp
		}
		var from, to time.Time
		var err error
		if *exportFlightsFrom != "" {
			if from, err = time.Parse("2006-01-02", *exportFlightsFrom); err != nil {
				return err
			}
		}
		if *exportFlightsTo != "" {
			if to, err = time.Parse("2006-01-02", *exportFlightsTo); err != nil {
				return err
			}
		}
		return cli.exportFlights(*exportFlightsOut, from, to)
	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads a password off the terminal. An empty password
// returns errHelp after printing the flag set's usage.
func promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
