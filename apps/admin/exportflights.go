package main

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/user"
)

// exportFlights writes all logged flights in the given period to an
// .xlsx spreadsheet.
func (cli *commandLine) exportFlights(out string, from, to time.Time) error {
	ctx := context.Background()

	ordering := []core.DBOrdering{{Field: "date", Ascending: true}}
	flights, err := cli.flightRepo.QueryFlights(ctx, &flight.QueryFilter{DateFrom: from, DateTo: to}, ordering)
	if err != nil {
		return err
	}

	// resolve user IDs to emails
	users, err := cli.usrRepo.QueryUsers(ctx, &user.QueryFilter{}, nil)
	if err != nil {
		return err
	}
	emails := make(map[string]string, len(users))
	for _, usr := range users {
		emails[usr.ID] = usr.Email
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"date", "pilot", "instructor", "payer", "type",
		"departure", "arrival", "aircraft", "hours", "remarks",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, fl := range flights {
		excelRow := []interface{}{
			fl.Date.Format("2006-01-02"),
			emails[fl.UserID],
			emails[fl.InstructorID],
			emails[fl.PayerID],
			fl.FlightType,
			fl.Departure,
			fl.Arrival,
			fl.Aircraft,
			fl.TotalHours,
			fl.Remarks,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		row++
	}

	if err := f.SaveAs(out); err != nil {
		return err
	}
	fmt.Printf("exported %d flight(s) to %s\n", len(flights), out)
	return nil
}
