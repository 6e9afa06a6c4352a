package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/flight"
)

// flightRow mirrors the flight table.
type flightRow struct {
	ID           string      `db:"id"`
	UserID       string      `db:"user_id"`
	InstructorID null.String `db:"instructor_id"`
	PayerID      null.String `db:"payer_id"`
	Date         null.Time   `db:"date"`
	TotalHours   float64     `db:"total_hours"`
	FlightType   string      `db:"flight_type"`
	Departure    string      `db:"departure"`
	Arrival      string      `db:"arrival"`
	Aircraft     string      `db:"aircraft"`
	Remarks      null.String `db:"remarks"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

type flightRepository struct {
	db *sqlx.DB
}

var _ flight.Repository = (*flightRepository)(nil) // interface compliance check

func NewFlightRepository(db *sqlx.DB) *flightRepository {
	return &flightRepository{db: db}
}

func (repo flightRepository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return repo.db
}

func (repo flightRepository) toRow(fl flight.Flight) flightRow {
	return flightRow{
		ID:           fl.ID,
		UserID:       fl.UserID,
		InstructorID: null.NewString(fl.InstructorID, fl.InstructorID != ""),
		PayerID:      null.NewString(fl.PayerID, fl.PayerID != ""),
		Date:         null.NewTime(fl.Date.UTC(), !fl.Date.IsZero()),
		TotalHours:   fl.TotalHours,
		FlightType:   fl.FlightType,
		Departure:    fl.Departure,
		Arrival:      fl.Arrival,
		Aircraft:     fl.Aircraft,
		Remarks:      null.NewString(fl.Remarks, fl.Remarks != ""),
		CreatedAt:    null.NewTime(fl.CreatedAt.UTC(), !fl.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(fl.UpdatedAt.UTC(), !fl.UpdatedAt.IsZero()),
	}
}

func (repo flightRepository) fromRow(row flightRow) flight.Flight {
	return flight.Flight{
		ID:           row.ID,
		UserID:       row.UserID,
		InstructorID: row.InstructorID.String,
		PayerID:      row.PayerID.String,
		Date:         row.Date.Time,
		TotalHours:   row.TotalHours,
		FlightType:   row.FlightType,
		Departure:    row.Departure,
		Arrival:      row.Arrival,
		Aircraft:     row.Aircraft,
		Remarks:      row.Remarks.String,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func (repo flightRepository) fromRows(rows []flightRow) []flight.Flight {
	flights := make([]flight.Flight, 0, len(rows))
	for _, row := range rows {
		flights = append(flights, repo.fromRow(row))
	}
	return flights
}

// trapNoRowsErr maps psql "no rows" err to flight.ErrNotFound
func (repo flightRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return flight.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo flightRepository) CreateFlight(ctx context.Context, fl flight.Flight, exec ...core.DBExecutor) (flight.Flight, error) {
	fl.ID = uuid.New().String()
	row := repo.toRow(fl)

	const query = `
		INSERT INTO flight (id, user_id, instructor_id, payer_id, date, total_hours, flight_type,
		                    departure, arrival, aircraft, remarks, created_at, updated_at)
		VALUES (:id, :user_id, :instructor_id, :payer_id, :date, :total_hours, :flight_type,
		        :departure, :arrival, :aircraft, :remarks, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), query, row); err != nil {
		return flight.Flight{}, errors.Wrap(err, "inserting flight")
	}
	return repo.fromRow(row), nil
}

func (repo flightRepository) QueryFlights(ctx context.Context, filter *flight.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]flight.Flight, error) {
	query := "SELECT * FROM flight"
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, "user_id = "+arg(filter.UserID))
		}
		if filter.InstructorID != "" {
			conds = append(conds, "instructor_id = "+arg(filter.InstructorID))
		}
		if filter.PayerID != "" {
			conds = append(conds, "payer_id = "+arg(filter.PayerID))
		}
		if filter.FlightType != "" {
			conds = append(conds, "flight_type = "+arg(filter.FlightType))
		}
		if filter.Aircraft != "" {
			conds = append(conds, "aircraft = "+arg(filter.Aircraft))
		}
		if !filter.DateFrom.IsZero() {
			conds = append(conds, "date >= "+arg(filter.DateFrom.UTC()))
		}
		if !filter.DateTo.IsZero() {
			conds = append(conds, "date <= "+arg(filter.DateTo.UTC()))
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []flightRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying flights")
	}
	return repo.fromRows(rows), nil
}

func (repo flightRepository) QueryFlightsForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]flight.Flight, error) {
	const query = `SELECT * FROM flight WHERE user_id = $1 OR payer_id = $1 ORDER BY date ASC`

	var rows []flightRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying user flights")
	}
	return repo.fromRows(rows), nil
}

func (repo flightRepository) GetFlightByID(ctx context.Context, id string, exec ...core.DBExecutor) (flight.Flight, error) {
	if _, err := uuid.Parse(id); err != nil {
		return flight.Flight{}, flight.ErrNotFound
	}

	var row flightRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, "SELECT * FROM flight WHERE id = $1", id); err != nil {
		return flight.Flight{}, repo.trapNoRowsErr(err, "finding flight")
	}
	return repo.fromRow(row), nil
}

func (repo flightRepository) UpdateFlight(ctx context.Context, fl flight.Flight, exec ...core.DBExecutor) (flight.Flight, error) {
	row := repo.toRow(fl)

	const query = `
		UPDATE flight
		SET user_id = :user_id, instructor_id = :instructor_id, payer_id = :payer_id, date = :date,
		    total_hours = :total_hours, flight_type = :flight_type, departure = :departure,
		    arrival = :arrival, aircraft = :aircraft, remarks = :remarks, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), query, row)
	if err != nil {
		return flight.Flight{}, errors.Wrap(err, "updating flight")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return flight.Flight{}, flight.ErrNotFound
	}
	return fl, nil
}

func (repo flightRepository) DeleteFlightsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM flight WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting flights")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting flights")
	}
	return int(cnt), nil
}
