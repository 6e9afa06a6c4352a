package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/cavok/flightdesk/core"
	"github.com/cavok/flightdesk/core/flight"
)

type flightRepository struct {
	db *flightTable
}

var _ flight.Repository = (*flightRepository)(nil) // interface compliance check

func NewFlightRepository(db *DB) flight.Repository {
	return &flightRepository{db: db.flight}
}

func (repo *flightRepository) query() []flight.Flight {
	flights := make([]flight.Flight, 0, len(repo.db.table))
	for _, fl := range repo.db.table {
		flights = append(flights, *fl)
	}
	return flights
}

func (repo *flightRepository) CreateFlight(ctx context.Context, fl flight.Flight, exec ...core.DBExecutor) (flight.Flight, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	fl.ID = uuid.New().String()
	repo.db.table[fl.ID] = &fl
	return fl, nil
}

func (repo *flightRepository) QueryFlights(ctx context.Context, filter *flight.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]flight.Flight, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	flights := repo.query()
	if filter != nil {
		var filtered []flight.Flight
		for _, fl := range flights {
			if filter.UserID != "" && fl.UserID != filter.UserID {
				continue
			}
			if filter.InstructorID != "" && fl.InstructorID != filter.InstructorID {
				continue
			}
			if filter.PayerID != "" && fl.PayerID != filter.PayerID {
				continue
			}
			if filter.FlightType != "" && fl.FlightType != filter.FlightType {
				continue
			}
			if filter.Aircraft != "" && fl.Aircraft != filter.Aircraft {
				continue
			}
			if !filter.DateFrom.IsZero() && fl.Date.Before(filter.DateFrom.UTC()) {
				continue
			}
			if !filter.DateTo.IsZero() && fl.Date.After(filter.DateTo.UTC()) {
				continue
			}
			filtered = append(filtered, fl)
		}
		flights = filtered
	}

	sort.Slice(flights, func(i, j int) bool { return flights[i].Date.Before(flights[j].Date) })
	return flights, nil
}

func (repo *flightRepository) QueryFlightsForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]flight.Flight, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var flights []flight.Flight
	for _, fl := range repo.query() {
		if fl.UserID == userID || fl.PayerID == userID {
			flights = append(flights, fl)
		}
	}

	sort.Slice(flights, func(i, j int) bool { return flights[i].Date.Before(flights[j].Date) })
	return flights, nil
}

func (repo *flightRepository) GetFlightByID(ctx context.Context, id string, exec ...core.DBExecutor) (flight.Flight, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if fl, ok := repo.db.table[id]; ok {
		return *fl, nil
	}
	return flight.Flight{}, flight.ErrNotFound
}

func (repo *flightRepository) UpdateFlight(ctx context.Context, fl flight.Flight, exec ...core.DBExecutor) (flight.Flight, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[fl.ID]; !ok {
		return flight.Flight{}, flight.ErrNotFound
	}
	repo.db.table[fl.ID] = &fl
	return fl, nil
}

func (repo *flightRepository) DeleteFlightsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
