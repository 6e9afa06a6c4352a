package flight

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
)

var (
	// errors
	ErrNotFound = errors.New("flight not found")
)

type (
	Repository interface {
		CreateFlight(ctx context.Context, fl Flight, exec ...core.DBExecutor) (Flight, error)
		QueryFlights(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Flight, error)
		// QueryFlightsForUser returns all flights where the user is the pilot
		// or the payer, ordered by date ascending.
		QueryFlightsForUser(ctx context.Context, userID string, exec ...core.DBExecutor) ([]Flight, error)
		GetFlightByID(ctx context.Context, id string, exec ...core.DBExecutor) (Flight, error)
		UpdateFlight(ctx context.Context, fl Flight, exec ...core.DBExecutor) (Flight, error)
		DeleteFlightsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(nf NewFlight) (Flight, error)
		Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Flight, error)
		QueryForUser(userID string) ([]Flight, error)
		GetByID(id string) (Flight, error)
		Update(id string, uf UpdateFlight) (Flight, error)
		Delete(ids ...string) error
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(db core.DB, repo Repository) *service {
	return &service{db: db, repo: repo}
}

func (svc *service) Create(nf NewFlight) (Flight, error) {
	now := time.Now().UTC()
	fl := Flight{
		UserID:       nf.UserID,
		InstructorID: nf.InstructorID,
		PayerID:      nf.PayerID,
		Date:         nf.Date.UTC(),
		TotalHours:   core.RoundHours(nf.TotalHours),
		FlightType:   nf.FlightType,
		Departure:    nf.Departure,
		Arrival:      nf.Arrival,
		Aircraft:     nf.Aircraft,
		Remarks:      nf.Remarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateFlight(context.Background(), fl)
}

func (svc *service) Query(filter *QueryFilter, ordering []core.DBOrdering) ([]Flight, error) {
	return svc.repo.QueryFlights(context.Background(), filter, ordering)
}

func (svc *service) QueryForUser(userID string) ([]Flight, error) {
	return svc.repo.QueryFlightsForUser(context.Background(), userID)
}

func (svc *service) GetByID(id string) (Flight, error) {
	return svc.repo.GetFlightByID(context.Background(), id)
}

func (svc *service) Update(id string, uf UpdateFlight) (Flight, error) {
	fl, err := svc.GetByID(id)
	if err != nil {
		return Flight{}, err
	}

	if uf.InstructorID != nil {
		fl.InstructorID = *uf.InstructorID
	}
	if uf.PayerID != nil {
		fl.PayerID = *uf.PayerID
	}
	if uf.Date != nil {
		fl.Date = uf.Date.UTC()
	}
	if uf.TotalHours != nil {
		fl.TotalHours = core.RoundHours(*uf.TotalHours)
	}
	if uf.FlightType != "" {
		fl.FlightType = uf.FlightType
	}
	if uf.Departure != "" {
		fl.Departure = uf.Departure
	}
	if uf.Arrival != "" {
		fl.Arrival = uf.Arrival
	}
	if uf.Aircraft != "" {
		fl.Aircraft = uf.Aircraft
	}
	if uf.Remarks != nil {
		fl.Remarks = *uf.Remarks
	}
	fl.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateFlight(context.Background(), fl)
}

func (svc *service) Delete(ids ...string) error {
	_, err := svc.repo.DeleteFlightsByID(context.Background(), ids)
	return err
}
