package flight

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/cavok/flightdesk/core"
)

// Flight types
const (
	TypeTraining  = "TRAINING"
	TypeFerry     = "FERRY"
	TypeDemo      = "DEMO"
	TypeCharter   = "CHARTER"
	TypeCheckride = "CHECKRIDE"
)

// Roles a user can hold on a flight.
const (
	RolePilot      = "PILOT"
	RoleInstructor = "INSTRUCTOR"
	RolePayer      = "PAYER"
)

var AllTypes = []string{TypeTraining, TypeFerry, TypeDemo, TypeCharter, TypeCheckride}

type Flight struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"` // pilot in command
	InstructorID string    `json:"instructor_id,omitempty"`
	PayerID      string    `json:"payer_id,omitempty"` // set when billed to someone else
	Date         time.Time `json:"date"`               // UTC
	TotalHours   float64   `json:"total_hours"`
	FlightType   string    `json:"flight_type"`
	Departure    string    `json:"departure"` // ICAO
	Arrival      string    `json:"arrival"`   // ICAO
	Aircraft     string    `json:"aircraft"`  // registration
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// RoleFor reports the role the given user holds on this flight.
// An instructor match wins over a payer match: a flight where the user is
// both instructor and charter payer classifies as INSTRUCTOR. That mirrors
// the accounting system this replaces; see TestRoleForPrecedence before
// changing it.
func (f *Flight) RoleFor(userID string) string {
	if f.InstructorID == userID {
		return RoleInstructor
	}
	if f.PayerID == userID && f.UserID != userID {
		return RolePayer
	}
	return RolePilot
}

// IsCharteredFor reports whether this flight was flown by someone else on
// the given user's tab.
func (f *Flight) IsCharteredFor(userID string) bool {
	return f.PayerID == userID && f.UserID != userID
}

// NewFlight contains information needed to log a new Flight.
type NewFlight struct {
	UserID       string    `json:"user_id" validate:"required"`
	InstructorID string    `json:"instructor_id"`
	PayerID      string    `json:"payer_id"`
	Date         time.Time `json:"date" validate:"required"`
	TotalHours   float64   `json:"total_hours" validate:"required,gt=0"`
	FlightType   string    `json:"flight_type" validate:"required,flighttype"`
	Departure    string    `json:"departure" validate:"required,icao"`
	Arrival      string    `json:"arrival" validate:"required,icao"`
	Aircraft     string    `json:"aircraft" validate:"required,tailnumber"`
	Remarks      string    `json:"remarks"`
}

func (nf *NewFlight) Validate(validate *validator.Validate) error {
	nf.FlightType = core.CleanString(nf.FlightType)
	nf.FlightType = strings.ToUpper(nf.FlightType)
	nf.Departure = strings.ToUpper(core.CleanString(nf.Departure))
	nf.Arrival = strings.ToUpper(core.CleanString(nf.Arrival))
	nf.Aircraft = strings.ToUpper(core.CleanString(nf.Aircraft))
	nf.Remarks = core.CleanString(nf.Remarks)
	return validate.Struct(nf)
}

// UpdateFlight defines what information may be provided to amend a logged Flight.
type UpdateFlight struct {
	InstructorID *string    `json:"instructor_id"`
	PayerID      *string    `json:"payer_id"`
	Date         *time.Time `json:"date"`
	TotalHours   *float64   `json:"total_hours" validate:"omitempty,gt=0"`
	FlightType   string     `json:"flight_type" validate:"omitempty,flighttype"`
	Departure    string     `json:"departure" validate:"omitempty,icao"`
	Arrival      string     `json:"arrival" validate:"omitempty,icao"`
	Aircraft     string     `json:"aircraft" validate:"omitempty,tailnumber"`
	Remarks      *string    `json:"remarks"`
}

func (uf *UpdateFlight) Validate(validate *validator.Validate) error {
	uf.FlightType = strings.ToUpper(core.CleanString(uf.FlightType))
	uf.Departure = strings.ToUpper(core.CleanString(uf.Departure))
	uf.Arrival = strings.ToUpper(core.CleanString(uf.Arrival))
	uf.Aircraft = strings.ToUpper(core.CleanString(uf.Aircraft))
	return validate.Struct(uf)
}

type QueryFilter struct {
	UserID       string    `query:"user_id"`
	InstructorID string    `query:"instructor_id"`
	PayerID      string    `query:"payer_id"`
	FlightType   string    `query:"flight_type"`
	Aircraft     string    `query:"aircraft"`
	DateFrom     time.Time `query:"date_from"`
	DateTo       time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.InstructorID == "" && qf.PayerID == "" &&
		qf.FlightType == "" && qf.Aircraft == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.FlightType = strings.ToUpper(core.CleanString(qf.FlightType))
	qf.Aircraft = strings.ToUpper(core.CleanString(qf.Aircraft))
}

// InitValidators registers flight-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation("flighttype", flightTypeValidation)
	core.RegisterCustomTranslation(validate, translator, "flighttype", "invalid flight type")
}

func flightTypeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, t := range AllTypes {
		if t == val {
			return true
		}
	}
	return false
}
