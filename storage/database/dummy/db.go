package dummydb

import (
	"sync"

	"github.com/cavok/flightdesk/core/flight"
	"github.com/cavok/flightdesk/core/invoice"
	"github.com/cavok/flightdesk/core/user"
)

type (
	DB struct {
		user    *userTable
		flight  *flightTable
		invoice *invoiceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	flightTable struct {
		sync.RWMutex
		table map[string]*flight.Flight
	}

	invoiceTable struct {
		sync.RWMutex
		table map[string]*invoice.Invoice
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		flight:  &flightTable{table: make(map[string]*flight.Flight)},
		invoice: &invoiceTable{table: make(map[string]*invoice.Invoice)},
	}
	return db, nil
}
