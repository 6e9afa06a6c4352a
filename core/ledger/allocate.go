package ledger

import (
	"sort"
	"time"

	"github.com/cavok/flightdesk/core/flight"
)

// Allocate walks the user's flights in chronological order and deducts their
// hours from packages in purchase-date (FIFO) order: the oldest purchased
// hours are consumed first. Hours flown by someone else on the user's tab
// accrue to the chartered bucket; everything else to the used bucket.
//
// When a flight's hours exceed all remaining package capacity, the entire
// remainder is charged to the LAST package, driving its balance negative.
// The deficit shows on the most recent purchase rather than vanishing.
//
// The pass is deterministic and idempotent: fresh PackageUsage state is
// built per call and the inputs are re-sorted here instead of trusting
// upstream query order.
func Allocate(packages []Package, flights []flight.Flight, userID string, now time.Time) []PackageUsage {
	usages := make([]PackageUsage, len(packages))
	for i, pkg := range packages {
		usages[i] = PackageUsage{
			Package:                   pkg,
			AllocatedFlights:          []FlightAllocation{},
			AllocatedCharteredFlights: []FlightAllocation{},
		}
	}
	sort.SliceStable(usages, func(i, j int) bool {
		return usages[i].PurchaseDate.Before(usages[j].PurchaseDate)
	})

	ordered := make([]flight.Flight, len(flights))
	copy(ordered, flights)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	for _, fl := range ordered {
		// malformed records contribute nothing; one bad row must not sink
		// the whole ledger
		if fl.TotalHours <= 0 {
			continue
		}

		chartered := fl.IsCharteredFor(userID)
		role := fl.RoleFor(userID)
		remaining := fl.TotalHours

		for i := range usages {
			if remaining <= 0 {
				break
			}
			pkg := &usages[i]

			available := pkg.available()
			if available <= 0 {
				continue
			}

			deduction := remaining
			if available < deduction {
				deduction = available
			}
			remaining -= deduction
			pkg.charge(fl, deduction, chartered, role)
		}

		// overflow: hours beyond all package capacity become debt on the
		// most recent package
		if remaining > 0 && len(usages) > 0 {
			usages[len(usages)-1].charge(fl, remaining, chartered, role)
		}
	}

	for i := range usages {
		usages[i].RemainingHours = usages[i].available()
		usages[i].Status = classify(&usages[i], now)
	}
	return usages
}

// charge applies a deduction to the appropriate bucket and records an
// allocation trace, subject to the display cap.
func (pu *PackageUsage) charge(fl flight.Flight, hours float64, chartered bool, role string) {
	alloc := FlightAllocation{
		FlightID:         fl.ID,
		Date:             fl.Date,
		Hours:            hours,
		TotalFlightHours: fl.TotalHours,
		FlightType:       fl.FlightType,
		Role:             role,
	}
	if chartered {
		pu.CharteredHours += hours
		if len(pu.AllocatedCharteredFlights) < maxAllocationTrace {
			pu.AllocatedCharteredFlights = append(pu.AllocatedCharteredFlights, alloc)
		}
	} else {
		pu.UsedHours += hours
		if len(pu.AllocatedFlights) < maxAllocationTrace {
			pu.AllocatedFlights = append(pu.AllocatedFlights, alloc)
		}
	}
}

// classify derives a package's lifecycle status. Precedence: expired, then
// overdrawn, then low hours, then in progress. Expiry wins over overdrawn
// even though no package currently carries an expiry date; the field is kept
// for packages sold with a validity window.
func classify(pu *PackageUsage, now time.Time) string {
	if pu.ExpiryDate != nil && pu.ExpiryDate.Before(now) {
		return StatusExpired
	}
	if pu.RemainingHours < 0 {
		return StatusOverdrawn
	}
	if pu.RemainingHours < lowHoursThreshold {
		return StatusLowHours
	}
	return StatusInProgress
}
