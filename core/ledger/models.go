package ledger

import "time"

// Package lifecycle statuses.
const (
	StatusExpired    = "expired"
	StatusOverdrawn  = "overdrawn"
	StatusLowHours   = "low hours"
	StatusInProgress = "in progress"
)

const (
	// lowHoursThreshold is the remaining-hours mark under which a package is
	// flagged so the front desk can nudge the client to top up.
	lowHoursThreshold = 5.0

	// maxAllocationTrace bounds each per-package allocation list. A display
	// and memory cap only: deduction totals are never truncated.
	maxAllocationTrace = 100
)

type (
	// Package is a block of purchased flight hours derived from one
	// hour-denominated invoice line item. Never persisted as such; it is
	// rebuilt from invoices on every report.
	Package struct {
		ID           string     `json:"id"` // synthetic: invoiceID:itemID
		TotalHours   float64    `json:"totalHours"`
		PurchaseDate time.Time  `json:"purchaseDate"`
		ExpiryDate   *time.Time `json:"expiryDate"`
		Price        float64    `json:"price"`
		Currency     string     `json:"currency"`
	}

	// FlightAllocation records one deduction of flight hours from a package.
	FlightAllocation struct {
		FlightID         string    `json:"flightId"`
		Date             time.Time `json:"date"`
		Hours            float64   `json:"hours"` // amount deducted from this package
		TotalFlightHours float64   `json:"totalFlightHours"`
		FlightType       string    `json:"flightType"`
		Role             string    `json:"role"`
	}

	// PackageUsage is a Package mutated with cumulative usage during the
	// allocation pass. RemainingHours may go negative (debt model).
	PackageUsage struct {
		Package
		UsedHours                 float64            `json:"usedHours"`
		CharteredHours            float64            `json:"charteredHours"`
		RemainingHours            float64            `json:"remainingHours"`
		Status                    string             `json:"status"`
		AllocatedFlights          []FlightAllocation `json:"allocatedFlights"`
		AllocatedCharteredFlights []FlightAllocation `json:"allocatedCharteredFlights"`
	}

	// CategoryStat is a flat {hours, count} pair for one flight category.
	CategoryStat struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	// RegularStat mirrors CategoryStat under the legacy field names the
	// frontend consumes for the regular-hours bucket.
	RegularStat struct {
		Regular      float64 `json:"regular"`
		RegularCount int     `json:"regularCount"`
	}

	// Statistics summarizes the flight list by category. The categories are
	// NOT a strict partition: a CHARTER flight flown by the user counts in
	// pilotCharterHours and is excluded from regular, while chartered (paid
	// for others) overlaps freely with the pilot's own buckets. Locked by
	// TestStatisticsCategoriesOverlap; do not "fix" into a partition.
	Statistics struct {
		FlownHours        RegularStat  `json:"flownHours"`
		CharteredHours    CategoryStat `json:"charteredHours"`
		DemoHours         CategoryStat `json:"demoHours"`
		FerryHours        CategoryStat `json:"ferryHours"`
		PilotCharterHours CategoryStat `json:"pilotCharterHours"`
	}

	// ReportUser is the slim user identity embedded in a usage report.
	ReportUser struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	// UsageReport is the full hour-package consumption ledger for one user.
	UsageReport struct {
		User                ReportUser     `json:"user"`
		Packages            []PackageUsage `json:"packages"`
		TotalPurchasedHours float64        `json:"totalPurchasedHours"`
		TotalUsedHours      float64        `json:"totalUsedHours"`
		TotalCharteredHours float64        `json:"totalCharteredHours"`
		RemainingHours      float64        `json:"remainingHours"`
		FlightCount         int            `json:"flightCount"`
		Statistics          Statistics     `json:"statistics"`
	}
)

// available reports the hours still deductible from this package.
func (pu *PackageUsage) available() float64 {
	return pu.TotalHours - (pu.UsedHours + pu.CharteredHours)
}
