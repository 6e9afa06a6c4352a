package ledger

import "github.com/cavok/flightdesk/core/flight"

// ComputeStatistics produces flat category totals straight from the flight
// list, independent of the allocation pass:
//
//	regular:      piloted by the user, type not FERRY/DEMO/CHARTER
//	ferry:        piloted by the user, type FERRY
//	demo:         piloted by the user, type DEMO
//	chartered:    flown by someone else on the user's tab (any type)
//	pilotCharter: piloted by the user, type CHARTER
func ComputeStatistics(flights []flight.Flight, userID string) Statistics {
	var stats Statistics
	for _, fl := range flights {
		if fl.UserID == userID {
			switch fl.FlightType {
			case flight.TypeFerry:
				stats.FerryHours.Total += fl.TotalHours
				stats.FerryHours.Count++
			case flight.TypeDemo:
				stats.DemoHours.Total += fl.TotalHours
				stats.DemoHours.Count++
			case flight.TypeCharter:
				stats.PilotCharterHours.Total += fl.TotalHours
				stats.PilotCharterHours.Count++
			default:
				stats.FlownHours.Regular += fl.TotalHours
				stats.FlownHours.RegularCount++
			}
		}
		if fl.IsCharteredFor(userID) {
			stats.CharteredHours.Total += fl.TotalHours
			stats.CharteredHours.Count++
		}
	}
	return stats
}
