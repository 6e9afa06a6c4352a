package ledger

import (
	"sort"

	"github.com/cavok/flightdesk/core/invoice"
)

// ExtractPackages scans paid/imported invoices for hour-denominated line
// items and materializes each as a purchased package. The result is sorted
// by purchase date ascending, which defines FIFO precedence for the
// allocator; the sort is explicit here rather than an assumption about the
// invoice query's ordering.
func ExtractPackages(invoices []invoice.Invoice) []Package {
	var packages []Package
	for _, inv := range invoices {
		for _, item := range inv.Items {
			if !item.IsHourUnit() || item.Quantity <= 0 {
				continue
			}
			packages = append(packages, Package{
				ID:           inv.ID + ":" + item.ID,
				TotalHours:   item.Quantity,
				PurchaseDate: inv.IssueDate,
				Price:        item.TotalAmount,
				Currency:     inv.Currency,
			})
		}
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].PurchaseDate.Before(packages[j].PurchaseDate)
	})
	return packages
}
