package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cavok/flightdesk/core/invoice"
)

func TestExtractPackages(t *testing.T) {
	invoices := []invoice.Invoice{
		{
			ID:        "inv2",
			IssueDate: day(5),
			Currency:  "EUR",
			Items: []invoice.Item{
				{ID: "it1", Name: "10 hour block", Unit: "HOUR", Quantity: 10, TotalAmount: 2400},
				{ID: "it2", Name: "Landing fees", Unit: "EA", Quantity: 3, TotalAmount: 45},
			},
		},
		{
			ID:        "inv1",
			IssueDate: day(1),
			Currency:  "EUR",
			Items: []invoice.Item{
				{ID: "it1", Name: "5 hour block", Unit: "HUR", Quantity: 5, TotalAmount: 1250},
				{ID: "it2", Name: "Headset rental", Unit: "pcs", Quantity: 1, TotalAmount: 20},
			},
		},
		{
			ID:        "inv3",
			IssueDate: day(3),
			Currency:  "EUR",
			Items: []invoice.Item{
				{ID: "it1", Name: "Checkride hour", Unit: "h", Quantity: 1, TotalAmount: 300},
			},
		},
	}

	packages := ExtractPackages(invoices)

	// only hour-denominated items, sorted by purchase date ascending
	// regardless of invoice input order
	if assert.Len(t, packages, 3) {
		assert.Equal(t, "inv1:it1", packages[0].ID)
		assert.Equal(t, "inv3:it1", packages[1].ID)
		assert.Equal(t, "inv2:it1", packages[2].ID)
	}
	assert.Equal(t, 5.0, packages[0].TotalHours)
	assert.Equal(t, 1250.0, packages[0].Price)
	assert.Equal(t, day(1), packages[0].PurchaseDate)
	assert.Equal(t, "EUR", packages[0].Currency)
}

func TestExtractPackagesSkipsNonPositiveQuantity(t *testing.T) {
	invoices := []invoice.Invoice{
		{
			ID:        "inv1",
			IssueDate: day(1),
			Items: []invoice.Item{
				{ID: "it1", Unit: "HUR", Quantity: 0},
				{ID: "it2", Unit: "HUR", Quantity: -2},
			},
		},
	}
	assert.Empty(t, ExtractPackages(invoices))
}

func TestExtractPackagesEmpty(t *testing.T) {
	assert.Empty(t, ExtractPackages(nil))
	assert.Empty(t, ExtractPackages([]invoice.Invoice{{ID: "inv1", IssueDate: day(1)}}))
}
