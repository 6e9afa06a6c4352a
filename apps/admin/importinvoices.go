package main

import (
	"fmt"
	"time"
)

// importInvoices backfills paid invoices from the billing provider.
func (cli *commandLine) importInvoices(since time.Time) error {
	count, err := cli.invSvc.SyncPaid(since)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d invoice(s)\n", count)
	return nil
}
