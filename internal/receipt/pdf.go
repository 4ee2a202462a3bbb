// Package receipt renders booking receipts as PDF documents.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/iliyamo/tour-shop-backend/internal/model"
)

// Booking renders b and returns the document with a download file name.
// tour may be nil for generic bookings.
func Booking(b *model.Booking, tour *model.Tour, currency string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(label, value string) {
		pdf.Cell(0, 7, fmt.Sprintf("%-16s: %s", label, orDash(value)))
		pdf.Ln(7)
	}
	line("Receipt no", b.ID)
	line("Issued", time.Now().UTC().Format("2006-01-02 15:04"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Guest")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	line("Name", b.Name)
	line("Email", b.Email)
	line("Phone", b.Phone)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	if tour != nil {
		line("Tour", tour.Name)
	}
	line("Type", b.BookingType)
	line("Dates", b.StartDate.Format(time.DateOnly)+" to "+b.EndDate.Format(time.DateOnly))
	line("Guests", fmt.Sprint(b.Guests))
	line("Status", b.Status)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	line("Option", b.PaymentOption)
	line("Total", money(b.TotalAmount, currency))
	line("Due now", money(b.Amount, currency))
	paid := "no"
	if b.Payment {
		paid = "yes"
	}
	line("Paid", paid)
	line("Gateway order", b.GatewayOrderID)

	if b.SpecialRequest != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Special request: "+b.SpecialRequest, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("booking-%s.pdf", b.ID), nil
}

func money(amount int64, currency string) string {
	return fmt.Sprintf("%s %d", currency, amount)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
