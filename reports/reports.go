// Package reports renders reservation and customer listings for download.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
)

// ReservationRow is one line of a reservations report.
type ReservationRow struct {
	ID         uint
	Restaurant string
	Table      string
	Customer   string
	Date       string
	Time       string
	Guests     int
	Status     string
}

// UserRow is one line of the customers export.
type UserRow struct {
	Username string
	Email    string
	Phone    string
}

var reservationHeader = []string{"id", "restaurant", "table", "customer", "date", "time", "guests", "status"}

func (r ReservationRow) record() []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Restaurant,
		r.Table,
		r.Customer,
		r.Date,
		r.Time,
		strconv.Itoa(r.Guests),
		r.Status,
	}
}

func WriteReservationsCSV(w io.Writer, rows []ReservationRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reservationHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUsersCSV writes username,email,phone with a header line.
func WriteUsersCSV(w io.Writer, rows []UserRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "email", "phone"}); err != nil {
		return err
	}
	for _, u := range rows {
		if err := cw.Write([]string{u.Username, u.Email, u.Phone}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 14, "R"},
	{"Restaurant", 62, "L"},
	{"Table", 22, "L"},
	{"Customer", 50, "L"},
	{"Date", 28, "L"},
	{"Time", 18, "L"},
	{"Guests", 18, "R"},
	{"Status", 30, "L"},
}

// WriteReservationsPDF renders rows as a landscape A4 table.
func WriteReservationsPDF(w io.Writer, title string, generated time.Time, rows []ReservationRow) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s, %d reservations", generated.Format("2006-01-02 15:04"), len(rows)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, r := range rows {
		if pdf.GetY()+7 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		for i, value := range r.record() {
			col := pdfColumns[i]
			pdf.CellFormat(col.width, 7, tr(value), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
