// Package render produces the printable documents: sale invoices, the
// profit and loss statement in HTML, CSV and XLSX, and label sticker
// sheets. Output is self-contained HTML suited to the browser print
// dialog; no PDF toolchain is involved.
package render

import (
	"html/template"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/ledger"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"inc":   func(i int) int { return i + 1 },
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

// InvoiceLine is a sale line with the item identity resolved for print.
type InvoiceLine struct {
	Name  string
	Color string
	Qty   int
	Price decimal.Decimal
	Total decimal.Decimal
}

// InvoiceData is everything the invoice template needs. BillTo is the
// customer's name, or empty for a walk-in sale.
type InvoiceData struct {
	Settings   domain.Settings
	Sale       domain.Sale
	Lines      []InvoiceLine
	BillTo     string
	BillToInfo string
	PaidAmount decimal.Decimal
	BalanceDue decimal.Decimal
}

// ShowTax reports whether the CGST/SGST rows should be printed. A
// zero-tax invoice omits them entirely.
func (d InvoiceData) ShowTax() bool {
	return d.Sale.CgstAmount.Sign() > 0 || d.Sale.SgstAmount.Sign() > 0
}

// ShowBalance hides the balance row when the invoice is settled.
func (d InvoiceData) ShowBalance() bool {
	return d.BalanceDue.Cmp(ledger.BalanceTolerance) > 0
}

func (d InvoiceData) DateString() string {
	return d.Sale.Date.Format("02 Jan 2006")
}
