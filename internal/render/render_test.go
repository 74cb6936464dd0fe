package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
)

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", v, err)
	}
	return d
}

func sampleInvoice(t *testing.T) InvoiceData {
	t.Helper()
	return InvoiceData{
		Settings: domain.Settings{
			BusinessName:  "VSR Threads",
			Address:       "12 Weaver Street",
			ContactNumber: "9876543210",
		},
		Sale: domain.Sale{
			ID:          42,
			Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			SubTotal:    dec(t, "90.91"),
			CgstPercent: dec(t, "5"),
			SgstPercent: dec(t, "5"),
			CgstAmount:  dec(t, "4.55"),
			SgstAmount:  dec(t, "4.54"),
			GrandTotal:  dec(t, "100.00"),
		},
		Lines: []InvoiceLine{
			{Name: "Cotton Thread", Color: "White", Qty: 4, Price: dec(t, "25.00"), Total: dec(t, "100.00")},
		},
		BillTo:     "Lakshmi Textiles",
		PaidAmount: dec(t, "60.00"),
		BalanceDue: dec(t, "40.00"),
	}
}

func TestInvoiceRendersTaxAndBalance(t *testing.T) {
	var buf bytes.Buffer
	if err := Invoice(&buf, sampleInvoice(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"VSR Threads", "Lakshmi Textiles", "Cotton Thread",
		"CGST (5%)", "SGST (5%)", "4.55", "4.54",
		"Grand Total", "100.00", "Balance Due", "40.00",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("invoice missing %q", want)
		}
	}
}

func TestInvoiceOmitsTaxRowsWhenZero(t *testing.T) {
	data := sampleInvoice(t)
	data.Sale.CgstAmount = decimal.Zero
	data.Sale.SgstAmount = decimal.Zero
	data.Sale.SubTotal = dec(t, "100.00")

	var buf bytes.Buffer
	if err := Invoice(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "CGST") {
		t.Fatalf("zero-tax invoice must not print tax rows")
	}
}

func TestInvoiceOmitsBalanceWhenSettled(t *testing.T) {
	data := sampleInvoice(t)
	data.PaidAmount = dec(t, "100.00")
	data.BalanceDue = decimal.Zero

	var buf bytes.Buffer
	if err := Invoice(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "Balance Due") {
		t.Fatalf("settled invoice must not print a balance row")
	}
}

func TestInvoiceWalkinLabel(t *testing.T) {
	data := sampleInvoice(t)
	data.BillTo = ""

	var buf bytes.Buffer
	if err := Invoice(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Walk-in Customer") {
		t.Fatalf("expected walk-in label when no customer is attached")
	}
}

func TestInvoiceEscapesUserContent(t *testing.T) {
	data := sampleInvoice(t)
	data.BillTo = `<script>alert("x")</script>`

	var buf bytes.Buffer
	if err := Invoice(&buf, data); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatalf("user content must be escaped")
	}
}

func samplePnL(t *testing.T) domain.PnLStatement {
	t.Helper()
	return domain.PnLStatement{
		From:        "2026-01-01",
		To:          "2026-03-31",
		Revenue:     dec(t, "50000.00"),
		COGS:        dec(t, "32000.00"),
		GrossProfit: dec(t, "18000.00"),
		ExpenseByCategory: map[string]decimal.Decimal{
			"Rent":   dec(t, "6000.00"),
			"Salary": dec(t, "4000.00"),
		},
		TotalExpense:       dec(t, "10000.00"),
		NetProfit:          dec(t, "8000.00"),
		ExpensesApplicable: true,
	}
}

func TestPnLHTMLIncludesExpenseBreakdown(t *testing.T) {
	var buf bytes.Buffer
	if err := PnLHTML(&buf, "VSR Threads", samplePnL(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"Revenue", "50000.00", "Rent", "Salary", "Net Profit", "8000.00"} {
		if !strings.Contains(html, want) {
			t.Fatalf("pnl html missing %q", want)
		}
	}
}

func TestPnLHTMLCustomerViewOmitsExpenses(t *testing.T) {
	stmt := samplePnL(t)
	stmt.ExpensesApplicable = false
	stmt.ExpenseByCategory = nil

	var buf bytes.Buffer
	if err := PnLHTML(&buf, "VSR Threads", stmt); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "Total Expenses") {
		t.Fatalf("customer view must not print the expense section")
	}
}

func TestPnLCSVStableOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := PnLCSV(&buf, samplePnL(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	// Categories are emitted alphabetically.
	rent := strings.Index(out, "Expense: Rent")
	salary := strings.Index(out, "Expense: Salary")
	if rent == -1 || salary == -1 || rent > salary {
		t.Fatalf("expected alphabetical expense rows, got:\n%s", out)
	}
	if !strings.Contains(out, "Net Profit,8000.00") {
		t.Fatalf("expected net profit row, got:\n%s", out)
	}
}

func TestPnLXLSXProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := PnLXLSX(&buf, "VSR Threads", samplePnL(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	// XLSX is a zip container; check the magic bytes.
	raw := buf.Bytes()
	if len(raw) < 4 || raw[0] != 'P' || raw[1] != 'K' {
		t.Fatalf("expected zip-packaged workbook, got %d bytes", len(raw))
	}
}

func TestStickersRenderNinePerSheet(t *testing.T) {
	var buf bytes.Buffer
	err := Stickers(&buf, domain.StickerRequest{
		Thickness: "2/40s",
		Title:     "VSR Threads",
		Contact:   "9876543210",
		Sheets:    2,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if got := strings.Count(html, `class="sheet"`); got != 2 {
		t.Fatalf("expected 2 sheets, got %d", got)
	}
	if got := strings.Count(html, `class="sticker"`); got != 18 {
		t.Fatalf("expected 18 stickers, got %d", got)
	}
}

func TestStickersRequireThickness(t *testing.T) {
	var buf bytes.Buffer
	if err := Stickers(&buf, domain.StickerRequest{Title: "VSR"}); err == nil {
		t.Fatalf("expected missing thickness to be rejected")
	}
}
