package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"vsrthreads/backend/internal/domain"
)

type pnlPage struct {
	Business string
	Stmt     domain.PnLStatement
	Rows     []pnlRow
}

type pnlRow struct {
	Category string
	Amount   string
}

func expenseRows(stmt domain.PnLStatement) []pnlRow {
	categories := make([]string, 0, len(stmt.ExpenseByCategory))
	for c := range stmt.ExpenseByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	rows := make([]pnlRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, pnlRow{Category: c, Amount: stmt.ExpenseByCategory[c].StringFixed(2)})
	}
	return rows
}

var pnlTmpl = mustParse("pnl", `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Profit &amp; Loss</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; margin: 24px; color: #222; }
h1 { font-size: 20px; margin-bottom: 2px; }
.range { color: #555; font-size: 13px; margin-bottom: 16px; }
table { border-collapse: collapse; min-width: 420px; }
td { padding: 6px 14px; font-size: 14px; border-bottom: 1px solid #ddd; }
td.num { text-align: right; }
tr.section td { font-weight: bold; background: #f0f0f0; }
tr.net td { font-weight: bold; border-top: 2px solid #333; }
.note { font-size: 12px; color: #777; margin-top: 12px; }
</style>
</head>
<body>
<h1>{{.Business}} — Profit &amp; Loss</h1>
<div class="range">{{if .Stmt.From}}From {{.Stmt.From}} {{end}}{{if .Stmt.To}}to {{.Stmt.To}}{{end}}</div>
<table>
<tr><td>Revenue</td><td class="num">{{money .Stmt.Revenue}}</td></tr>
<tr><td>Cost of Goods Sold</td><td class="num">{{money .Stmt.COGS}}</td></tr>
<tr class="section"><td>Gross Profit</td><td class="num">{{money .Stmt.GrossProfit}}</td></tr>
{{if .Stmt.ExpensesApplicable}}
{{range .Rows}}
<tr><td>{{.Category}}</td><td class="num">{{.Amount}}</td></tr>
{{end}}
<tr class="section"><td>Total Expenses</td><td class="num">{{money .Stmt.TotalExpense}}</td></tr>
<tr class="net"><td>Net Profit</td><td class="num">{{money .Stmt.NetProfit}}</td></tr>
{{else}}
<tr class="net"><td>Gross Profit (customer view)</td><td class="num">{{money .Stmt.GrossProfit}}</td></tr>
{{end}}
</table>
{{if not .Stmt.ExpensesApplicable}}
<p class="note">Expenses are not attributable to a single customer and are omitted from this view.</p>
{{end}}
</body>
</html>
`)

// PnLHTML writes the printable statement.
func PnLHTML(w io.Writer, business string, stmt domain.PnLStatement) error {
	page := pnlPage{Business: business, Stmt: stmt, Rows: expenseRows(stmt)}
	if err := pnlTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("render pnl: %w", err)
	}
	return nil
}

// PnLCSV writes the statement as a flat two-column CSV.
func PnLCSV(w io.Writer, stmt domain.PnLStatement) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Line", "Amount"},
		{"Revenue", stmt.Revenue.StringFixed(2)},
		{"Cost of Goods Sold", stmt.COGS.StringFixed(2)},
		{"Gross Profit", stmt.GrossProfit.StringFixed(2)},
	}
	if stmt.ExpensesApplicable {
		for _, row := range expenseRows(stmt) {
			records = append(records, []string{"Expense: " + row.Category, row.Amount})
		}
		records = append(records,
			[]string{"Total Expenses", stmt.TotalExpense.StringFixed(2)},
			[]string{"Net Profit", stmt.NetProfit.StringFixed(2)},
		)
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write pnl csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PnLXLSX writes the statement as a single-sheet workbook.
func PnLXLSX(w io.Writer, business string, stmt domain.PnLStatement) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Profit & Loss"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create pnl sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("pnl style: %w", err)
	}

	row := 1
	set := func(label string, amount string, styled bool) error {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), label); err != nil {
			return err
		}
		if amount != "" {
			if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), amount); err != nil {
				return err
			}
		}
		if styled {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), bold); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	title := business + " — Profit & Loss"
	if stmt.From != "" || stmt.To != "" {
		title = fmt.Sprintf("%s (%s to %s)", title, stmt.From, stmt.To)
	}
	steps := []func() error{
		func() error { return set(title, "", true) },
		func() error { return set("Revenue", stmt.Revenue.StringFixed(2), false) },
		func() error { return set("Cost of Goods Sold", stmt.COGS.StringFixed(2), false) },
		func() error { return set("Gross Profit", stmt.GrossProfit.StringFixed(2), true) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("write pnl xlsx: %w", err)
		}
	}
	if stmt.ExpensesApplicable {
		for _, r := range expenseRows(stmt) {
			if err := set("Expense: "+r.Category, r.Amount, false); err != nil {
				return fmt.Errorf("write pnl xlsx: %w", err)
			}
		}
		if err := set("Total Expenses", stmt.TotalExpense.StringFixed(2), true); err != nil {
			return fmt.Errorf("write pnl xlsx: %w", err)
		}
		if err := set("Net Profit", stmt.NetProfit.StringFixed(2), true); err != nil {
			return fmt.Errorf("write pnl xlsx: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return fmt.Errorf("write pnl xlsx: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write pnl xlsx: %w", err)
	}
	return nil
}
