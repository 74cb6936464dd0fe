package render

import (
	"fmt"
	"io"
)

var invoiceTmpl = mustParse("invoice", `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice #{{.Sale.ID}}</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; margin: 24px; color: #222; }
.header { text-align: center; border-bottom: 2px solid #333; padding-bottom: 12px; }
.header h1 { margin: 0 0 4px; font-size: 22px; }
.header p { margin: 2px 0; font-size: 13px; color: #555; }
.meta { display: flex; justify-content: space-between; margin: 16px 0; font-size: 14px; }
table { width: 100%; border-collapse: collapse; margin-top: 8px; }
th, td { border: 1px solid #999; padding: 6px 10px; font-size: 13px; text-align: left; }
th { background: #f0f0f0; }
td.num, th.num { text-align: right; }
.totals td { border: none; }
.totals tr.grand td { font-weight: bold; border-top: 2px solid #333; }
.balance { color: #b00020; font-weight: bold; }
@media print { body { margin: 8px; } }
</style>
</head>
<body>
<div class="header">
<h1>{{.Settings.BusinessName}}</h1>
{{if .Settings.Address}}<p>{{.Settings.Address}}</p>{{end}}
{{if .Settings.ContactNumber}}<p>Phone: {{.Settings.ContactNumber}}</p>{{end}}
{{if .Settings.GSTNumber}}<p>GSTIN: {{.Settings.GSTNumber}}</p>{{end}}
</div>
<div class="meta">
<div>
<strong>Bill To:</strong> {{if .BillTo}}{{.BillTo}}{{else}}Walk-in Customer{{end}}<br>
{{if .BillToInfo}}{{.BillToInfo}}{{end}}
</div>
<div>
<strong>Invoice #:</strong> {{.Sale.ID}}<br>
<strong>Date:</strong> {{.DateString}}
</div>
</div>
<table>
<thead>
<tr><th>#</th><th>Item</th><th>Color</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
</thead>
<tbody>
{{range $i, $l := .Lines}}
<tr><td>{{inc $i}}</td><td>{{$l.Name}}</td><td>{{$l.Color}}</td><td class="num">{{$l.Qty}}</td><td class="num">{{money $l.Price}}</td><td class="num">{{money $l.Total}}</td></tr>
{{end}}
</tbody>
</table>
<table class="totals">
<tr><td></td><td class="num">Sub Total</td><td class="num">{{money .Sale.SubTotal}}</td></tr>
{{if .ShowTax}}
<tr><td></td><td class="num">CGST ({{.Sale.CgstPercent}}%)</td><td class="num">{{money .Sale.CgstAmount}}</td></tr>
<tr><td></td><td class="num">SGST ({{.Sale.SgstPercent}}%)</td><td class="num">{{money .Sale.SgstAmount}}</td></tr>
{{end}}
<tr class="grand"><td></td><td class="num">Grand Total</td><td class="num">{{money .Sale.GrandTotal}}</td></tr>
<tr><td></td><td class="num">Paid</td><td class="num">{{money .PaidAmount}}</td></tr>
{{if .ShowBalance}}
<tr><td></td><td class="num balance">Balance Due</td><td class="num balance">{{money .BalanceDue}}</td></tr>
{{end}}
</table>
{{if .Sale.Notes}}<p><strong>Notes:</strong> {{.Sale.Notes}}</p>{{end}}
<p style="text-align:center; margin-top:32px; font-size:12px; color:#777;">Thank you for your business.</p>
</body>
</html>
`)

// Invoice writes the printable invoice for one sale.
func Invoice(w io.Writer, data InvoiceData) error {
	if err := invoiceTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	return nil
}
