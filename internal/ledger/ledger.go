// Package ledger derives all balances from the append-only transaction
// tables. Nothing here mutates state or trusts a stored counter: stock,
// dues, paid amounts and profit are recomputed from raw rows on every
// call, so the functions are deterministic for a given set of inputs.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/money"
)

// BalanceTolerance absorbs sub-paisa rounding noise: a sale or customer
// balance at or below it is treated as settled.
var BalanceTolerance = decimal.RequireFromString("0.01")

// StockOf derives an item's on-hand quantity: opening stock plus every
// logged addition minus every sold unit. Negative results are returned
// as-is; an oversold item must be visible, not clamped.
func StockOf(item domain.Item, logs []domain.StockLog, sold []domain.SaleItem) int {
	stock := item.OpeningStock
	for _, l := range logs {
		if l.ItemID == item.ID {
			stock += l.QtyAdded
		}
	}
	for _, s := range sold {
		if s.ItemID == item.ID {
			stock -= s.Qty
		}
	}
	return stock
}

// CustomerDue derives what a customer owes: opening due plus every
// invoiced grand total minus every payment received.
func CustomerDue(c domain.Customer, sales []domain.Sale, payments []domain.Payment) decimal.Decimal {
	due := c.OpeningDue
	for _, s := range sales {
		if s.CustomerID != nil && *s.CustomerID == c.ID {
			due = due.Add(s.GrandTotal)
		}
	}
	for _, p := range payments {
		if p.CustomerID == c.ID {
			due = due.Sub(p.Amount)
		}
	}
	return money.Round2(due)
}

// PaidAmount sums the payments recorded against one sale.
func PaidAmount(saleID int64, payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.SaleID != nil && *p.SaleID == saleID {
			total = total.Add(p.Amount)
		}
	}
	return money.Round2(total)
}

// BalanceDue is the unpaid remainder of a sale.
func BalanceDue(sale domain.Sale, payments []domain.Payment) decimal.Decimal {
	return money.Round2(sale.GrandTotal.Sub(PaidAmount(sale.ID, payments)))
}

// IsSettled reports whether a balance is within tolerance of zero.
func IsSettled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(BalanceTolerance)
}

// ProfitAndLoss computes the statement over a pre-filtered slice of the
// store. Revenue is tax-exclusive; COGS uses the per-line cost snapshots,
// never live item cost prices. When customerFiltered is set, expenses are
// not attributable to the slice: ExpensesApplicable is false, the expense
// aggregates are left zero, and NetProfit equals GrossProfit.
func ProfitAndLoss(sales []domain.Sale, lines []domain.SaleItem, expenses []domain.Expense, customerFiltered bool) domain.PnLStatement {
	saleIDs := make(map[int64]bool, len(sales))
	revenue := decimal.Zero
	for _, s := range sales {
		saleIDs[s.ID] = true
		revenue = revenue.Add(s.SubTotal)
	}

	cogs := decimal.Zero
	for _, l := range lines {
		if saleIDs[l.SaleID] {
			cogs = cogs.Add(l.CostPerUnit.Mul(decimal.NewFromInt(int64(l.Qty))))
		}
	}

	stmt := domain.PnLStatement{
		Revenue:            money.Round2(revenue),
		COGS:               money.Round2(cogs),
		TotalExpense:       decimal.Zero,
		ExpensesApplicable: !customerFiltered,
	}
	stmt.GrossProfit = stmt.Revenue.Sub(stmt.COGS)

	if customerFiltered {
		stmt.NetProfit = stmt.GrossProfit
		return stmt
	}

	stmt.ExpenseByCategory = make(map[string]decimal.Decimal)
	for _, e := range expenses {
		stmt.ExpenseByCategory[e.Category] = stmt.ExpenseByCategory[e.Category].Add(e.Amount)
		stmt.TotalExpense = stmt.TotalExpense.Add(e.Amount)
	}
	stmt.TotalExpense = money.Round2(stmt.TotalExpense)
	stmt.NetProfit = stmt.GrossProfit.Sub(stmt.TotalExpense)
	return stmt
}

// LowStock lists items at or below the threshold, lowest stock first.
func LowStock(items []domain.Item, logs []domain.StockLog, sold []domain.SaleItem, threshold int) []domain.ItemStock {
	out := make([]domain.ItemStock, 0)
	for _, it := range items {
		stock := StockOf(it, logs, sold)
		if stock <= threshold {
			out = append(out, domain.ItemStock{Item: it, Stock: stock})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// PendingDues lists customers owing more than min, largest due first.
func PendingDues(customers []domain.Customer, sales []domain.Sale, payments []domain.Payment, min decimal.Decimal) []domain.CustomerDue {
	out := make([]domain.CustomerDue, 0)
	for _, c := range customers {
		due := CustomerDue(c, sales, payments)
		if due.GreaterThan(min) {
			out = append(out, domain.CustomerDue{Customer: c, Due: due})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due.GreaterThan(out[j].Due) })
	return out
}

// InventoryTotals sums derived stock and its value at current cost
// prices. Negative per-item stock is included as-is so the total reflects
// oversold inventory instead of hiding it.
func InventoryTotals(items []domain.Item, logs []domain.StockLog, sold []domain.SaleItem) (qty int, value decimal.Decimal) {
	value = decimal.Zero
	for _, it := range items {
		stock := StockOf(it, logs, sold)
		qty += stock
		value = value.Add(it.CostPrice.Mul(decimal.NewFromInt(int64(stock))))
	}
	return qty, money.Round2(value)
}
