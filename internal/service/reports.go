package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/ledger"
)

const summaryCacheKey = "vsr:dashboard-summary"

// DashboardSummary computes the landing-page figures, served from the
// summary cache when a fresh copy is available.
func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	if cached, ok, err := s.summaries.Get(ctx, summaryCacheKey); err == nil && ok {
		return *cached, nil
	}

	all := domain.ReportFilter{}
	sales, err := s.repo.ListSales(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	saleItems, err := s.repo.ListSaleItems(ctx, nil)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	payments, err := s.repo.ListPayments(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	purchases, err := s.repo.ListPurchases(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	batches, err := s.repo.ListStaffWork(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	logs, err := s.repo.ListStockLogs(ctx, all)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	pnl := ledger.ProfitAndLoss(sales, saleItems, expenses, false)

	totalReceived := decimal.Zero
	for _, p := range payments {
		totalReceived = totalReceived.Add(p.Amount)
	}
	// Walk-in sales settle in full at the counter and never enter the
	// payments ledger; count them as received directly.
	for _, sale := range sales {
		if sale.CustomerID == nil {
			totalReceived = totalReceived.Add(sale.GrandTotal)
		}
	}

	pendingTotal := decimal.Zero
	for _, c := range customers {
		due := ledger.CustomerDue(c, sales, payments)
		if due.Sign() > 0 {
			pendingTotal = pendingTotal.Add(due)
		}
	}

	purchasedKg := decimal.Zero
	for _, p := range purchases {
		purchasedKg = purchasedKg.Add(p.TotalKg)
	}
	consumedKg := decimal.Zero
	for _, b := range batches {
		consumedKg = consumedKg.Add(b.KgProvided)
	}

	stockQty, stockValue := ledger.InventoryTotals(items, logs, saleItems)

	now := time.Now()
	today := now.Format(domain.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(domain.DateLayout)
	salesToday, salesYesterday := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		switch sale.Date.Format(domain.DateLayout) {
		case today:
			salesToday = salesToday.Add(sale.GrandTotal)
		case yesterday:
			salesYesterday = salesYesterday.Add(sale.GrandTotal)
		}
	}

	summary := domain.DashboardSummary{
		TotalSales:      pnl.Revenue,
		TotalReceived:   totalReceived,
		PendingDues:     pendingTotal,
		GrossProfit:     pnl.GrossProfit,
		NetProfit:       pnl.NetProfit,
		TotalExpenses:   pnl.TotalExpense,
		PurchasedKg:     purchasedKg,
		StaffConsumedKg: consumedKg,
		RemainingKg:     purchasedKg.Sub(consumedKg),
		StockQty:        stockQty,
		StockValue:      stockValue,
		SalesToday:      salesToday,
		SalesYesterday:  salesYesterday,
		LowStock:        ledger.LowStock(items, logs, saleItems, s.lowStockThreshold),
		DueCustomers:    ledger.PendingDues(customers, sales, payments, ledger.BalanceTolerance),
		GeneratedAt:     now.Format(time.RFC3339),
	}

	_ = s.summaries.Set(ctx, summaryCacheKey, &summary, s.summaryTTL)
	return summary, nil
}

// ProfitAndLoss builds the PnL statement for a date range. Filtering by
// customer scopes revenue and cost of goods to that customer's invoices
// and drops the expense section, which cannot be attributed per
// customer.
func (s *Service) ProfitAndLoss(ctx context.Context, filter domain.ReportFilter) (domain.PnLStatement, error) {
	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return domain.PnLStatement{}, err
	}
	saleIDs := make([]int64, 0, len(sales))
	for _, sale := range sales {
		saleIDs = append(saleIDs, sale.ID)
	}
	var lines []domain.SaleItem
	if len(saleIDs) > 0 {
		lines, err = s.repo.ListSaleItems(ctx, saleIDs)
		if err != nil {
			return domain.PnLStatement{}, err
		}
	}

	customerFiltered := filter.CustomerID != nil
	var expenses []domain.Expense
	if !customerFiltered {
		expenses, err = s.repo.ListExpenses(ctx, filter)
		if err != nil {
			return domain.PnLStatement{}, err
		}
	}

	stmt := ledger.ProfitAndLoss(sales, lines, expenses, customerFiltered)
	if filter.From != nil {
		stmt.From = filter.From.Format(domain.DateLayout)
	}
	if filter.To != nil {
		stmt.To = filter.To.Format(domain.DateLayout)
	}
	return stmt, nil
}
