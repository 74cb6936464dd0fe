package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/ledger"
	"vsrthreads/backend/internal/money"
	"vsrthreads/backend/internal/store"
)

// ConfirmSale turns a cart into a persisted invoice. The whole
// transition is atomic: the sale row, its line items (each snapshotting
// the item's current cost price) and the optional initial payment either
// all commit or none do. The cart is caller-owned working state and is
// simply discarded on success.
func (s *Service) ConfirmSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleView, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.SaleView{}, err
	}
	if len(req.Lines) == 0 {
		return domain.SaleView{}, fmt.Errorf("cart is empty: %w", store.ErrValidation)
	}
	if err := requireNonNegative("paid_amount", req.PaidAmount); err != nil {
		return domain.SaleView{}, err
	}

	var customerID *int64
	if req.CustomerID != nil {
		customer, err := s.repo.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			return domain.SaleView{}, err
		}
		customerID = &customer.ID
	}

	gross := decimal.Zero
	items := make([]domain.SaleItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Qty <= 0 {
			return domain.SaleView{}, fmt.Errorf("line qty must be positive: %w", store.ErrValidation)
		}
		if err := requirePositive("price_per_unit", line.PricePerUnit); err != nil {
			return domain.SaleView{}, err
		}
		item, err := s.repo.GetItem(ctx, line.ItemID)
		if err != nil {
			return domain.SaleView{}, err
		}
		gross = gross.Add(money.LineTotal(line.Qty, line.PricePerUnit))
		items = append(items, domain.SaleItem{
			ItemID:       item.ID,
			Qty:          line.Qty,
			PricePerUnit: money.Round2(line.PricePerUnit),
			CostPerUnit:  item.CostPrice,
		})
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.SaleView{}, err
	}
	subTotal, cgst, sgst := money.SplitInclusiveTax(gross, settings.CgstPercent, settings.SgstPercent)

	sale := domain.Sale{
		Date:        date,
		CustomerID:  customerID,
		WalkinPhone: strings.TrimSpace(req.WalkinPhone),
		SubTotal:    subTotal,
		CgstPercent: settings.CgstPercent,
		SgstPercent: settings.SgstPercent,
		CgstAmount:  cgst,
		SgstAmount:  sgst,
		GrandTotal:  subTotal.Add(cgst).Add(sgst),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if customerID == nil && req.PaidAmount.LessThan(sale.GrandTotal) {
		return domain.SaleView{}, fmt.Errorf("walk-in sales must be fully paid: %w", store.ErrValidation)
	}

	// Walk-in cash settles at the counter; only customer-linked payments
	// enter the dues ledger.
	var payment *domain.Payment
	if customerID != nil && req.PaidAmount.Sign() > 0 {
		payment = &domain.Payment{
			Date:       date,
			CustomerID: *customerID,
			Amount:     money.Round2(req.PaidAmount),
			Note:       "Initial payment",
		}
	}

	created, err := s.repo.CreateSale(ctx, sale, items, payment)
	if err != nil {
		return domain.SaleView{}, err
	}

	s.invalidateSummary(ctx)
	return s.SaleView(ctx, created.ID)
}

// SaleView loads a sale with its line items and payment-derived balance.
func (s *Service) SaleView(ctx context.Context, id int64) (domain.SaleView, error) {
	sale, items, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.SaleView{}, err
	}
	payments, err := s.repo.ListPayments(ctx, domain.ReportFilter{})
	if err != nil {
		return domain.SaleView{}, err
	}

	paid := ledger.PaidAmount(sale.ID, payments)
	view := domain.SaleView{
		Sale:       *sale,
		Items:      items,
		PaidAmount: paid,
		BalanceDue: money.Round2(sale.GrandTotal.Sub(paid)),
	}
	// Walk-in invoices carry no payment rows; they are settled at the
	// counter by definition.
	if sale.CustomerID == nil {
		view.PaidAmount = sale.GrandTotal
		view.BalanceDue = decimal.Zero
	}
	return view, nil
}

func (s *Service) ListSales(ctx context.Context, filter domain.ReportFilter) ([]domain.SaleView, error) {
	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, err
	}

	saleIDs := make([]int64, 0, len(sales))
	for _, sale := range sales {
		saleIDs = append(saleIDs, sale.ID)
	}
	lines, err := s.repo.ListSaleItems(ctx, saleIDs)
	if err != nil {
		return nil, err
	}
	linesBySale := make(map[int64][]domain.SaleItem, len(sales))
	for _, li := range lines {
		linesBySale[li.SaleID] = append(linesBySale[li.SaleID], li)
	}

	out := make([]domain.SaleView, 0, len(sales))
	for _, sale := range sales {
		paid := ledger.PaidAmount(sale.ID, payments)
		balance := money.Round2(sale.GrandTotal.Sub(paid))
		if sale.CustomerID == nil {
			paid = sale.GrandTotal
			balance = decimal.Zero
		}
		out = append(out, domain.SaleView{
			Sale:       sale,
			Items:      linesBySale[sale.ID],
			PaidAmount: paid,
			BalanceDue: balance,
		})
	}
	return out, nil
}

// DeleteSale removes the invoice with its line items and payments in one
// atomic cascade.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}

// RecordPayment appends a money-received event. The sale's paid amount
// is never stored; it is derived from these rows, so no dual write can
// drift. Overpayment is accepted.
func (s *Service) RecordPayment(ctx context.Context, req domain.PaymentCreateRequest) (domain.Payment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := requirePositive("amount", req.Amount); err != nil {
		return domain.Payment{}, err
	}
	customer, err := s.repo.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return domain.Payment{}, err
	}
	if req.SaleID != nil {
		sale, _, err := s.repo.GetSale(ctx, *req.SaleID)
		if err != nil {
			return domain.Payment{}, err
		}
		if sale.CustomerID == nil || *sale.CustomerID != customer.ID {
			return domain.Payment{}, fmt.Errorf("sale %d does not belong to customer %d: %w", sale.ID, customer.ID, store.ErrValidation)
		}
	}

	created, err := s.repo.CreatePayment(ctx, domain.Payment{
		Date:       date,
		CustomerID: customer.ID,
		SaleID:     req.SaleID,
		Amount:     money.Round2(req.Amount),
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.invalidateSummary(ctx)
	return *created, nil
}

func (s *Service) ListPayments(ctx context.Context, filter domain.ReportFilter) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}
