package service

import (
	"context"
	"fmt"
	"strings"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/money"
	"vsrthreads/backend/internal/store"
)

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Purchase{}, err
	}
	if err := requirePositive("bags", req.Bags); err != nil {
		return domain.Purchase{}, err
	}
	if err := requirePositive("kg_per_bag", req.KgPerBag); err != nil {
		return domain.Purchase{}, err
	}
	if err := requirePositive("price_per_kg", req.PricePerKg); err != nil {
		return domain.Purchase{}, err
	}
	if err := requireNonNegative("cgst_amount", req.CgstAmount); err != nil {
		return domain.Purchase{}, err
	}
	if err := requireNonNegative("sgst_amount", req.SgstAmount); err != nil {
		return domain.Purchase{}, err
	}

	totalKg := req.Bags.Mul(req.KgPerBag)
	purchase := domain.Purchase{
		Date:          date,
		Description:   strings.TrimSpace(req.Description),
		Bags:          req.Bags,
		KgPerBag:      req.KgPerBag,
		TotalKg:       totalKg,
		PricePerKg:    req.PricePerKg,
		TotalAmount:   money.Round2(totalKg.Mul(req.PricePerKg)),
		VendorName:    strings.TrimSpace(req.VendorName),
		VendorContact: strings.TrimSpace(req.VendorContact),
		CgstAmount:    req.CgstAmount,
		SgstAmount:    req.SgstAmount,
		BillName:      strings.TrimSpace(req.BillName),
		BillData:      req.BillData,
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}
	s.invalidateSummary(ctx)
	return *created, nil
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (domain.Purchase, error) {
	p, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *p, nil
}

func (s *Service) ListPurchases(ctx context.Context, filter domain.ReportFilter) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, filter)
}

func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeletePurchase(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.Expense{}, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return domain.Expense{}, fmt.Errorf("category is required: %w", store.ErrValidation)
	}
	if err := requirePositive("amount", req.Amount); err != nil {
		return domain.Expense{}, err
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.Expense{}, err
	}
	known := false
	for _, c := range settings.ExpenseCategories {
		if strings.EqualFold(c, category) {
			category = c
			known = true
			break
		}
	}
	if !known {
		return domain.Expense{}, fmt.Errorf("unknown expense category %q: %w", category, store.ErrValidation)
	}

	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		Date:        date,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Amount:      money.Round2(req.Amount),
	})
	if err != nil {
		return domain.Expense{}, err
	}
	s.invalidateSummary(ctx)
	return *created, nil
}

func (s *Service) ListExpenses(ctx context.Context, filter domain.ReportFilter) ([]domain.Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}
