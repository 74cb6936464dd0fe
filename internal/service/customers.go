package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/ledger"
	"vsrthreads/backend/internal/store"
)

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("name is required: %w", store.ErrValidation)
	}
	if err := requireNonNegative("opening_due", req.OpeningDue); err != nil {
		return domain.Customer{}, err
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		Name:       name,
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		OpeningDue: req.OpeningDue,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	existing, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, fmt.Errorf("name cannot be empty: %w", store.ErrValidation)
		}
		updated.Name = name
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updated.Address = strings.TrimSpace(*req.Address)
	}

	if err := s.repo.UpdateCustomer(ctx, updated); err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteCustomer(ctx, id)
}

// CustomerDue derives one customer's outstanding balance.
func (s *Service) CustomerDue(ctx context.Context, id int64) (domain.CustomerDue, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return domain.CustomerDue{}, err
	}
	sales, err := s.repo.ListSales(ctx, domain.ReportFilter{CustomerID: &id})
	if err != nil {
		return domain.CustomerDue{}, err
	}
	payments, err := s.repo.ListPayments(ctx, domain.ReportFilter{CustomerID: &id})
	if err != nil {
		return domain.CustomerDue{}, err
	}
	return domain.CustomerDue{
		Customer: *customer,
		Due:      ledger.CustomerDue(*customer, sales, payments),
	}, nil
}

// PendingDues lists customers owing more than one rupee, matching the
// dues report.
func (s *Service) PendingDues(ctx context.Context) ([]domain.CustomerDue, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, err
	}
	return ledger.PendingDues(customers, sales, payments, decimal.NewFromInt(1)), nil
}
