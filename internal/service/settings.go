package service

import (
	"context"
	"fmt"
	"strings"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Settings{}, err
	}
	settings.BusinessName = strings.TrimSpace(settings.BusinessName)
	if settings.BusinessName == "" {
		return domain.Settings{}, fmt.Errorf("business_name is required: %w", store.ErrValidation)
	}
	if settings.CgstPercent.Sign() < 0 || settings.SgstPercent.Sign() < 0 {
		return domain.Settings{}, fmt.Errorf("tax rates must not be negative: %w", store.ErrValidation)
	}
	categories := settings.ExpenseCategories[:0:0]
	seen := map[string]bool{}
	for _, c := range settings.ExpenseCategories {
		c = strings.TrimSpace(c)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		categories = append(categories, c)
	}
	if len(categories) == 0 {
		return domain.Settings{}, fmt.Errorf("at least one expense category is required: %w", store.ErrValidation)
	}
	settings.ExpenseCategories = categories

	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}
