package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/ledger"
	"vsrthreads/backend/internal/store"
)

func (s *Service) ListMasterNames(ctx context.Context) ([]domain.MasterName, error) {
	return s.repo.ListMasterNames(ctx)
}

func (s *Service) CreateMasterName(ctx context.Context, req domain.MasterNameCreateRequest) (domain.MasterName, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MasterName{}, fmt.Errorf("name is required: %w", store.ErrValidation)
	}
	created, err := s.repo.CreateMasterName(ctx, name)
	if err != nil {
		return domain.MasterName{}, err
	}
	return *created, nil
}

func (s *Service) DeleteMasterName(ctx context.Context, id int64) error {
	return s.repo.DeleteMasterName(ctx, id)
}

// AddStock is the intake flow: the quantity is logged against the item
// matching (name, color), creating the item first when it does not exist
// yet. The item's cost price is refreshed to the latest intake cost. The
// name must come from the approved master-name list.
func (s *Service) AddStock(ctx context.Context, req domain.StockAddRequest) (domain.StockLog, error) {
	name := strings.TrimSpace(req.Name)
	color := strings.TrimSpace(req.Color)
	if name == "" || color == "" {
		return domain.StockLog{}, fmt.Errorf("name and color are required: %w", store.ErrValidation)
	}
	if req.Qty <= 0 {
		return domain.StockLog{}, fmt.Errorf("qty must be positive: %w", store.ErrValidation)
	}
	if err := requireNonNegative("cost_price", req.CostPrice); err != nil {
		return domain.StockLog{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.StockLog{}, err
	}

	names, err := s.repo.ListMasterNames(ctx)
	if err != nil {
		return domain.StockLog{}, err
	}
	approved := false
	for _, m := range names {
		if strings.EqualFold(m.Name, name) {
			name = m.Name
			approved = true
			break
		}
	}
	if !approved {
		return domain.StockLog{}, fmt.Errorf("item name %q is not an approved master name: %w", name, store.ErrValidation)
	}

	item, err := s.repo.FindItemByNameColor(ctx, name, color)
	if errors.Is(err, store.ErrNotFound) {
		item, err = s.repo.CreateItem(ctx, domain.Item{
			Name:         name,
			Color:        color,
			OpeningStock: 0,
			CostPrice:    req.CostPrice,
		})
	}
	if err != nil {
		return domain.StockLog{}, err
	}

	created, err := s.repo.AddStock(ctx, domain.StockLog{
		ItemID:   item.ID,
		Date:     date,
		QtyAdded: req.Qty,
		Notes:    strings.TrimSpace(req.Notes),
	}, req.CostPrice)
	if err != nil {
		return domain.StockLog{}, err
	}

	s.invalidateSummary(ctx)
	return *created, nil
}

// ListStock returns every item with its derived stock level.
func (s *Service) ListStock(ctx context.Context) ([]domain.ItemStock, error) {
	items, logs, sold, err := s.stockRows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ItemStock, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ItemStock{Item: it, Stock: ledger.StockOf(it, logs, sold)})
	}
	return out, nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.ItemStock, error) {
	items, logs, sold, err := s.stockRows(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.LowStock(items, logs, sold, s.lowStockThreshold), nil
}

func (s *Service) stockRows(ctx context.Context) ([]domain.Item, []domain.StockLog, []domain.SaleItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	logs, err := s.repo.ListStockLogs(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, nil, nil, err
	}
	sold, err := s.repo.ListSaleItems(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return items, logs, sold, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, req domain.ItemUpdateRequest) (domain.Item, error) {
	existing, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Item{}, fmt.Errorf("name cannot be empty: %w", store.ErrValidation)
		}
		updated.Name = name
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		if color == "" {
			return domain.Item{}, fmt.Errorf("color cannot be empty: %w", store.ErrValidation)
		}
		updated.Color = color
	}
	if req.CostPrice != nil {
		if err := requireNonNegative("cost_price", *req.CostPrice); err != nil {
			return domain.Item{}, err
		}
		updated.CostPrice = *req.CostPrice
	}

	if err := s.repo.UpdateItem(ctx, updated); err != nil {
		return domain.Item{}, err
	}
	s.invalidateSummary(ctx)
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}

func (s *Service) ListStockLogs(ctx context.Context, filter domain.ReportFilter) ([]domain.StockLog, error) {
	return s.repo.ListStockLogs(ctx, filter)
}
