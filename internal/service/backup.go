package service

import (
	"context"
	"fmt"
	"time"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

// Export produces a backup snapshot. A date filter narrows the
// transactional tables only; master data (items, customers, names,
// settings, users, vault) is always exported whole so the file restores
// cleanly on its own.
func (s *Service) Export(ctx context.Context, filter domain.ReportFilter) (domain.Snapshot, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap.ExportedAt = time.Now()
	if filter.From == nil && filter.To == nil {
		return *snap, nil
	}

	inRange := func(date time.Time) bool {
		if filter.From != nil && date.Before(*filter.From) {
			return false
		}
		if filter.To != nil && date.After(*filter.To) {
			return false
		}
		return true
	}

	sales := snap.Sales[:0:0]
	keptSales := make(map[int64]bool)
	for _, sale := range snap.Sales {
		if inRange(sale.Date) {
			sales = append(sales, sale)
			keptSales[sale.ID] = true
		}
	}
	snap.Sales = sales

	items := snap.SaleItems[:0:0]
	for _, it := range snap.SaleItems {
		if keptSales[it.SaleID] {
			items = append(items, it)
		}
	}
	snap.SaleItems = items

	payments := snap.Payments[:0:0]
	for _, p := range snap.Payments {
		if !inRange(p.Date) {
			continue
		}
		// Drop sale-linked payments whose invoice fell outside the
		// range; restoring them would orphan the link.
		if p.SaleID != nil && !keptSales[*p.SaleID] {
			continue
		}
		payments = append(payments, p)
	}
	snap.Payments = payments

	logs := snap.StockLogs[:0:0]
	for _, l := range snap.StockLogs {
		if inRange(l.Date) {
			logs = append(logs, l)
		}
	}
	snap.StockLogs = logs

	purchases := snap.Purchases[:0:0]
	for _, p := range snap.Purchases {
		if inRange(p.Date) {
			purchases = append(purchases, p)
		}
	}
	snap.Purchases = purchases

	keptWork := make(map[int64]bool)
	work := snap.StaffWork[:0:0]
	for _, b := range snap.StaffWork {
		if inRange(b.Date) {
			work = append(work, b)
			keptWork[b.ID] = true
		}
	}
	snap.StaffWork = work

	expenses := snap.Expenses[:0:0]
	for _, e := range snap.Expenses {
		if !inRange(e.Date) {
			continue
		}
		if e.StaffWorkID != nil && !keptWork[*e.StaffWorkID] {
			continue
		}
		expenses = append(expenses, e)
	}
	snap.Expenses = expenses

	if filter.From != nil {
		snap.From = filter.From.Format(domain.DateLayout)
	}
	if filter.To != nil {
		snap.To = filter.To.Format(domain.DateLayout)
	}
	return *snap, nil
}

// Restore replaces the whole store with the snapshot contents. This is
// destructive and admin-only.
func (s *Service) Restore(ctx context.Context, snap domain.Snapshot) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if len(snap.Users) == 0 {
		return fmt.Errorf("snapshot contains no user accounts: %w", store.ErrValidation)
	}
	hasAdmin := false
	for _, u := range snap.Users {
		if u.Role == domain.RoleAdmin && u.Active {
			hasAdmin = true
			break
		}
	}
	if !hasAdmin {
		return fmt.Errorf("snapshot contains no active admin account: %w", store.ErrValidation)
	}
	if err := s.repo.Restore(ctx, snap); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}
