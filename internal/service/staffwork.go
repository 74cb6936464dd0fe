package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/money"
	"vsrthreads/backend/internal/store"
)

var gramsPerKg = decimal.NewFromInt(1000)

// CreateStaffWork settles a piece-work batch: the salary is the sum of
// produced quantity times rate per line, and a Salary expense for the
// same amount is written in the same transaction.
func (s *Service) CreateStaffWork(ctx context.Context, req domain.StaffWorkCreateRequest) (domain.StaffWorkView, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return domain.StaffWorkView{}, err
	}
	staffName := strings.TrimSpace(req.StaffName)
	if staffName == "" {
		return domain.StaffWorkView{}, fmt.Errorf("staff_name is required: %w", store.ErrValidation)
	}
	if err := requirePositive("kg_provided", req.KgProvided); err != nil {
		return domain.StaffWorkView{}, err
	}
	if len(req.Lines) == 0 {
		return domain.StaffWorkView{}, fmt.Errorf("at least one produced line is required: %w", store.ErrValidation)
	}

	batch := domain.StaffWorkBatch{
		Date:       date,
		StaffName:  staffName,
		KgProvided: req.KgProvided,
		Notes:      strings.TrimSpace(req.Notes),
	}
	total := decimal.Zero
	for i, line := range req.Lines {
		name := strings.TrimSpace(line.ItemName)
		if name == "" {
			return domain.StaffWorkView{}, fmt.Errorf("line %d: item_name is required: %w", i+1, store.ErrValidation)
		}
		if line.QtyProduced <= 0 {
			return domain.StaffWorkView{}, fmt.Errorf("line %d: qty_produced must be positive: %w", i+1, store.ErrValidation)
		}
		if line.Rate.Sign() < 0 {
			return domain.StaffWorkView{}, fmt.Errorf("line %d: rate must not be negative: %w", i+1, store.ErrValidation)
		}
		if line.GramsPerUnit.Sign() < 0 {
			return domain.StaffWorkView{}, fmt.Errorf("line %d: grams_per_unit must not be negative: %w", i+1, store.ErrValidation)
		}
		if line.ItemID != nil {
			if _, err := s.repo.GetItem(ctx, *line.ItemID); err != nil {
				return domain.StaffWorkView{}, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
		amount := money.Round2(line.Rate.Mul(decimal.NewFromInt(int64(line.QtyProduced))))
		total = total.Add(amount)
		batch.Items = append(batch.Items, domain.StaffWorkItem{
			ItemID:       line.ItemID,
			ItemName:     name,
			GramsPerUnit: line.GramsPerUnit,
			QtyProduced:  line.QtyProduced,
			Rate:         line.Rate,
			Amount:       amount,
		})
	}
	batch.TotalSalary = total

	expense := domain.Expense{
		Date:        date,
		Category:    "Salary",
		Description: fmt.Sprintf("Piece-work settlement: %s", staffName),
		Amount:      total,
	}

	created, err := s.repo.CreateStaffWork(ctx, batch, expense)
	if err != nil {
		return domain.StaffWorkView{}, err
	}
	s.invalidateSummary(ctx)
	return staffWorkView(*created), nil
}

func (s *Service) GetStaffWork(ctx context.Context, id int64) (domain.StaffWorkView, error) {
	batch, err := s.repo.GetStaffWork(ctx, id)
	if err != nil {
		return domain.StaffWorkView{}, err
	}
	return staffWorkView(*batch), nil
}

func (s *Service) ListStaffWork(ctx context.Context, filter domain.ReportFilter) ([]domain.StaffWorkView, error) {
	batches, err := s.repo.ListStaffWork(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]domain.StaffWorkView, 0, len(batches))
	for _, b := range batches {
		views = append(views, staffWorkView(b))
	}
	return views, nil
}

// UpdateStaffWork amends the batch header only. Produced lines, the
// settled salary and the linked expense are immutable once written;
// correcting those means deleting the batch and re-entering it.
func (s *Service) UpdateStaffWork(ctx context.Context, id int64, req domain.StaffWorkUpdateRequest) (domain.StaffWorkView, error) {
	batch, err := s.repo.GetStaffWork(ctx, id)
	if err != nil {
		return domain.StaffWorkView{}, err
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return domain.StaffWorkView{}, err
		}
		batch.Date = date
	}
	if req.StaffName != nil {
		name := strings.TrimSpace(*req.StaffName)
		if name == "" {
			return domain.StaffWorkView{}, fmt.Errorf("staff_name is required: %w", store.ErrValidation)
		}
		batch.StaffName = name
	}
	if req.KgProvided != nil {
		if err := requirePositive("kg_provided", *req.KgProvided); err != nil {
			return domain.StaffWorkView{}, err
		}
		batch.KgProvided = *req.KgProvided
	}
	if err := s.repo.UpdateStaffWorkHeader(ctx, *batch); err != nil {
		return domain.StaffWorkView{}, err
	}
	updated, err := s.repo.GetStaffWork(ctx, id)
	if err != nil {
		return domain.StaffWorkView{}, err
	}
	return staffWorkView(*updated), nil
}

func (s *Service) DeleteStaffWork(ctx context.Context, id int64) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteStaffWork(ctx, id); err != nil {
		return err
	}
	s.invalidateSummary(ctx)
	return nil
}

// WeightReturned converts produced quantities back into kilograms so a
// batch can be checked against the raw material handed out.
func WeightReturned(batch domain.StaffWorkBatch) decimal.Decimal {
	total := decimal.Zero
	for _, it := range batch.Items {
		grams := it.GramsPerUnit.Mul(decimal.NewFromInt(int64(it.QtyProduced)))
		total = total.Add(grams)
	}
	return total.Div(gramsPerKg)
}

func staffWorkView(batch domain.StaffWorkBatch) domain.StaffWorkView {
	return domain.StaffWorkView{
		Batch:            batch,
		WeightReturnedKg: WeightReturned(batch),
	}
}
