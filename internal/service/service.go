package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vsrthreads/backend/internal/cache"
	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
	"vsrthreads/backend/internal/vault"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo              store.Repository
	summaries         cache.SummaryCache
	cipher            *vault.Cipher
	summaryTTL        time.Duration
	lowStockThreshold int
}

func New(repo store.Repository, summaries cache.SummaryCache, cipher *vault.Cipher, summaryTTL time.Duration, lowStockThreshold int) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}
	if lowStockThreshold < 0 {
		lowStockThreshold = 5
	}

	return &Service{
		repo:              repo,
		summaries:         summaries,
		cipher:            cipher,
		summaryTTL:        summaryTTL,
		lowStockThreshold: lowStockThreshold,
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return fmt.Errorf("admin role required: %w", store.ErrValidation)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required: %w", store.ErrValidation)
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", value, store.ErrValidation)
	}
	return t, nil
}

func requirePositive(name string, d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return fmt.Errorf("%s must be positive: %w", name, store.ErrValidation)
	}
	return nil
}

func requireNonNegative(name string, d decimal.Decimal) error {
	if d.Sign() < 0 {
		return fmt.Errorf("%s cannot be negative: %w", name, store.ErrValidation)
	}
	return nil
}

// invalidateSummary drops the cached dashboard after any write so the
// next read recomputes from the ledger.
func (s *Service) invalidateSummary(ctx context.Context) {
	_ = s.summaries.Invalidate(ctx, summaryCacheKey)
}
