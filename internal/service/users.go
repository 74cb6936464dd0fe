package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

const minPasswordLength = 8

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	accounts, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.UserView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, userView(a))
	}
	return views, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.UserCreateRequest) (domain.UserView, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.UserView{}, err
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.UserView{}, fmt.Errorf("username is required: %w", store.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return domain.UserView{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, store.ErrValidation)
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleStaff {
		return domain.UserView{}, fmt.Errorf("role must be %q or %q: %w", domain.RoleAdmin, domain.RoleStaff, store.ErrValidation)
	}
	caps, err := domain.ParseCapabilities(req.Capabilities)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("hash password: %w", err)
	}
	account := domain.UserAccount{
		Username:     username,
		Password:     string(hash),
		Role:         req.Role,
		Capabilities: caps,
		Active:       true,
	}
	if err := s.repo.CreateUser(ctx, account); err != nil {
		return domain.UserView{}, err
	}
	created, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.UserView{}, err
	}
	return userView(*created), nil
}

func (s *Service) UpdateUser(ctx context.Context, username string, req domain.UserUpdateRequest) (domain.UserView, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.UserView{}, err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	account, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.UserView{}, err
	}

	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return domain.UserView{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, store.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.UserView{}, fmt.Errorf("hash password: %w", err)
		}
		account.Password = string(hash)
	}
	if req.Role != nil {
		if *req.Role != domain.RoleAdmin && *req.Role != domain.RoleStaff {
			return domain.UserView{}, fmt.Errorf("role must be %q or %q: %w", domain.RoleAdmin, domain.RoleStaff, store.ErrValidation)
		}
		account.Role = *req.Role
	}
	if req.Capabilities != nil {
		caps, err := domain.ParseCapabilities(*req.Capabilities)
		if err != nil {
			return domain.UserView{}, fmt.Errorf("%v: %w", err, store.ErrValidation)
		}
		account.Capabilities = caps
	}
	if req.Active != nil {
		account.Active = *req.Active
	}

	if account.Role != domain.RoleAdmin || !account.Active {
		if err := s.ensureAnotherAdmin(ctx, username); err != nil {
			return domain.UserView{}, err
		}
	}

	if err := s.repo.UpdateUser(ctx, *account); err != nil {
		return domain.UserView{}, err
	}
	return userView(*account), nil
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	account, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if account.Role == domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, username); err != nil {
			return err
		}
	}
	return s.repo.DeleteUser(ctx, username)
}

// ensureAnotherAdmin guards the last active admin against lockout.
func (s *Service) ensureAnotherAdmin(ctx context.Context, excluding string) error {
	accounts, err := s.repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Username != excluding && a.Role == domain.RoleAdmin && a.Active {
			return nil
		}
	}
	return fmt.Errorf("at least one active admin account must remain: %w", store.ErrConflict)
}

// Authenticate verifies credentials and returns the matching actor.
// Disabled accounts and bad passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.Actor, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	account, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid credentials: %w", store.ErrValidation)
	}
	if !account.Active {
		return domain.Actor{}, fmt.Errorf("invalid credentials: %w", store.ErrValidation)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)) != nil {
		return domain.Actor{}, fmt.Errorf("invalid credentials: %w", store.ErrValidation)
	}
	return domain.Actor{
		Username:     account.Username,
		Role:         account.Role,
		Capabilities: account.Capabilities,
	}, nil
}

func userView(a domain.UserAccount) domain.UserView {
	caps := make([]string, 0, len(a.Capabilities))
	for _, c := range a.Capabilities {
		caps = append(caps, string(c))
	}
	return domain.UserView{
		Username:     a.Username,
		Role:         a.Role,
		Capabilities: caps,
		Active:       a.Active,
		CreatedAt:    a.CreatedAt,
	}
}
