package service

import (
	"context"
	"fmt"
	"strings"

	"vsrthreads/backend/internal/domain"
	"vsrthreads/backend/internal/store"
)

// CreateVaultEntry encrypts the credential before it is persisted.
// Plaintext never reaches the repository.
func (s *Service) CreateVaultEntry(ctx context.Context, req domain.VaultCreateRequest) (domain.VaultEntryView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.VaultEntryView{}, fmt.Errorf("no authenticated actor: %w", store.ErrValidation)
	}
	if s.cipher == nil {
		return domain.VaultEntryView{}, fmt.Errorf("vault is not configured: %w", store.ErrValidation)
	}

	visibility := domain.VaultVisibility(strings.TrimSpace(req.Visibility))
	if visibility != domain.VaultPrivate && visibility != domain.VaultShared {
		return domain.VaultEntryView{}, fmt.Errorf("visibility must be %q or %q: %w", domain.VaultPrivate, domain.VaultShared, store.ErrValidation)
	}
	website := strings.TrimSpace(req.Website)
	loginID := strings.TrimSpace(req.LoginID)
	if website == "" || loginID == "" || req.Password == "" {
		return domain.VaultEntryView{}, fmt.Errorf("website, login_id and password are required: %w", store.ErrValidation)
	}

	ciphertext, err := s.cipher.Encrypt(req.Password)
	if err != nil {
		return domain.VaultEntryView{}, fmt.Errorf("encrypt vault entry: %w", err)
	}
	created, err := s.repo.CreateVaultEntry(ctx, domain.VaultEntry{
		Owner:      actor.Username,
		Visibility: visibility,
		Website:    website,
		LoginID:    loginID,
		Password:   ciphertext,
	})
	if err != nil {
		return domain.VaultEntryView{}, err
	}
	return s.vaultView(*created)
}

// ListVaultEntries returns the entries the actor may see: their own
// private entries plus all shared ones, and everything for an admin.
// Passwords are decrypted in the view.
func (s *Service) ListVaultEntries(ctx context.Context) ([]domain.VaultEntryView, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no authenticated actor: %w", store.ErrValidation)
	}
	if s.cipher == nil {
		return nil, fmt.Errorf("vault is not configured: %w", store.ErrValidation)
	}
	entries, err := s.repo.ListVaultEntries(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.VaultEntryView, 0, len(entries))
	for _, e := range entries {
		if !vaultVisible(actor, e) {
			continue
		}
		view, err := s.vaultView(e)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) DeleteVaultEntry(ctx context.Context, id int64) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return fmt.Errorf("no authenticated actor: %w", store.ErrValidation)
	}
	entry, err := s.repo.GetVaultEntry(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && entry.Owner != actor.Username {
		return fmt.Errorf("only the owner or an admin may delete a vault entry: %w", store.ErrValidation)
	}
	return s.repo.DeleteVaultEntry(ctx, id)
}

func vaultVisible(actor domain.Actor, e domain.VaultEntry) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return e.Visibility == domain.VaultShared || e.Owner == actor.Username
}

func (s *Service) vaultView(e domain.VaultEntry) (domain.VaultEntryView, error) {
	plaintext, err := s.cipher.Decrypt(e.Password)
	if err != nil {
		return domain.VaultEntryView{}, fmt.Errorf("decrypt vault entry %d: %w", e.ID, err)
	}
	return domain.VaultEntryView{
		ID:         e.ID,
		Owner:      e.Owner,
		Visibility: e.Visibility,
		Website:    e.Website,
		LoginID:    e.LoginID,
		Password:   plaintext,
		UpdatedAt:  e.UpdatedAt,
	}, nil
}
