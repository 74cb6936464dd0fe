package config

import "testing"

func TestLoadDoesNotInjectWeakSecretDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("VAULT_SECRET", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.VaultSecret != "" {
		t.Fatalf("expected empty VAULT_SECRET when unset, got %q", cfg.VaultSecret)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SUMMARY_TTL_SECONDS", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.SummaryTTLSeconds != 30 {
		t.Fatalf("summary ttl = %d, want 30", cfg.SummaryTTLSeconds)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("low stock threshold = %d, want 5", cfg.LowStockThreshold)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "not-a-number")
	t.Setenv("SUMMARY_TTL_SECONDS", "-4")

	cfg := Load()
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("token ttl = %d, want fallback 480", cfg.AccessTokenTTLMinutes)
	}
	if cfg.SummaryTTLSeconds != 30 {
		t.Fatalf("summary ttl = %d, want fallback 30", cfg.SummaryTTLSeconds)
	}
}
