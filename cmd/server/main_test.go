package main

import (
	"testing"

	"vsrthreads/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short", VaultSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigRejectsMissingVaultSecret(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret: "0123456789abcdef0123456789abcdef",
	})
	if err == nil {
		t.Fatalf("expected missing vault secret to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:  "0123456789abcdef0123456789abcdef",
		VaultSecret: "vault-secret-0123456789",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}
