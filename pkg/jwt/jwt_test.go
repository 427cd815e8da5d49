package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewManager("test-secret", "", time.Hour, 0)

	token, err := manager.GenerateToken("ci-deployer", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Subject != "ci-deployer" {
		t.Errorf("subject = %q, want %q", claims.Subject, "ci-deployer")
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want %q", claims.Role, "admin")
	}
	if claims.Issuer != "podflow" {
		t.Errorf("issuer = %q, want %q", claims.Issuer, "podflow")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", "", time.Hour, 0)
	verifier := NewManager("secret-b", "", time.Hour, 0)

	token, err := issuer.GenerateToken("ops", "viewer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation to fail for a token signed with another secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", "", -time.Minute, 0)

	token, err := manager.GenerateToken("ops", "viewer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := NewManager("test-secret", "", time.Hour, 0)

	if _, err := manager.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Fatal("expected validation to fail for malformed input")
	}
}
