package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	signed, err := tm.Issue(42, "alice", 18)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tm.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.UserName != "alice" {
		t.Errorf("UserName = %s, want alice", claims.UserName)
	}
	if claims.Roles != 18 {
		t.Errorf("Roles = %d, want 18", claims.Roles)
	}
	if claims.Issuer != "helpdesk-service" {
		t.Errorf("Issuer = %s, want helpdesk-service", claims.Issuer)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	signed, err := tm.Issue(1, "bob", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := tm.Verify(signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify = %v, want ErrTokenExpired", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	signed, err := NewTokenManager("secret-a", time.Hour).Issue(1, "bob", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewTokenManager("secret-b", time.Hour).Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.Verify("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify = %v, want ErrTokenInvalid", err)
	}
}
