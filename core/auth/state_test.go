package auth

import (
	"strings"
	"testing"
)

func TestGenerateNonce(t *testing.T) {
	t.Run("Minimum Length", func(t *testing.T) {
		nonce, err := GenerateNonce(8)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(nonce) != 16 {
			t.Errorf("expected length to be raised to 16, got %d", len(nonce))
		}
	})

	t.Run("Alphanumeric", func(t *testing.T) {
		nonce, err := GenerateNonce(32)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, r := range nonce {
			if !strings.ContainsRune(stateAlphabet, r) {
				t.Errorf("unexpected character %q in nonce", r)
			}
		}
	})

	t.Run("Unique", func(t *testing.T) {
		a, _ := GenerateNonce(16)
		b, _ := GenerateNonce(16)
		if a == b {
			t.Error("two generated nonces should not collide")
		}
	})
}

func TestStateToken(t *testing.T) {
	const secret = "test-secret"

	t.Run("Round Trip", func(t *testing.T) {
		signed, err := GenerateStateToken(secret, "abc123nonce45678")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		nonce, err := ParseStateToken(secret, signed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if nonce != "abc123nonce45678" {
			t.Errorf("expected embedded nonce back, got %s", nonce)
		}
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		signed, err := GenerateStateToken(secret, "abc123nonce45678")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := ParseStateToken("other-secret", signed); err == nil {
			t.Error("expected parse to fail with the wrong secret")
		}
	})

	t.Run("Garbage Token", func(t *testing.T) {
		if _, err := ParseStateToken(secret, "not-a-jwt"); err == nil {
			t.Error("expected parse to fail for a malformed token")
		}
	})
}
