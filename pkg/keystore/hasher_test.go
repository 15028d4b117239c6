package keystore

import (
	"regexp"
	"strings"
	"testing"
)

// TestHashKey_Deterministic tests that hashing is stable and hex-encoded.
func TestHashKey_Deterministic(t *testing.T) {
	h1 := HashKey("some-secret")
	h2 := HashKey("some-secret")

	if h1 != h2 {
		t.Errorf("Expected identical hashes, got %s and %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(h1))
	}
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(h1) {
		t.Errorf("Expected lowercase hex, got %s", h1)
	}
}

// TestHashKey_DifferentInputs tests that distinct secrets hash differently.
func TestHashKey_DifferentInputs(t *testing.T) {
	if HashKey("secret-a") == HashKey("secret-b") {
		t.Error("Expected different hashes for different secrets")
	}
}

// TestGenerateKey tests secret generation format and uniqueness.
func TestGenerateKey(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		secret, err := GenerateKey()
		if err != nil {
			t.Fatalf("GenerateKey failed: %v", err)
		}

		// 32 bytes base64url without padding is 43 characters.
		if len(secret) != 43 {
			t.Errorf("Expected 43 characters, got %d", len(secret))
		}
		if strings.ContainsAny(secret, "=+/") {
			t.Errorf("Expected URL-safe unpadded encoding, got %s", secret)
		}
		if seen[secret] {
			t.Fatalf("Duplicate secret generated: %s", secret)
		}
		seen[secret] = true
	}
}
