package utils

import (
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "password123"},
		{name: "empty password", password: ""},
		{name: "unicode password", password: "pässwörd-日本語"},
		{name: "special characters", password: "!@#$%^&*()_+-=[]{}|;':\",./<>?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if hash == tt.password {
				t.Fatal("hash must not equal the plaintext")
			}
			if !CheckPassword(hash, tt.password) {
				t.Fatal("expected the original password to verify")
			}
			if CheckPassword(hash, tt.password+"x") {
				t.Fatal("expected a different password to fail verification")
			}
		})
	}
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "password123") {
		t.Fatal("expected garbage hash to fail verification")
	}
}

func TestGenerateResetCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateResetCode()
		if err != nil {
			t.Fatalf("GenerateResetCode() error = %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected a 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected only digits, got %q", code)
			}
		}
		if code[0] == '0' {
			t.Fatalf("expected no leading zero, got %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected some variance across generated codes")
	}
}
