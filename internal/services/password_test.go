package services

import (
	"strings"
	"testing"
)

func TestGenerateTemporaryPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		password, err := GenerateTemporaryPassword(12)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(password) != 12 {
			t.Fatalf("expected length 12, got %d (%q)", len(password), password)
		}
		if !strings.ContainsAny(password, passwordLower) ||
			!strings.ContainsAny(password, passwordUpper) ||
			!strings.ContainsAny(password, passwordDigits) ||
			!strings.ContainsAny(password, passwordSpecial) {
			t.Fatalf("password %q is missing a character class", password)
		}
		if strings.ContainsAny(password, "lI0O1") {
			t.Fatalf("password %q contains an ambiguous character", password)
		}
		if seen[password] {
			t.Fatalf("duplicate password generated: %q", password)
		}
		seen[password] = true
	}
}

func TestGenerateTemporaryPasswordEnforcesMinimumLength(t *testing.T) {
	password, err := GenerateTemporaryPassword(3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("expected the 8-character floor, got %d", len(password))
	}
}
