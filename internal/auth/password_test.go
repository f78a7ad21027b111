// Sensorhub - Farm Sensor and GNSS Readings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sensorhub

package auth

import (
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("CheckPassword() accepted a wrong password")
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.MinCost {
		t.Errorf("cost = %d (%v), want %d", cost, err, bcrypt.MinCost)
	}

	fallback, err := HashPassword("x", 99)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(fallback)); cost != bcrypt.DefaultCost {
		t.Errorf("fallback cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestNewResetToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		tok, err := NewResetToken()
		if err != nil {
			t.Fatalf("NewResetToken() error = %v", err)
		}
		if len(tok) != resetTokenBytes*2 {
			t.Errorf("len = %d, want %d", len(tok), resetTokenBytes*2)
		}
		if _, err := hex.DecodeString(tok); err != nil {
			t.Errorf("token %q is not hex: %v", tok, err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}
