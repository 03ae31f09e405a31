package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestMintAndVerify(t *testing.T) {
	token, err := MintToken(secret, "trainer-1", RoleTrainer, time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	ident, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if ident.UserID != "trainer-1" || ident.Role != RoleTrainer {
		t.Errorf("got identity %+v", ident)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := MintToken(secret, "student-1", RoleStudent, time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	if _, err := VerifyToken([]byte("other-secret"), token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token, err := MintToken(secret, "trainer-1", RoleTrainer, -time.Minute)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	if _, err := VerifyToken(secret, token); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	token, err := MintToken(secret, "admin-1", Role("admin"), time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	if _, err := VerifyToken(secret, token); err == nil {
		t.Error("token with unknown role was accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := VerifyToken(secret, "not.a.token"); err == nil {
		t.Error("garbage token was accepted")
	}
}
